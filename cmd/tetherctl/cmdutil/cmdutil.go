// Package cmdutil provides shared helpers for tetherctl commands:
// global flag state, configuration loading, and engine construction.
package cmdutil

import (
	"fmt"
	"io"

	"github.com/skipfire/tether/internal/cli/output"
	"github.com/skipfire/tether/internal/logger"
	"github.com/skipfire/tether/internal/protocol/conduit"
	"github.com/skipfire/tether/internal/protocol/instr"
	"github.com/skipfire/tether/internal/telemetry"
	"github.com/skipfire/tether/internal/transport"
	"github.com/skipfire/tether/pkg/config"
)

// GlobalFlags holds flag values shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	Address    string
	Output     string
	Verbose    bool
}

// Flags is populated by the root command before any subcommand runs.
var Flags GlobalFlags

// LoadConfig loads the configuration honoring the --config flag and
// initializes logging from it.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if Flags.Verbose {
		cfg.Logging.Level = "DEBUG"
	}
	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(logCfg); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	if cfg.Metrics.Enabled {
		telemetry.ServeMetrics(cfg.Metrics.Port)
	}
	return cfg, nil
}

// ConduitClient builds a file-conduit client from the configuration.
// The --address flag overrides the configured endpoint.
func ConduitClient(cfg *config.Config) (*conduit.Client, error) {
	address := cfg.Device.ConduitAddress
	if Flags.Address != "" {
		address = Flags.Address
	}
	if address == "" {
		return nil, fmt.Errorf("no file-conduit address configured; set device.conduit_address or pass --address")
	}

	dialer := transport.NewTCPDialer(cfg.Device.DialTimeout)
	client := conduit.NewClient(dialer, address, cfg.Conduit.Label).
		WithChunkSize(int(cfg.Conduit.ChunkSize))
	return client, nil
}

// InstrumentationConn builds an instrumentation connection from the
// configuration. The --address flag overrides the configured endpoint.
func InstrumentationConn(cfg *config.Config) (*instr.Conn, error) {
	address := cfg.Device.InstrumentationAddress
	if Flags.Address != "" {
		address = Flags.Address
	}
	if address == "" {
		return nil, fmt.Errorf("no instrumentation address configured; set device.instrumentation_address or pass --address")
	}

	dialer := transport.NewTCPDialer(cfg.Device.DialTimeout)
	return instr.New(dialer, address), nil
}

// PrintOutput renders data in the format selected by the --output flag:
// the table renderer for tables, the raw data for JSON and YAML.
func PrintOutput(w io.Writer, data any, table output.TableRenderer) error {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, table)
	}
}
