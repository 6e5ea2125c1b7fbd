package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skipfire/tether/internal/bytesize"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "tether", cfg.Conduit.Label)
	assert.Equal(t, 4*bytesize.MiB, cfg.Conduit.ChunkSize)
	assert.Equal(t, 10*time.Second, cfg.Device.DialTimeout)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
device:
  instrumentation_address: "10.0.0.5:50051"
  conduit_address: "10.0.0.5:49200"
  dial_timeout: 5s
conduit:
  label: "my-controller"
  chunk_size: "512Ki"
metrics:
  enabled: true
  port: 9191
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Levels normalize to uppercase.
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "10.0.0.5:50051", cfg.Device.InstrumentationAddress)
	assert.Equal(t, 5*time.Second, cfg.Device.DialTimeout)
	assert.Equal(t, "my-controller", cfg.Conduit.Label)
	assert.Equal(t, 512*bytesize.KiB, cfg.Conduit.ChunkSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9191, cfg.Metrics.Port)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
device:
  conduit_address: "192.168.4.2:49200"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.4.2:49200", cfg.Device.ConduitAddress)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "tether", cfg.Conduit.Label)
}

func TestLoadInvalidAddressRejected(t *testing.T) {
	path := writeConfigFile(t, `
device:
  conduit_address: "not-an-address"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host:port")
}

func TestLoadInvalidFormatRejected(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  format: xml
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Device.ConduitAddress = "10.1.1.1:49200"
	cfg.Metrics.Enabled = true

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Device.ConduitAddress, loaded.Device.ConduitAddress)
	assert.True(t, loaded.Metrics.Enabled)
}

func TestValidateDefaultsPass(t *testing.T) {
	require.NoError(t, Validate(GetDefaultConfig()))
}

func TestValidateBadPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.port")
}
