package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/bytesize"
	"github.com/skipfire/tether/internal/protocol/conduit"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show metadata for a device path",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

// statResult renders one StatInfo as a key/value table.
type statResult struct {
	info *conduit.StatInfo
}

// Headers implements TableRenderer.
func (r statResult) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (r statResult) Rows() [][]string {
	rows := [][]string{
		{"kind", kindLabel(r.info)},
		{"size", bytesize.ByteSize(r.info.Size).String()},
		{"links", fmt.Sprintf("%d", r.info.NLink)},
		{"modified", time.UnixMilli(r.info.MTimeMs).UTC().Format(time.RFC3339)},
		{"created", time.UnixMilli(r.info.BirthtimeMs).UTC().Format(time.RFC3339)},
	}
	if r.info.LinkTarget != "" {
		rows = append(rows, []string{"target", r.info.LinkTarget})
	}
	return rows
}

func runStat(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.Stat(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", args[0], err)
	}

	return cmdutil.PrintOutput(os.Stdout, info, statResult{info: info})
}
