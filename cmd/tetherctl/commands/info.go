package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/cli/output"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device filesystem information",
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.DeviceInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query device info: %w", err)
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := output.NewTableData("KEY", "VALUE")
	for _, k := range keys {
		table.AddRow(k, info[k])
	}

	return cmdutil.PrintOutput(os.Stdout, info, table)
}
