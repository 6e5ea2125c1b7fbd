package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/cli/output"
)

var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "List the device's published instrumentation capabilities",
	RunE:  runCaps,
}

func runCaps(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	conn, err := cmdutil.InstrumentationConn(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to instrumentation service: %w", err)
	}
	defer conn.Close(ctx)

	names := append([]string(nil), conn.Capabilities().Names...)
	sort.Strings(names)

	table := output.NewTableData("CAPABILITY")
	for _, name := range names {
		table.AddRow(name)
	}

	return cmdutil.PrintOutput(os.Stdout, names, table)
}
