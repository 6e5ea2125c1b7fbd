package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory on the device",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkdir,
}

func runMkdir(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.MakeDir(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}

	fmt.Printf("Created %s\n", args[0])
	return nil
}
