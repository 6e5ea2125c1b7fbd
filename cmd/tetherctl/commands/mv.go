package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
)

var mvCmd = &cobra.Command{
	Use:   "mv <source> <target>",
	Short: "Move or rename a device path",
	Args:  cobra.ExactArgs(2),
	RunE:  runMv,
}

func runMv(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	source, target := args[0], args[1]
	if err := client.Rename(cmd.Context(), source, target); err != nil {
		return fmt.Errorf("failed to move %s: %w", source, err)
	}

	fmt.Printf("Moved %s -> %s\n", source, target)
	return nil
}
