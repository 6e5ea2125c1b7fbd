package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
)

var pushCmd = &cobra.Command{
	Use:   "push <local-path> <device-path>",
	Short: "Copy a file to the device",
	Args:  cobra.ExactArgs(2),
	RunE:  runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	localPath, devicePath := args[0], args[1]
	if err := client.Push(cmd.Context(), localPath, devicePath); err != nil {
		return fmt.Errorf("failed to push %s: %w", localPath, err)
	}

	fmt.Printf("Pushed %s -> %s\n", localPath, devicePath)
	return nil
}
