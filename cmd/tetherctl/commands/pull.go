package commands

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
)

var pullCmd = &cobra.Command{
	Use:   "pull <device-path> [local-path]",
	Short: "Copy a file from the device",
	Long: `Copy a device file to the local filesystem.

When the local path is omitted, the file is written to the current
directory under its device name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	devicePath := args[0]
	localPath := path.Base(devicePath)
	if len(args) == 2 {
		localPath = args[1]
	}

	if err := client.Pull(cmd.Context(), devicePath, localPath); err != nil {
		return fmt.Errorf("failed to pull %s: %w", devicePath, err)
	}

	abs, _ := filepath.Abs(localPath)
	fmt.Printf("Pulled %s -> %s\n", devicePath, abs)
	return nil
}
