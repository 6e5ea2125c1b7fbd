package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/cli/prompt"
)

var (
	rmForce bool
	rmYes   bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a device path recursively",
	Long: `Delete a file or directory on the device. Directories are removed
recursively.

With --force, a missing target counts as already removed instead of
failing.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Treat a missing target as already removed")
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runRm(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	target := args[0]
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s from the device?", target), rmYes)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	failed, err := client.Remove(cmd.Context(), target, rmForce)
	if err != nil {
		for _, p := range failed {
			PrintErr("not removed: %s", p)
		}
		return fmt.Errorf("failed to remove %s: %w", target, err)
	}

	fmt.Printf("Removed %s\n", target)
	return nil
}
