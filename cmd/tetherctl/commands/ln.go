package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/protocol/conduit"
)

var lnSymbolic bool

var lnCmd = &cobra.Command{
	Use:   "ln <target> <link-name>",
	Short: "Create a link on the device",
	Args:  cobra.ExactArgs(2),
	RunE:  runLn,
}

func init() {
	lnCmd.Flags().BoolVarP(&lnSymbolic, "symbolic", "s", false, "Create a symbolic link instead of a hard link")
}

func runLn(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	kind := conduit.LinkHard
	if lnSymbolic {
		kind = conduit.LinkSym
	}

	target, linkName := args[0], args[1]
	if err := client.MakeLink(cmd.Context(), kind, target, linkName); err != nil {
		return fmt.Errorf("failed to link %s: %w", linkName, err)
	}

	fmt.Printf("Linked %s -> %s\n", linkName, target)
	return nil
}
