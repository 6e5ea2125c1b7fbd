package commands

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/skipfire/tether/cmd/tetherctl/cmdutil"
	"github.com/skipfire/tether/internal/bytesize"
	"github.com/skipfire/tether/internal/protocol/conduit"
)

var lsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List a directory on the device",
	Long: `List the contents of a device directory.

Examples:
  # Plain listing
  tetherctl ls /Documents

  # With per-entry metadata
  tetherctl ls -l /Documents

  # As JSON
  tetherctl ls /Documents -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show size and modification time per entry")
}

// lsEntry is one directory entry for rendering.
type lsEntry struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Modified string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// lsResult is a listing for table rendering.
type lsResult struct {
	long    bool
	entries []lsEntry
}

// Headers implements TableRenderer.
func (r lsResult) Headers() []string {
	if r.long {
		return []string{"NAME", "KIND", "SIZE", "MODIFIED"}
	}
	return []string{"NAME"}
}

// Rows implements TableRenderer.
func (r lsResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.entries))
	for _, e := range r.entries {
		if r.long {
			rows = append(rows, []string{e.Name, e.Kind, bytesize.ByteSize(e.Size).String(), e.Modified})
		} else {
			rows = append(rows, []string{e.Name})
		}
	}
	return rows
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	client, err := cmdutil.ConduitClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	dir := args[0]

	names, err := client.ListDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	entries := make([]lsEntry, 0, len(names))
	for _, name := range names {
		entry := lsEntry{Name: name}
		if lsLong {
			info, err := client.Stat(ctx, path.Join(dir, name))
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", name, err)
			}
			entry.Kind = kindLabel(info)
			entry.Size = info.Size
			entry.Modified = time.UnixMilli(info.MTimeMs).UTC().Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}

	return cmdutil.PrintOutput(os.Stdout, entries, lsResult{long: lsLong, entries: entries})
}

func kindLabel(info *conduit.StatInfo) string {
	switch {
	case info.IsDir():
		return "dir"
	case info.IsLink():
		return "link"
	default:
		return "file"
	}
}
