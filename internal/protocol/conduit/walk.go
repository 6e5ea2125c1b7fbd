package conduit

import (
	"context"
	"path"
)

// WalkFunc is called once per visited directory with its immediate
// subdirectory names and file names. Returning an error stops the walk.
type WalkFunc func(dir string, dirs, files []string) error

// Walk enumerates the tree under root depth-first, calling fn for each
// directory before descending into its subdirectories.
func (c *Client) Walk(ctx context.Context, root string, fn WalkFunc) error {
	entries, err := c.ListDir(ctx, root)
	if err != nil {
		return err
	}

	var dirs, files []string
	for _, entry := range entries {
		isDir, err := c.IsDir(ctx, path.Join(root, entry))
		if err != nil {
			return err
		}
		if isDir {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	if err := fn(root, dirs, files); err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := c.Walk(ctx, path.Join(root, dir), fn); err != nil {
			return err
		}
	}
	return nil
}
