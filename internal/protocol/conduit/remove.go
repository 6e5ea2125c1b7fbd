package conduit

import (
	"context"
	"errors"
	"path"

	"github.com/skipfire/tether/internal/logger"
)

// Remove deletes a path. Non-directories delete directly; directories
// recurse depth-first over their children (child deletions are always
// forced) and the directory itself is removed last.
//
// With force set, a missing target counts as already removed; without
// it, the target is reported as a failed path. The returned slice lists
// every path that could not be removed, children first; a directory
// whose own removal fails is appended after its failed children even
// when those children are already listed. A non-nil error accompanies a
// non-empty slice.
func (c *Client) Remove(ctx context.Context, target string, force bool) ([]string, error) {
	info, err := c.Stat(ctx, target)
	if err != nil {
		if force && errors.Is(err, ErrObjectNotFound) {
			return nil, nil
		}
		return []string{target}, err
	}

	if !info.IsDir() {
		if err := c.removeSingle(ctx, target, force); err != nil {
			return []string{target}, err
		}
		return nil, nil
	}

	var failed []string
	entries, err := c.ListDir(ctx, target)
	if err != nil {
		return []string{target}, err
	}
	for _, entry := range entries {
		childFailed, err := c.Remove(ctx, path.Join(target, entry), true)
		if err != nil {
			failed = append(failed, childFailed...)
		}
	}

	if err := c.removeSingle(ctx, target, force); err != nil {
		failed = append(failed, target)
	}

	if len(failed) > 0 {
		logger.Warn("recursive delete left paths behind",
			logger.KeyPath, target,
			logger.KeyEntries, len(failed))
		return failed, &RemoveError{Paths: failed}
	}
	return nil, nil
}

// removeSingle deletes one object. With force set, a missing object is
// not an error.
func (c *Client) removeSingle(ctx context.Context, target string, force bool) error {
	_, err := c.doOperation(ctx, OpRemovePath, pathPayload(target), 0, target)
	if err != nil && force && errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}
