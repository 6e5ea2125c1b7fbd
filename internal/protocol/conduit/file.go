package conduit

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/skipfire/tether/internal/logger"
	"github.com/skipfire/tether/internal/protocol/conduit/header"
)

// defaultChunkSize bounds one transfer request: reads ask for the
// remaining byte count up to this many bytes, writes push one chunk
// per packet.
const defaultChunkSize = 4 << 20

// Seek whence values, matching the POSIX constants the device expects.
const (
	SeekStart   = 0
	SeekCurrent = 1
	SeekEnd     = 2
)

// FileOpen opens a file and returns its handle.
func (c *Client) FileOpen(ctx context.Context, target string, mode FileMode) (uint64, error) {
	data, err := c.doOperation(ctx, OpFileOpen, openPayload(mode, target), 0, target)
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("open response missing handle: %w", header.ErrPacketTooShort)
	}

	handle := binary.LittleEndian.Uint64(data[:8])
	logger.Debug("file opened",
		logger.KeyPath, target,
		logger.KeyHandle, handle)
	return handle, nil
}

// FileClose releases a handle.
func (c *Client) FileClose(ctx context.Context, handle uint64) error {
	_, err := c.doOperation(ctx, OpFileClose, handlePayload(handle), 0, "")
	return err
}

// FileRead reads up to size bytes from a handle, issuing successive
// requests sized to the remaining count. A short response signals
// end-of-data and terminates the read early.
func (c *Client) FileRead(ctx context.Context, handle uint64, size int64) ([]byte, error) {
	out := make([]byte, 0, size)
	for int64(len(out)) < size {
		chunk := size - int64(len(out))
		if chunk > int64(c.chunkSize) {
			chunk = int64(c.chunkSize)
		}

		data, err := c.doOperation(ctx, OpFileRead, readPayload(handle, uint64(chunk)), 0, "")
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			break
		}
		out = append(out, data...)
		if int64(len(data)) < chunk {
			break
		}
	}

	c.metrics.BytesTransferred.WithLabelValues("in").Add(float64(len(out)))
	logger.Debug("file read",
		logger.KeyHandle, handle,
		logger.KeyBytesRead, len(out))
	return out, nil
}

// FileWrite writes data through a handle in chunks, failing the whole
// operation on the first non-success status. WRITE packets carry the
// handle inside the header-covered region.
func (c *Client) FileWrite(ctx context.Context, handle uint64, data []byte) error {
	written := 0
	for written < len(data) {
		end := written + c.chunkSize
		if end > len(data) {
			end = len(data)
		}

		payload := writePayload(handle, data[written:end])
		_, err := c.doOperation(ctx, OpFileWrite, payload, header.WriteThisLength, "")
		if err != nil {
			return err
		}
		written = end
	}

	c.metrics.BytesTransferred.WithLabelValues("out").Add(float64(written))
	logger.Debug("file written",
		logger.KeyHandle, handle,
		logger.KeyBytesWritten, written)
	return nil
}

// FileSeek repositions a handle.
func (c *Client) FileSeek(ctx context.Context, handle uint64, whence uint64, offset int64) error {
	_, err := c.doOperation(ctx, OpFileSeek, seekPayload(handle, whence, offset), 0, "")
	return err
}

// FileTell returns a handle's current position.
func (c *Client) FileTell(ctx context.Context, handle uint64) (uint64, error) {
	data, err := c.doOperation(ctx, OpFileTell, handlePayload(handle), 0, "")
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("tell response missing position: %w", header.ErrPacketTooShort)
	}
	return binary.LittleEndian.Uint64(data[:8]), nil
}

// Contents reads a whole file, following a single-level symlink.
func (c *Client) Contents(ctx context.Context, target string) ([]byte, error) {
	resolved, err := c.resolvePath(ctx, target)
	if err != nil {
		return nil, err
	}
	info, err := c.Stat(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &ConduitError{Op: OpFileOpen, Status: StatusObjectIsDirectory, Path: resolved}
	}

	handle, err := c.FileOpen(ctx, resolved, ModeReadOnly)
	if err != nil {
		return nil, err
	}
	defer c.FileClose(ctx, handle)

	return c.FileRead(ctx, handle, info.Size)
}

// SetContents replaces a file's contents, following a single-level
// symlink on an existing target. A failed write removes the partially
// written file before returning the error.
func (c *Client) SetContents(ctx context.Context, target string, data []byte) error {
	resolved := target
	if exists, err := c.Exists(ctx, target); err != nil {
		return err
	} else if exists {
		if resolved, err = c.resolvePath(ctx, target); err != nil {
			return err
		}
	}

	handle, err := c.FileOpen(ctx, resolved, ModeWriteTruncate)
	if err != nil {
		return err
	}

	if err := c.FileWrite(ctx, handle, data); err != nil {
		c.FileClose(ctx, handle)
		c.cleanupPartial(ctx, resolved)
		return err
	}
	return c.FileClose(ctx, handle)
}

// ReadTo streams a device file into w.
func (c *Client) ReadTo(ctx context.Context, target string, w io.Writer) (int64, error) {
	resolved, err := c.resolvePath(ctx, target)
	if err != nil {
		return 0, err
	}

	handle, err := c.FileOpen(ctx, resolved, ModeReadOnly)
	if err != nil {
		return 0, err
	}
	defer c.FileClose(ctx, handle)

	var total int64
	for {
		data, err := c.doOperation(ctx, OpFileRead, readPayload(handle, uint64(c.chunkSize)), 0, resolved)
		if err != nil {
			return total, err
		}
		if len(data) == 0 {
			break
		}
		n, err := w.Write(data)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write local copy of %s: %w", target, err)
		}
		if len(data) < c.chunkSize {
			break
		}
	}

	c.metrics.BytesTransferred.WithLabelValues("in").Add(float64(total))
	return total, nil
}

// WriteFrom streams r into a device file. A failure mid-stream removes
// the partially written file before returning the error.
func (c *Client) WriteFrom(ctx context.Context, target string, r io.Reader) (int64, error) {
	handle, err := c.FileOpen(ctx, target, ModeWriteTruncate)
	if err != nil {
		return 0, err
	}

	var total int64
	buf := make([]byte, c.chunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			payload := writePayload(handle, buf[:n])
			if _, err := c.doOperation(ctx, OpFileWrite, payload, header.WriteThisLength, target); err != nil {
				c.FileClose(ctx, handle)
				c.cleanupPartial(ctx, target)
				return total, err
			}
			total += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			c.FileClose(ctx, handle)
			c.cleanupPartial(ctx, target)
			return total, fmt.Errorf("read source for %s: %w", target, readErr)
		}
	}

	c.metrics.BytesTransferred.WithLabelValues("out").Add(float64(total))
	return total, c.FileClose(ctx, handle)
}

// Pull copies a device file to the local filesystem.
func (c *Client) Pull(ctx context.Context, target, localPath string) error {
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	n, err := c.ReadTo(ctx, target, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(localPath)
		return err
	}

	logger.Info("file pulled",
		logger.KeyPath, target,
		logger.KeySize, n)
	return nil
}

// Push copies a local file to the device.
func (c *Client) Push(ctx context.Context, localPath, target string) error {
	f, err := os.Open(filepath.Clean(localPath))
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	n, err := c.WriteFrom(ctx, target, f)
	if err != nil {
		return err
	}

	logger.Info("file pushed",
		logger.KeyPath, target,
		logger.KeySize, n)
	return nil
}

// cleanupPartial best-effort removes a partially written file.
func (c *Client) cleanupPartial(ctx context.Context, target string) {
	if _, err := c.doOperation(ctx, OpRemovePath, pathPayload(target), 0, target); err != nil {
		logger.Warn("failed to remove partial file",
			logger.KeyPath, target,
			logger.KeyError, err.Error())
	}
}
