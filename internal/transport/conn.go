package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrClosed is returned for operations on a closed connection.
var ErrClosed = errors.New("connection closed")

// readChunkSize is how much the connection asks the stream for at a time.
const readChunkSize = 32 * 1024

// Conn owns a Stream and its read buffer.
//
// The buffer outlives any single request: bytes received beyond an
// exact-length read are retained and served first on the next read. The
// connection is not safe for concurrent use; both engines serialize all
// I/O on a single caller, so reads and writes never overlap.
type Conn struct {
	stream Stream
	buf    []byte
	closed bool
}

// NewConn wraps a stream in a buffered connection.
func NewConn(stream Stream) *Conn {
	return &Conn{stream: stream}
}

// ReadExact blocks until exactly n bytes are available and returns them.
// Leftover bytes past n stay buffered for the next call. Closing the
// connection aborts a pending read with an error from the stream.
func (c *Conn) ReadExact(ctx context.Context, n int) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}

	for len(c.buf) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk := make([]byte, readChunkSize)
		read, err := c.stream.Read(chunk)
		if read > 0 {
			c.buf = append(c.buf, chunk[:read]...)
		}
		if err != nil {
			if err == io.EOF && len(c.buf) >= n {
				break
			}
			return nil, fmt.Errorf("read %d bytes (have %d): %w", n, len(c.buf), err)
		}
	}

	out := c.buf[:n:n]
	c.buf = c.buf[n:]
	return out, nil
}

// Write writes the whole buffer to the stream.
func (c *Conn) Write(ctx context.Context, p []byte) error {
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.stream.Write(p); err != nil {
		return fmt.Errorf("write %d bytes: %w", len(p), err)
	}
	return nil
}

// Buffered returns the number of bytes already read from the stream but
// not yet consumed.
func (c *Conn) Buffered() int {
	return len(c.buf)
}

// DrainBuffered returns and clears all currently buffered bytes without
// touching the stream.
func (c *Conn) DrainBuffered() []byte {
	out := c.buf
	c.buf = nil
	return out
}

// Close closes the underlying stream. Pending reads fail once the stream
// is closed.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.buf = nil
	return c.stream.Close()
}
