package transport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkStream serves canned bytes in fixed-size chunks to exercise the
// leftover-retention path.
type chunkStream struct {
	data      *bytes.Reader
	chunkSize int
	closed    bool
}

func newChunkStream(data []byte, chunkSize int) *chunkStream {
	return &chunkStream{data: bytes.NewReader(data), chunkSize: chunkSize}
}

func (s *chunkStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	limit := len(p)
	if limit > s.chunkSize {
		limit = s.chunkSize
	}
	return s.data.Read(p[:limit])
}

func (s *chunkStream) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

func TestReadExactRetainsLeftover(t *testing.T) {
	payload := []byte("abcdefghij")
	c := NewConn(newChunkStream(payload, 7))
	ctx := context.Background()

	first, err := c.ReadExact(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), first)

	// The 7-byte chunk read left "efg" buffered.
	assert.Equal(t, 3, c.Buffered())

	second, err := c.ReadExact(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("efghij"), second)
	assert.Equal(t, 0, c.Buffered())
}

func TestReadExactShortStream(t *testing.T) {
	c := NewConn(newChunkStream([]byte("abc"), 8))

	_, err := c.ReadExact(context.Background(), 10)
	assert.Error(t, err)
}

func TestReadExactAfterClose(t *testing.T) {
	c := NewConn(newChunkStream([]byte("abc"), 8))
	require.NoError(t, c.Close())

	_, err := c.ReadExact(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDrainBuffered(t *testing.T) {
	c := NewConn(newChunkStream([]byte("abcdef"), 6))
	ctx := context.Background()

	_, err := c.ReadExact(ctx, 2)
	require.NoError(t, err)

	drained := c.DrainBuffered()
	assert.Equal(t, []byte("cdef"), drained)
	assert.Equal(t, 0, c.Buffered())
}

func TestReadExactCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConn(newChunkStream([]byte("abc"), 8))
	_, err := c.ReadExact(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
