package transport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopbackStream echoes everything written back to the reader.
type loopbackStream struct {
	buf bytes.Buffer
}

func (s *loopbackStream) Read(p []byte) (int, error) {
	if s.buf.Len() == 0 {
		return 0, io.EOF
	}
	return s.buf.Read(p)
}

func (s *loopbackStream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *loopbackStream) Close() error { return nil }

func TestPlistPacketRoundTrip(t *testing.T) {
	c := NewConn(&loopbackStream{})
	ctx := context.Background()

	sent := map[string]interface{}{
		"Request": "Checkin",
		"Label":   "tether",
	}
	require.NoError(t, c.SendPlist(ctx, sent))

	got, err := c.RecvPlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Checkin", got["Request"])
	assert.Equal(t, "tether", got["Label"])
}

func TestRecvPlistRejectsOversizedPacket(t *testing.T) {
	s := &loopbackStream{}
	s.buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	c := NewConn(s)
	_, err := c.RecvPlist(context.Background())
	assert.Error(t, err)
}
