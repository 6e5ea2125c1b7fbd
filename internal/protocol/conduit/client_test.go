package conduit

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/skipfire/tether/internal/protocol/conduit/header"
	"github.com/skipfire/tether/internal/transport"
)

// scriptStream serves pre-scripted device bytes and records writes.
type scriptStream struct {
	reads  bytes.Buffer
	writes bytes.Buffer
	closed bool
}

func (s *scriptStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if s.reads.Len() == 0 {
		return 0, io.EOF
	}
	return s.reads.Read(p)
}

func (s *scriptStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.writes.Write(p)
}

func (s *scriptStream) Close() error {
	s.closed = true
	return nil
}

type scriptDialer struct {
	stream *scriptStream
}

func (d *scriptDialer) Dial(_ context.Context, _ string) (transport.Stream, error) {
	return d.stream, nil
}

func plistPacket(t *testing.T, v map[string]interface{}) []byte {
	t.Helper()
	body, err := plist.Marshal(v, plist.XMLFormat)
	require.NoError(t, err)

	out := make([]byte, 4, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body)))
	return append(out, body...)
}

func frame(op Opcode, payload []byte) []byte {
	h := header.New(uint64(op), 0, len(payload))
	return append(h.Encode(), payload...)
}

func statusFrame(status Status) []byte {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, uint64(status))
	return frame(OpStatus, payload)
}

func dataFrame(payload []byte) []byte {
	return frame(OpData, payload)
}

// kvPayload builds a null-delimited key/value response body.
func kvPayload(pairs ...string) []byte {
	var buf bytes.Buffer
	for _, p := range pairs {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// scriptedClient returns a client whose stream already holds the two
// handshake replies followed by the given response frames.
func scriptedClient(t *testing.T, responses ...[]byte) (*Client, *scriptStream) {
	t.Helper()

	stream := &scriptStream{}
	stream.reads.Write(plistPacket(t, map[string]interface{}{"Request": "Checkin"}))
	stream.reads.Write(plistPacket(t, map[string]interface{}{"Status": "Complete"}))
	for _, r := range responses {
		stream.reads.Write(r)
	}

	return NewClient(&scriptDialer{stream: stream}, "10.0.0.5:49200", "tether-test"), stream
}

// requestHeaders parses every request frame recorded on the stream,
// skipping the leading handshake plist packet.
func requestHeaders(t *testing.T, stream *scriptStream) []*header.Header {
	t.Helper()

	data := stream.writes.Bytes()
	prefix := binary.BigEndian.Uint32(data[0:4])
	data = data[4+prefix:]

	var headers []*header.Header
	for len(data) > 0 {
		h, err := header.Parse(data)
		require.NoError(t, err)
		headers = append(headers, h)
		data = data[h.EntireLength:]
	}
	return headers
}

func statFrame(pairs ...string) []byte {
	return dataFrame(kvPayload(pairs...))
}

func TestStatTypedFields(t *testing.T) {
	c, _ := scriptedClient(t, statFrame(
		"st_size", "4096",
		"st_blocks", "8",
		"st_nlink", "1",
		"st_ifmt", "S_IFREG",
		"st_mtime", "1714500000123456789",
	))

	info, err := c.Stat(context.Background(), "/books/list.txt")
	require.NoError(t, err)

	assert.Equal(t, int64(4096), info.Size)
	assert.Equal(t, int64(1714500000123), info.MTimeMs)
	assert.False(t, info.IsDir())
	assert.Equal(t, "4096", info.Raw["st_size"])
}

func TestListDirFiltersDotEntries(t *testing.T) {
	c, _ := scriptedClient(t, dataFrame(kvPayload(".", "..", "b.txt", "a.txt")))

	names, err := c.ListDir(context.Background(), "/books")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestExistsNotFound(t *testing.T) {
	c, _ := scriptedClient(t, statusFrame(StatusObjectNotFound))

	exists, err := c.Exists(context.Background(), "/missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsOtherFailureSurfaces(t *testing.T) {
	c, _ := scriptedClient(t, statusFrame(StatusPermissionDenied))

	_, err := c.Exists(context.Background(), "/forbidden")
	var condErr *ConduitError
	require.ErrorAs(t, err, &condErr)
	assert.Equal(t, StatusPermissionDenied, condErr.Status)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}

func TestPacketNumbersStrictlyIncrease(t *testing.T) {
	c, stream := scriptedClient(t,
		statusFrame(StatusSuccess),
		statusFrame(StatusSuccess),
	)
	ctx := context.Background()

	require.NoError(t, c.MakeDir(ctx, "/one"))
	require.NoError(t, c.MakeDir(ctx, "/two"))

	headers := requestHeaders(t, stream)
	require.Len(t, headers, 2)
	assert.Equal(t, uint64(1), headers[0].PacketNum)
	assert.Equal(t, uint64(2), headers[1].PacketNum)
}

func TestFileWriteThisLengthOverride(t *testing.T) {
	c, stream := scriptedClient(t,
		dataFrame(handlePayload(7)),
		statusFrame(StatusSuccess),
	)
	ctx := context.Background()

	handle, err := c.FileOpen(ctx, "/out.bin", ModeWriteTruncate)
	require.NoError(t, err)
	require.Equal(t, uint64(7), handle)

	require.NoError(t, c.FileWrite(ctx, handle, []byte("payload")))

	headers := requestHeaders(t, stream)
	require.Len(t, headers, 2)

	write := headers[1]
	assert.Equal(t, uint64(OpFileWrite), write.Operation)
	assert.Equal(t, uint64(header.WriteThisLength), write.ThisLength)
	// EntireLength still covers the data bytes beyond the override.
	assert.Equal(t, uint64(header.HeaderSize+8+len("payload")), write.EntireLength)
}

func TestContentsFollowsSymlink(t *testing.T) {
	c, stream := scriptedClient(t,
		statFrame("st_ifmt", "S_IFLNK", "LinkTarget", "/real/data.bin"),
		statFrame("st_ifmt", "S_IFREG", "st_size", "5"),
		dataFrame(handlePayload(3)),
		dataFrame([]byte("hello")),
		statusFrame(StatusSuccess),
	)

	data, err := c.Contents(context.Background(), "/alias")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// The second stat and the open both target the resolved path.
	headers := requestHeaders(t, stream)
	require.Len(t, headers, 5)
	assert.Equal(t, uint64(OpFileOpen), headers[2].Operation)
}

func TestContentsRejectsDirectory(t *testing.T) {
	c, _ := scriptedClient(t,
		statFrame("st_ifmt", "S_IFDIR"),
		statFrame("st_ifmt", "S_IFDIR"),
	)

	_, err := c.Contents(context.Background(), "/books")
	var condErr *ConduitError
	require.ErrorAs(t, err, &condErr)
	assert.Equal(t, StatusObjectIsDirectory, condErr.Status)
}

func TestRemoveForceMissingTarget(t *testing.T) {
	c, _ := scriptedClient(t, statusFrame(StatusObjectNotFound))

	failed, err := c.Remove(context.Background(), "/already-gone", true)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestRemoveMissingTargetWithoutForce(t *testing.T) {
	c, _ := scriptedClient(t, statusFrame(StatusObjectNotFound))

	failed, err := c.Remove(context.Background(), "/already-gone", false)
	require.Error(t, err)
	assert.Equal(t, []string{"/already-gone"}, failed)
}

func TestRemoveDirectoryAppendsParentAfterChildren(t *testing.T) {
	c, _ := scriptedClient(t,
		// Stat of the directory itself.
		statFrame("st_ifmt", "S_IFDIR"),
		// Its single child.
		dataFrame(kvPayload("locked.txt")),
		// Child stat: a regular file.
		statFrame("st_ifmt", "S_IFREG"),
		// Child removal is refused.
		statusFrame(StatusPermissionDenied),
		// Directory removal then fails too.
		statusFrame(StatusDirectoryNotEmpty),
	)

	failed, err := c.Remove(context.Background(), "/books", false)

	var rmErr *RemoveError
	require.ErrorAs(t, err, &rmErr)
	assert.Equal(t, []string{"/books/locked.txt", "/books"}, failed)
}

func TestWriteFromCleansUpPartialFile(t *testing.T) {
	c, stream := scriptedClient(t,
		dataFrame(handlePayload(4)),
		// The first write chunk is refused.
		statusFrame(StatusNoSpaceLeft),
		// The close after the failed write.
		statusFrame(StatusSuccess),
		// The compensating remove.
		statusFrame(StatusSuccess),
	)

	_, err := c.WriteFrom(context.Background(), "/big.bin", bytes.NewReader([]byte("data")))
	var condErr *ConduitError
	require.ErrorAs(t, err, &condErr)
	assert.Equal(t, StatusNoSpaceLeft, condErr.Status)

	headers := requestHeaders(t, stream)
	require.Len(t, headers, 4)
	assert.Equal(t, uint64(OpRemovePath), headers[3].Operation)
}

func TestWalkVisitsDirectoriesDepthFirst(t *testing.T) {
	c, _ := scriptedClient(t,
		// /root listing: one dir, one file.
		dataFrame(kvPayload("file.txt", "sub")),
		statFrame("st_ifmt", "S_IFREG"), // file.txt
		statFrame("st_ifmt", "S_IFDIR"), // sub
		// /root/sub listing: one file.
		dataFrame(kvPayload("inner.txt")),
		statFrame("st_ifmt", "S_IFREG"),
	)

	type visit struct {
		dir   string
		dirs  []string
		files []string
	}
	var visits []visit
	err := c.Walk(context.Background(), "/root", func(dir string, dirs, files []string) error {
		visits = append(visits, visit{dir, dirs, files})
		return nil
	})
	require.NoError(t, err)

	require.Len(t, visits, 2)
	assert.Equal(t, "/root", visits[0].dir)
	assert.Equal(t, []string{"sub"}, visits[0].dirs)
	assert.Equal(t, []string{"file.txt"}, visits[0].files)
	assert.Equal(t, "/root/sub", visits[1].dir)
}

func TestDeviceInfo(t *testing.T) {
	c, _ := scriptedClient(t, dataFrame(kvPayload(
		"Model", "J617AP",
		"FSTotalBytes", "128000000000",
		"FSBlockSize", "4096",
	)))

	info, err := c.DeviceInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "J617AP", info["Model"])
	assert.Equal(t, "4096", info["FSBlockSize"])
}

func TestClosedClientFailsFast(t *testing.T) {
	c, _ := scriptedClient(t)
	require.NoError(t, c.Close())

	_, err := c.Stat(context.Background(), "/anything")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestFileReadStopsOnShortResponse(t *testing.T) {
	c, _ := scriptedClient(t,
		dataFrame(handlePayload(9)),
		// Asked for 100 bytes, the device returns 3 and signals EOF
		// with the short response.
		dataFrame([]byte("abc")),
	)
	ctx := context.Background()

	handle, err := c.FileOpen(ctx, "/short.txt", ModeReadOnly)
	require.NoError(t, err)

	data, err := c.FileRead(ctx, handle, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}
