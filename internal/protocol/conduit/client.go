// Package conduit implements the file-conduit protocol engine: a
// request/response file-access protocol over a single raw byte stream.
//
// A Client owns one connection, connects lazily on the first operation,
// and serializes requests: every operation dispatches one packet with a
// strictly increasing sequence number and consumes exactly one response
// before the next operation may run.
package conduit

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/skipfire/tether/internal/logger"
	"github.com/skipfire/tether/internal/protocol/conduit/header"
	"github.com/skipfire/tether/internal/telemetry"
	"github.com/skipfire/tether/internal/transport"
)

// ErrClientClosed is returned for operations on a closed client.
var ErrClientClosed = errors.New("conduit client is closed")

// Client is one file-conduit protocol connection.
//
// Not safe for concurrent use. Callers must not issue an overlapping
// second operation before the first returns.
type Client struct {
	dialer  transport.Dialer
	address string
	label   string

	conn      *transport.Conn
	packetNum uint64
	closed    bool
	chunkSize int

	metrics *telemetry.Metrics
	logCtx  *logger.LogContext
}

// NewClient creates a disconnected client for the file-conduit service
// at the given device address. The label identifies this controller in
// the service handshake.
func NewClient(dialer transport.Dialer, address, label string) *Client {
	return &Client{
		dialer:    dialer,
		address:   address,
		label:     label,
		chunkSize: defaultChunkSize,
		metrics:   telemetry.Default(),
		logCtx:    logger.NewLogContext(address),
	}
}

// WithChunkSize overrides the per-request transfer chunk size. Values
// below one are ignored.
func (c *Client) WithChunkSize(n int) *Client {
	if n > 0 {
		c.chunkSize = n
	}
	return c
}

// ensureConnected dials and performs the service handshake on first use.
// After the handshake the stream carries raw binary frames only.
func (c *Client) ensureConnected(ctx context.Context) error {
	if c.closed {
		return ErrClientClosed
	}
	if c.conn != nil {
		return nil
	}

	stream, err := c.dialer.Dial(ctx, c.address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.address, err)
	}
	if secure, ok := stream.(transport.SecureStream); ok {
		stream = secure.RawStream()
	}

	conn := transport.NewConn(stream)
	if err := transport.Checkin(ctx, conn, c.label); err != nil {
		conn.Close()
		return fmt.Errorf("conduit service handshake: %w", err)
	}

	c.conn = conn
	logger.InfoCtx(logger.WithContext(ctx, c.logCtx), "file-conduit connection ready")
	return nil
}

// Close tears down the connection. Pending reads abort with an error.
func (c *Client) Close() error {
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// dispatchPacket frames and writes one request. thisLength zero means
// the header covers the whole packet; WRITE passes the handle-only
// override.
func (c *Client) dispatchPacket(ctx context.Context, op Opcode, payload []byte, thisLength uint64) error {
	c.packetNum++

	h := header.New(uint64(op), c.packetNum, len(payload))
	if thisLength != 0 {
		h.ThisLength = thisLength
	}

	packet := make([]byte, 0, header.HeaderSize+len(payload))
	packet = append(packet, h.Encode()...)
	packet = append(packet, payload...)

	if err := c.conn.Write(ctx, packet); err != nil {
		return err
	}

	logger.Debug("conduit request sent",
		logger.KeyOpcode, op.String(),
		logger.KeyPacketNum, c.packetNum,
		logger.KeySize, len(payload))
	return nil
}

// receiveResponse reads one response frame. STATUS responses resolve to
// their status code with no data; everything else returns the payload.
func (c *Client) receiveResponse(ctx context.Context) (Status, []byte, error) {
	headerBytes, err := c.conn.ReadExact(ctx, header.HeaderSize)
	if err != nil {
		return 0, nil, err
	}
	h, err := header.Parse(headerBytes)
	if err != nil {
		return 0, nil, err
	}

	var payload []byte
	if n := h.PayloadLength(); n > 0 {
		payload, err = c.conn.ReadExact(ctx, int(n))
		if err != nil {
			return 0, nil, err
		}
	}

	if Opcode(h.Operation) == OpStatus {
		if len(payload) < 8 {
			return 0, nil, fmt.Errorf("status response payload too short: %w", header.ErrPacketTooShort)
		}
		return Status(binary.LittleEndian.Uint64(payload[:8])), nil, nil
	}
	return StatusSuccess, payload, nil
}

// doOperation dispatches one request and awaits its single response,
// converting a non-success status into a ConduitError.
func (c *Client) doOperation(ctx context.Context, op Opcode, payload []byte, thisLength uint64, targetPath string) ([]byte, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	if err := c.dispatchPacket(ctx, op, payload, thisLength); err != nil {
		return nil, err
	}

	status, data, err := c.receiveResponse(ctx)
	if err != nil {
		return nil, err
	}

	c.metrics.ConduitOps.WithLabelValues(op.String(), status.String()).Inc()
	if status != StatusSuccess {
		return nil, &ConduitError{Op: op, Status: status, Path: targetPath}
	}
	return data, nil
}

// ListDir returns the sorted names in a directory, with the dot entries
// stripped.
func (c *Client) ListDir(ctx context.Context, dir string) ([]string, error) {
	data, err := c.doOperation(ctx, OpReadDir, pathPayload(dir), 0, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, field := range splitNullDelimited(data) {
		if field == "." || field == ".." {
			continue
		}
		names = append(names, field)
	}
	sort.Strings(names)

	logger.Debug("directory listed", logger.KeyPath, dir, logger.KeyEntries, len(names))
	return names, nil
}

// Stat returns the decoded metadata for a path.
func (c *Client) Stat(ctx context.Context, target string) (*StatInfo, error) {
	data, err := c.doOperation(ctx, OpGetFileInfo, pathPayload(target), 0, target)
	if err != nil {
		return nil, err
	}
	return parseStat(parseKeyValues(data)), nil
}

// IsDir reports whether the path names a directory.
func (c *Client) IsDir(ctx context.Context, target string) (bool, error) {
	info, err := c.Stat(ctx, target)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Exists reports whether the path names any object. Only "object not
// found" is mapped to false; other failures surface as errors.
func (c *Client) Exists(ctx context.Context, target string) (bool, error) {
	_, err := c.Stat(ctx, target)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	return false, err
}

// MakeDir creates a directory. Parent directories are created as needed
// by the device.
func (c *Client) MakeDir(ctx context.Context, dir string) error {
	_, err := c.doOperation(ctx, OpMakeDir, pathPayload(dir), 0, dir)
	return err
}

// Rename moves an object from source to target.
func (c *Client) Rename(ctx context.Context, source, target string) error {
	_, err := c.doOperation(ctx, OpRenamePath, renamePayload(source, target), 0, source)
	if err != nil {
		return err
	}
	logger.Debug("path renamed",
		logger.KeyOldPath, source,
		logger.KeyNewPath, target)
	return nil
}

// MakeLink creates a hard or symbolic link named linkName pointing at
// target.
func (c *Client) MakeLink(ctx context.Context, kind LinkKind, target, linkName string) error {
	_, err := c.doOperation(ctx, OpMakeLink, linkPayload(kind, target, linkName), 0, linkName)
	if err != nil {
		return err
	}
	logger.Debug("link created",
		logger.KeyPath, linkName,
		logger.KeyLinkTarget, target)
	return nil
}

// DeviceInfo returns the device-reported filesystem information, such
// as the model, total disk capacity and block size.
func (c *Client) DeviceInfo(ctx context.Context) (map[string]string, error) {
	data, err := c.doOperation(ctx, OpGetDevInfo, nil, 0, "")
	if err != nil {
		return nil, err
	}
	return parseKeyValues(data), nil
}

// resolvePath follows a single-level symlink: a link target replaces
// the path, resolved against the link's directory when relative. Any
// other object resolves to itself.
func (c *Client) resolvePath(ctx context.Context, target string) (string, error) {
	info, err := c.Stat(ctx, target)
	if err != nil {
		return "", err
	}
	if !info.IsLink() || info.LinkTarget == "" {
		return target, nil
	}
	if path.IsAbs(info.LinkTarget) {
		return info.LinkTarget, nil
	}
	return path.Join(path.Dir(target), info.LinkTarget), nil
}

func splitNullDelimited(data []byte) []string {
	var out []string
	start := 0
	for i, b := range data {
		if b == 0 {
			if i > start {
				out = append(out, string(data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, string(data[start:]))
	}
	return out
}
