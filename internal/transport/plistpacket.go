package transport

import (
	"context"
	"encoding/binary"
	"fmt"

	"howett.net/plist"
)

// maxPlistPacketSize bounds handshake packets so a corrupt length prefix
// cannot trigger an enormous allocation.
const maxPlistPacketSize = 16 * 1024 * 1024

// SendPlist writes a length-prefixed property-list packet: a 4-byte
// big-endian length followed by an XML plist body.
func (c *Conn) SendPlist(ctx context.Context, v interface{}) error {
	body, err := plist.Marshal(v, plist.XMLFormat)
	if err != nil {
		return fmt.Errorf("marshal plist packet: %w", err)
	}

	packet := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(packet[0:4], uint32(len(body)))
	copy(packet[4:], body)

	return c.Write(ctx, packet)
}

// RecvPlist reads one length-prefixed property-list packet and decodes it
// into a dictionary.
func (c *Conn) RecvPlist(ctx context.Context) (map[string]interface{}, error) {
	prefix, err := c.ReadExact(ctx, 4)
	if err != nil {
		return nil, fmt.Errorf("read plist packet length: %w", err)
	}

	size := binary.BigEndian.Uint32(prefix)
	if size > maxPlistPacketSize {
		return nil, fmt.Errorf("plist packet length %d exceeds maximum %d", size, maxPlistPacketSize)
	}

	body, err := c.ReadExact(ctx, int(size))
	if err != nil {
		return nil, fmt.Errorf("read plist packet body: %w", err)
	}

	var out map[string]interface{}
	if _, err := plist.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse plist packet: %w", err)
	}
	return out, nil
}

// Checkin performs the generic service handshake: one checkin request
// followed by two replies (the checkin acknowledgement and the
// service-ready notice). After Checkin returns the stream carries raw
// binary protocol frames.
func Checkin(ctx context.Context, c *Conn, label string) error {
	request := map[string]interface{}{
		"Request":         "Checkin",
		"Label":           label,
		"ProtocolVersion": "2",
	}
	if err := c.SendPlist(ctx, request); err != nil {
		return fmt.Errorf("send checkin: %w", err)
	}

	ack, err := c.RecvPlist(ctx)
	if err != nil {
		return fmt.Errorf("read checkin ack: %w", err)
	}
	if req, _ := ack["Request"].(string); req != "Checkin" {
		return fmt.Errorf("unexpected checkin ack request %q", req)
	}

	// Second exchange: the service announces readiness. The shape varies
	// by service so only transport errors are treated as fatal here.
	if _, err := c.RecvPlist(ctx); err != nil {
		return fmt.Errorf("read service-ready notice: %w", err)
	}
	return nil
}
