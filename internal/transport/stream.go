// Package transport provides the raw byte-stream layer both protocol
// engines sit on: a duplex stream abstraction, an exact-read buffered
// connection, and the length-prefixed property-list packet exchange used
// during service handshakes.
//
// Session bootstrap (pairing, TLS, port selection) happens outside this
// package; a Stream handed to the engines is expected to carry raw protocol
// bytes from the first read.
package transport

import (
	"context"
	"io"
	"net"
	"time"
)

// Compile-time interface checks.
var _ Dialer = (*TCPDialer)(nil)

// Stream is a connected duplex byte stream, already past any transport
// level session bootstrap.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// Dialer opens streams to a device address.
type Dialer interface {
	Dial(ctx context.Context, address string) (Stream, error)
}

// SecureStream is a stream wrapped in caller-negotiated transport
// security. Engines that require raw framing past the session bootstrap
// unwrap it before use.
type SecureStream interface {
	Stream

	// RawStream returns the underlying stream with the security wrapper
	// stripped.
	RawStream() Stream
}

// TCPDialer dials devices over plain TCP. This is the development
// transport; tunneled transports satisfy the same interfaces.
type TCPDialer struct {
	dialer net.Dialer
}

// NewTCPDialer creates a TCP dialer. A zero timeout means no limit
// beyond the context deadline.
func NewTCPDialer(timeout time.Duration) *TCPDialer {
	return &TCPDialer{dialer: net.Dialer{Timeout: timeout}}
}

// Dial opens a TCP connection to address ("host:port").
func (d *TCPDialer) Dial(ctx context.Context, address string) (Stream, error) {
	conn, err := d.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
