package instr

import (
	"context"
)

// Channel is one logical RPC conversation multiplexed over a shared
// connection. Channels are created by Conn.MakeChannel and cached by
// service identifier; they live until the connection closes.
type Channel struct {
	conn       *Conn
	code       int32
	identifier string
}

// Code returns the channel code assigned by the connection.
func (ch *Channel) Code() int32 {
	return ch.code
}

// Identifier returns the service identifier this channel was opened for.
func (ch *Channel) Identifier() string {
	return ch.identifier
}

// Send issues a remote call without expecting a reply. The method name is
// converted to selector form.
func (ch *Channel) Send(ctx context.Context, method string, args ...AuxValue) error {
	selector := MethodSelector(method, len(args))
	return ch.conn.SendMessage(ctx, ch.code, selector, args, false)
}

// Call issues a remote call expecting a reply, waits for it, decodes the
// reply's object section, and surfaces a device-reported failure as a
// RemoteError. Callers must consume the reply of one call before issuing
// the next on the same channel; reply matching is stream-order based.
func (ch *Channel) Call(ctx context.Context, method string, args ...AuxValue) (*Message, error) {
	selector := MethodSelector(method, len(args))
	if err := ch.conn.SendMessage(ctx, ch.code, selector, args, true); err != nil {
		return nil, err
	}

	msg, err := ch.conn.RecvPlist(ctx, ch.code)
	if err != nil {
		return nil, err
	}
	if remoteErr := msg.RemoteError(); remoteErr != nil {
		return nil, remoteErr
	}
	return msg, nil
}

// ReceiveMessage waits for the next complete message on this channel,
// leaving the object section undecoded.
func (ch *Channel) ReceiveMessage(ctx context.Context) (*Message, error) {
	return ch.conn.RecvMessage(ctx, ch.code)
}

// ReceivePlist waits for the next complete message on this channel and
// decodes the object section as an archive.
func (ch *Channel) ReceivePlist(ctx context.Context) (*Message, error) {
	return ch.conn.RecvPlist(ctx, ch.code)
}
