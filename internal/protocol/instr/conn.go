// Package instr implements the instrumentation protocol engine: a
// multiplexed, fragmented remote-invocation protocol driving on-device
// diagnostic services over a single raw byte stream.
//
// A Conn owns the stream, the per-channel fragment reassemblers, and the
// channel cache. All I/O is serialized on the caller: multiplexing is
// logical, not concurrent, and reply matching is stream-order based.
package instr

import (
	"context"
	"fmt"

	"github.com/skipfire/tether/internal/logger"
	"github.com/skipfire/tether/internal/protocol/archive"
	"github.com/skipfire/tether/internal/protocol/instr/header"
	"github.com/skipfire/tether/internal/telemetry"
	"github.com/skipfire/tether/internal/transport"
)

// BroadcastChannel is the reserved channel for connection management
// messages: the capabilities handshake, channel requests, cancellations.
const BroadcastChannel = 0

// Selectors used on the broadcast channel.
const (
	capabilitiesSelector    = "_notifyOfPublishedCapabilities:"
	requestChannelSelector  = "_requestChannelWithCode:identifier:"
	channelCanceledSelector = "_channelCanceled:"
)

// localCapabilities is announced to the device during the handshake.
// Block compression is declared unsupported; compressed replies are
// rejected in parsePayload.
var localCapabilities = map[string]interface{}{
	"com.apple.private.DTXConnection":       uint64(1),
	"com.apple.private.DTXBlockCompression": uint64(0),
}

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is one instrumentation protocol connection.
//
// Not safe for concurrent use: the engine serializes reads from the one
// shared byte-buffer owner, and callers must not issue an overlapping
// second request on a channel before consuming the first reply.
type Conn struct {
	dialer  transport.Dialer
	address string

	conn  *transport.Conn
	state State

	nextIdentifier  uint32
	nextChannelCode int32

	// channels caches open channels by service identifier; fragmenters
	// holds one reassembler per channel code (keyed by absolute value),
	// created lazily. Both are connection-scoped and torn down on Close.
	channels    map[string]*Channel
	fragmenters map[int32]*Reassembler

	capabilities *Capabilities
	metrics      *telemetry.Metrics
	logCtx       *logger.LogContext
}

// New creates a disconnected instrumentation connection for the given
// device address.
func New(dialer transport.Dialer, address string) *Conn {
	return &Conn{
		dialer:          dialer,
		address:         address,
		state:           StateDisconnected,
		nextChannelCode: 1,
		channels:        make(map[string]*Channel),
		fragmenters:     make(map[int32]*Reassembler),
		metrics:         telemetry.Default(),
		logCtx:          logger.NewLogContext(address),
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	return c.state
}

// Capabilities returns the device's classified capability announcement.
// Nil before a successful Connect.
func (c *Conn) Capabilities() *Capabilities {
	return c.capabilities
}

// Connect opens the underlying stream and performs the capabilities
// handshake. Any transport security wrapper negotiated by the caller is
// stripped first; raw framing is expected beyond this point. Handshake
// failure is fatal and leaves the connection disconnected.
func (c *Conn) Connect(ctx context.Context) error {
	if c.state != StateDisconnected {
		return &StateError{Op: "connect", State: c.state}
	}
	ctx = logger.WithContext(ctx, c.logCtx)

	stream, err := c.dialer.Dial(ctx, c.address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.address, err)
	}
	if secure, ok := stream.(transport.SecureStream); ok {
		stream = secure.RawStream()
	}

	c.conn = transport.NewConn(stream)
	c.state = StateHandshaking

	if err := c.handshake(ctx); err != nil {
		c.conn.Close()
		c.conn = nil
		c.state = StateDisconnected
		return err
	}

	// Drain anything the device sent ahead of time. Best-effort: these
	// bytes belong to no pending request.
	if n := c.conn.Buffered(); n > 0 {
		logger.DebugCtx(ctx, "draining bytes buffered ahead of handshake", "bytes", n)
		c.conn.DrainBuffered()
	}

	c.state = StateReady
	logger.InfoCtx(ctx, "instrumentation connection ready",
		"capabilities", len(c.capabilities.Names),
		"shape", c.capabilities.Kind.String())
	return nil
}

// handshake announces local capabilities on the broadcast channel and
// verifies the echoed reply.
func (c *Conn) handshake(ctx context.Context) error {
	err := c.SendMessage(ctx, BroadcastChannel, capabilitiesSelector,
		[]AuxValue{ObjectArg(localCapabilities)}, false)
	if err != nil {
		return &HandshakeError{Reason: fmt.Sprintf("send capability announcement: %v", err)}
	}

	reply, err := c.RecvPlist(ctx, BroadcastChannel)
	if err != nil {
		return &HandshakeError{Reason: fmt.Sprintf("read capability reply: %v", err)}
	}

	selector, ok := reply.Object.(string)
	if !ok || selector != capabilitiesSelector {
		return &HandshakeError{Reason: fmt.Sprintf("reply selector %q does not echo announcement", selector)}
	}

	caps, err := reply.Capabilities()
	if err != nil {
		return err
	}
	c.capabilities = caps
	return nil
}

// MakeChannel opens (or returns the cached) channel for a service
// identifier. Idempotent per identifier: a cache hit returns the same
// Channel without another channel-request message. Channel codes are
// allocated sequentially and never reused on a connection.
func (c *Conn) MakeChannel(ctx context.Context, identifier string) (*Channel, error) {
	if c.state != StateReady {
		return nil, &StateError{Op: "make channel", State: c.state}
	}

	if ch, ok := c.channels[identifier]; ok {
		return ch, nil
	}

	code := c.nextChannelCode
	c.nextChannelCode++

	err := c.SendMessage(ctx, BroadcastChannel, requestChannelSelector,
		[]AuxValue{Int32Arg(code), ObjectArg(identifier)}, true)
	if err != nil {
		return nil, fmt.Errorf("request channel for %s: %w", identifier, err)
	}

	reply, err := c.RecvPlist(ctx, BroadcastChannel)
	if err != nil {
		return nil, fmt.Errorf("read channel reply for %s: %w", identifier, err)
	}
	if remoteErr := reply.RemoteError(); remoteErr != nil {
		return nil, fmt.Errorf("channel request for %s rejected: %w", identifier, remoteErr)
	}

	ch := &Channel{conn: c, code: code, identifier: identifier}
	c.channels[identifier] = ch
	c.metrics.ChannelsOpen.Inc()

	logger.Debug("channel opened",
		logger.KeyService, identifier,
		logger.KeyChannel, code)
	return ch, nil
}

// SendMessage composes and atomically writes one message: message header,
// payload header, auxiliary section, archived selector.
func (c *Conn) SendMessage(ctx context.Context, channelCode int32, selector string, aux []AuxValue, expectsReply bool) error {
	if c.state != StateReady && c.state != StateHandshaking {
		return &StateError{Op: "send message", State: c.state}
	}

	auxBytes, err := EncodeAux(aux)
	if err != nil {
		return err
	}

	var objectBytes []byte
	var flags uint32
	if selector != "" {
		objectBytes, err = archive.EncodeBytes(selector)
		if err != nil {
			return fmt.Errorf("archive selector %q: %w", selector, err)
		}
		flags |= header.FlagHasObject
	}

	total := uint64(len(auxBytes) + len(objectBytes))
	payloadHeader := header.PayloadHeader{
		Flags:           flags,
		AuxiliaryLength: uint32(len(auxBytes)),
		TotalLength:     total,
	}

	c.nextIdentifier++
	messageHeader := header.MessageHeader{
		FragmentCount: 1,
		Length:        uint32(header.PayloadHeaderSize + int(total)),
		Identifier:    c.nextIdentifier,
		ChannelCode:   channelCode,
		ExpectsReply:  expectsReply,
	}

	packet := make([]byte, 0, header.MessageHeaderSize+header.PayloadHeaderSize+int(total))
	packet = append(packet, messageHeader.Encode()...)
	packet = append(packet, payloadHeader.Encode()...)
	packet = append(packet, auxBytes...)
	packet = append(packet, objectBytes...)

	if err := c.conn.Write(ctx, packet); err != nil {
		return err
	}

	c.metrics.MessagesSent.WithLabelValues(selector).Inc()
	logger.Debug("message sent",
		logger.KeyChannel, channelCode,
		logger.KeySelector, selector,
		logger.KeyMsgID, c.nextIdentifier,
		"expects_reply", expectsReply)
	return nil
}

// RecvMessage waits for the next complete message on the given channel,
// reading and routing frames for other channels into their reassemblers
// along the way. The object section is left undecoded.
func (c *Conn) RecvMessage(ctx context.Context, channelCode int32) (*Message, error) {
	if c.state != StateReady && c.state != StateHandshaking {
		return nil, &StateError{Op: "receive message", State: c.state}
	}

	reassembler := c.fragmenter(channelCode)
	for {
		if payload, ok := reassembler.Get(); ok {
			return c.parsePayload(payload)
		}
		if err := c.readFrame(ctx); err != nil {
			return nil, err
		}
	}
}

// RecvPlist waits for the next complete message and decodes its object
// section as an archive. A malformed object logs and leaves Object nil
// rather than failing the message.
func (c *Conn) RecvPlist(ctx context.Context, channelCode int32) (*Message, error) {
	msg, err := c.RecvMessage(ctx, channelCode)
	if err != nil {
		return nil, err
	}

	if len(msg.ObjectBytes) > 0 {
		container, err := archive.FromBytes(msg.ObjectBytes)
		if err != nil {
			logger.Warn("undecodable object section, delivering message without it",
				logger.KeyChannel, channelCode,
				logger.KeyError, err.Error())
			return msg, nil
		}
		msg.container = container
		msg.Object = container.Decode()
	}
	return msg, nil
}

// readFrame reads one wire fragment and routes it to the owning channel's
// reassembler. A header-only fragment 0 of a multi-fragment message is
// discarded and the next frame carries the first payload bytes.
func (c *Conn) readFrame(ctx context.Context) error {
	headerBytes, err := c.conn.ReadExact(ctx, header.MessageHeaderSize)
	if err != nil {
		return err
	}

	h, err := header.Parse(headerBytes)
	if err != nil {
		return err
	}

	if h.FragmentCount > 1 && h.FragmentID == 0 {
		return nil
	}

	payload, err := c.conn.ReadExact(ctx, int(h.Length))
	if err != nil {
		return err
	}

	c.fragmenter(h.ChannelCode).Add(h, payload)

	if h.IsLastFragment() {
		kind := "regular"
		if h.ChannelCode < 0 {
			kind = "stream"
		}
		c.metrics.MessagesReceived.WithLabelValues(kind).Inc()
		logger.Debug("message reassembled",
			logger.KeyChannel, h.ChannelCode,
			logger.KeyMsgID, h.Identifier,
			logger.KeyFragments, h.FragmentCount)
	}
	return nil
}

// parsePayload splits a reassembled payload into its auxiliary and object
// sections and decodes the auxiliary data.
func (c *Conn) parsePayload(payload []byte) (*Message, error) {
	payloadHeader, err := header.ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	if payloadHeader.IsCompressed() {
		return nil, &ProtocolError{Reason: "compressed payloads are not supported"}
	}

	body := payload[header.PayloadHeaderSize:]
	auxLen := int(payloadHeader.AuxiliaryLength)
	if auxLen > len(body) {
		return nil, &ProtocolError{Reason: "auxiliary length exceeds payload"}
	}

	auxBytes := body[:auxLen]
	objectBytes := body[auxLen:]

	msg := &Message{}
	if len(auxBytes) > 0 {
		if isTaggedAux(auxBytes) {
			msg.Aux, err = DecodeAux(auxBytes)
			if err != nil {
				return nil, err
			}
		} else {
			// Handshake replies embed a whole archive in the auxiliary
			// section instead of tagged items.
			decoded, err := archive.DecodeBytes(auxBytes)
			if err != nil {
				logger.Warn("undecodable auxiliary archive, delivering message without it",
					logger.KeyError, err.Error())
			} else {
				msg.AuxArchive = decoded
			}
		}
	}
	if len(objectBytes) > 0 {
		msg.ObjectBytes = objectBytes
	}
	return msg, nil
}

// fragmenter returns the reassembler for a channel code, creating it
// lazily. Reassemblers are keyed by absolute value: a channel and its
// out-of-band stream twin share one instance.
func (c *Conn) fragmenter(channelCode int32) *Reassembler {
	key := channelCode
	if key < 0 {
		key = -key
	}
	r, ok := c.fragmenters[key]
	if !ok {
		r = NewReassembler()
		c.fragmenters[key] = r
	}
	return r
}

// Close sends a best-effort cancellation notice for every open channel,
// tears down the connection, and resets all per-channel state. Pending
// reads abort with an error once the stream closes.
func (c *Conn) Close(ctx context.Context) error {
	if c.state == StateClosed {
		return nil
	}
	if c.conn == nil {
		c.state = StateClosed
		return nil
	}

	for _, ch := range c.channels {
		err := c.SendMessage(ctx, BroadcastChannel, channelCanceledSelector,
			[]AuxValue{Int32Arg(ch.code)}, false)
		if err != nil {
			logger.Warn("failed to send channel cancellation",
				logger.KeyChannel, ch.code,
				logger.KeyError, err.Error())
		}
	}
	c.metrics.ChannelsOpen.Sub(float64(len(c.channels)))

	err := c.conn.Close()
	c.conn = nil
	c.channels = make(map[string]*Channel)
	c.fragmenters = make(map[int32]*Reassembler)
	c.state = StateClosed
	return err
}
