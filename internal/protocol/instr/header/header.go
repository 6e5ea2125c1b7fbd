// Package header provides instrumentation protocol header parsing and encoding.
//
// Every instrumentation message starts with a fixed 32-byte message header,
// followed by a 16-byte payload header on the first fragment, followed by the
// payload itself (auxiliary section plus archived object section).
//
// # Message Header Structure (32 bytes, little-endian)
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│ Offset │ Size │ Field             │ Description                     │
//	├────────┼──────┼───────────────────┼─────────────────────────────────┤
//	│   0    │  4   │ Magic             │ 0x1F3D5B79                      │
//	│   4    │  4   │ CB                │ Header size, always 32          │
//	│   8    │  2   │ FragmentID        │ Index of this fragment          │
//	│  10    │  2   │ FragmentCount     │ Total fragments in the message  │
//	│  12    │  4   │ Length            │ Payload bytes in this fragment  │
//	│  16    │  4   │ Identifier        │ Monotonic message identifier    │
//	│  20    │  4   │ ConversationIndex │ 0 request, 1 reply, 2+ follow-up│
//	│  24    │  4   │ ChannelCode       │ Signed; negative = OOB stream   │
//	│  28    │  4   │ ExpectsReply      │ 1 if a reply is expected        │
//	└────────┴──────┴───────────────────┴─────────────────────────────────┘
//
// # Payload Header Structure (16 bytes, little-endian)
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│ Offset │ Size │ Field           │ Description                       │
//	├────────┼──────┼─────────────────┼───────────────────────────────────┤
//	│   0    │  4   │ Flags           │ Message kind bits + compression   │
//	│   4    │  4   │ AuxiliaryLength │ Bytes of auxiliary section        │
//	│   8    │  8   │ TotalLength     │ Auxiliary + object bytes combined │
//	└────────┴──────┴─────────────────┴───────────────────────────────────┘
//
// A message whose FragmentCount is greater than one is split across several
// wire fragments; only the reassembled payload carries the payload header.
package header

// Magic identifies an instrumentation message header on the wire.
const Magic = 0x1F3D5B79

// MessageHeaderSize is the fixed size of the message header (32 bytes).
const MessageHeaderSize = 32

// PayloadHeaderSize is the fixed size of the payload header (16 bytes).
const PayloadHeaderSize = 16

// Payload header flag bits.
const (
	// FlagHasObject is set when the payload carries an archived object
	// section (a method invocation with a selector).
	FlagHasObject = 0x2

	// compressionShift and compressionMask extract the compression
	// indicator bitfield from the payload header flags. A non-zero value
	// means the payload is compressed.
	compressionShift = 12
	compressionMask  = 0xFF000
)

// MessageHeader is the 32-byte frame header prefixing every fragment.
type MessageHeader struct {
	// FragmentID is the zero-based index of this fragment.
	FragmentID uint16

	// FragmentCount is the total number of fragments in the message.
	// A value of 1 means the message is unfragmented.
	FragmentCount uint16

	// Length is the number of payload bytes carried by this fragment.
	Length uint32

	// Identifier is the monotonically increasing message identifier.
	// Used for diagnostics only; reply matching is stream-order based.
	Identifier uint32

	// ConversationIndex is 0 for requests and increments on each reply
	// in the same conversation.
	ConversationIndex uint32

	// ChannelCode addresses the logical channel. Positive codes are
	// regular channels, negative codes are out-of-band stream channels,
	// zero is the reserved broadcast channel.
	ChannelCode int32

	// ExpectsReply is true when the peer should send a reply.
	ExpectsReply bool
}

// IsLastFragment returns true when this fragment completes its message.
func (h *MessageHeader) IsLastFragment() bool {
	return h.FragmentID == h.FragmentCount-1
}

// IsBroadcast returns true for messages on the reserved channel 0.
func (h *MessageHeader) IsBroadcast() bool {
	return h.ChannelCode == 0
}

// PayloadHeader prefixes the reassembled payload of a message.
type PayloadHeader struct {
	// Flags carries the message kind bits and the compression indicator.
	Flags uint32

	// AuxiliaryLength is the size in bytes of the auxiliary section that
	// immediately follows this header.
	AuxiliaryLength uint32

	// TotalLength is the combined size of the auxiliary section and the
	// archived object section.
	TotalLength uint64
}

// IsCompressed returns true when the compression indicator bitfield is
// non-zero. Compressed payloads are not supported by this engine.
func (h *PayloadHeader) IsCompressed() bool {
	return (h.Flags&compressionMask)>>compressionShift != 0
}

// ObjectLength returns the size of the archived object section.
func (h *PayloadHeader) ObjectLength() uint64 {
	return h.TotalLength - uint64(h.AuxiliaryLength)
}
