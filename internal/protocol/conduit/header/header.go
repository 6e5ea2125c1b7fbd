// Package header provides file-conduit packet header parsing and encoding.
//
// Every file-conduit packet starts with a fixed 40-byte header. All integer
// fields are 64-bit little-endian.
//
// # Header Structure (40 bytes)
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│ Offset │ Size │ Field        │ Description                          │
//	├────────┼──────┼──────────────┼──────────────────────────────────────┤
//	│   0    │  8   │ Magic        │ ASCII "CFA6LPAA"                     │
//	│   8    │  8   │ EntireLength │ Header + full payload length         │
//	│  16    │  8   │ ThisLength   │ Header + leading payload length      │
//	│  24    │  8   │ PacketNum    │ Strictly increasing per connection   │
//	│  32    │  8   │ Operation    │ Operation code                       │
//	└────────┴──────┴──────────────┴──────────────────────────────────────┘
//
// ThisLength equals EntireLength for every operation except WRITE: a write
// packet carries the file handle inside the header-covered region
// (ThisLength = 48) while the data bytes extend EntireLength beyond it.
package header

// HeaderSize is the fixed size of the file-conduit header (40 bytes).
const HeaderSize = 40

// WriteThisLength is the ThisLength override used by WRITE packets:
// the 40-byte header plus the 8-byte file handle.
const WriteThisLength = HeaderSize + 8

// Magic is the 8-byte ASCII packet magic.
var Magic = [8]byte{'C', 'F', 'A', '6', 'L', 'P', 'A', 'A'}

// Header is the 40-byte frame header prefixing every file-conduit packet.
type Header struct {
	// EntireLength is the total packet length including this header.
	EntireLength uint64

	// ThisLength is the length of the header-covered region. Differs from
	// EntireLength only for WRITE packets.
	ThisLength uint64

	// PacketNum is the packet sequence number, strictly increasing over
	// the lifetime of a connection.
	PacketNum uint64

	// Operation is the operation code for this packet.
	Operation uint64
}

// PayloadLength returns the number of payload bytes following the header.
func (h *Header) PayloadLength() uint64 {
	return h.EntireLength - HeaderSize
}
