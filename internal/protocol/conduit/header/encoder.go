package header

import (
	"encoding/binary"
)

// Encode serializes the header to wire format (little-endian).
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:8], Magic[:])
	binary.LittleEndian.PutUint64(buf[8:16], h.EntireLength)
	binary.LittleEndian.PutUint64(buf[16:24], h.ThisLength)
	binary.LittleEndian.PutUint64(buf[24:32], h.PacketNum)
	binary.LittleEndian.PutUint64(buf[32:40], h.Operation)

	return buf
}

// New creates a request header for the given operation and payload length.
// ThisLength defaults to EntireLength; WRITE packets override it separately.
func New(op uint64, packetNum uint64, payloadLen int) *Header {
	entire := uint64(HeaderSize + payloadLen)
	return &Header{
		EntireLength: entire,
		ThisLength:   entire,
		PacketNum:    packetNum,
		Operation:    op,
	}
}
