package header

import (
	"encoding/binary"
)

// Encode serializes the message header to wire format (little-endian).
func (h *MessageHeader) Encode() []byte {
	buf := make([]byte, MessageHeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], MessageHeaderSize)
	binary.LittleEndian.PutUint16(buf[8:10], h.FragmentID)
	binary.LittleEndian.PutUint16(buf[10:12], h.FragmentCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.Length)
	binary.LittleEndian.PutUint32(buf[16:20], h.Identifier)
	binary.LittleEndian.PutUint32(buf[20:24], h.ConversationIndex)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.ChannelCode))
	if h.ExpectsReply {
		binary.LittleEndian.PutUint32(buf[28:32], 1)
	}

	return buf
}

// Encode serializes the payload header to wire format (little-endian).
func (h *PayloadHeader) Encode() []byte {
	buf := make([]byte, PayloadHeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], h.Flags)
	binary.LittleEndian.PutUint32(buf[4:8], h.AuxiliaryLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.TotalLength)

	return buf
}
