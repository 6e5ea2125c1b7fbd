package header

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrInvalidMagic indicates the buffer does not start with the
	// instrumentation protocol magic.
	ErrInvalidMagic = errors.New("invalid instrumentation message magic")
	// ErrMessageTooShort indicates the buffer is too short for a message header.
	ErrMessageTooShort = errors.New("message too short for instrumentation header")
	// ErrInvalidHeaderSize indicates the header size field is not 32.
	ErrInvalidHeaderSize = errors.New("invalid instrumentation header size")
	// ErrPayloadTooShort indicates the buffer is too short for a payload header.
	ErrPayloadTooShort = errors.New("payload too short for payload header")
)

// Parse extracts a MessageHeader from wire format (little-endian).
func Parse(data []byte) (*MessageHeader, error) {
	if len(data) < MessageHeaderSize {
		return nil, ErrMessageTooShort
	}

	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	if binary.LittleEndian.Uint32(data[4:8]) != MessageHeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	return &MessageHeader{
		FragmentID:        binary.LittleEndian.Uint16(data[8:10]),
		FragmentCount:     binary.LittleEndian.Uint16(data[10:12]),
		Length:            binary.LittleEndian.Uint32(data[12:16]),
		Identifier:        binary.LittleEndian.Uint32(data[16:20]),
		ConversationIndex: binary.LittleEndian.Uint32(data[20:24]),
		ChannelCode:       int32(binary.LittleEndian.Uint32(data[24:28])),
		ExpectsReply:      binary.LittleEndian.Uint32(data[28:32]) != 0,
	}, nil
}

// ParsePayload extracts a PayloadHeader from wire format (little-endian).
func ParsePayload(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrPayloadTooShort
	}

	return &PayloadHeader{
		Flags:           binary.LittleEndian.Uint32(data[0:4]),
		AuxiliaryLength: binary.LittleEndian.Uint32(data[4:8]),
		TotalLength:     binary.LittleEndian.Uint64(data[8:16]),
	}, nil
}
