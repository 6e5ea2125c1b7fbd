package header

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	// ErrInvalidMagic indicates the buffer does not start with "CFA6LPAA".
	ErrInvalidMagic = errors.New("invalid file-conduit packet magic")
	// ErrPacketTooShort indicates the buffer is too short for a header.
	ErrPacketTooShort = errors.New("packet too short for file-conduit header")
	// ErrInvalidLength indicates the length fields are inconsistent.
	ErrInvalidLength = errors.New("invalid file-conduit length fields")
)

// Parse extracts a Header from wire format (little-endian).
func Parse(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrPacketTooShort
	}

	if !bytes.Equal(data[0:8], Magic[:]) {
		return nil, ErrInvalidMagic
	}

	h := &Header{
		EntireLength: binary.LittleEndian.Uint64(data[8:16]),
		ThisLength:   binary.LittleEndian.Uint64(data[16:24]),
		PacketNum:    binary.LittleEndian.Uint64(data[24:32]),
		Operation:    binary.LittleEndian.Uint64(data[32:40]),
	}

	if h.EntireLength < HeaderSize || h.ThisLength < HeaderSize || h.ThisLength > h.EntireLength {
		return nil, ErrInvalidLength
	}

	return h, nil
}
