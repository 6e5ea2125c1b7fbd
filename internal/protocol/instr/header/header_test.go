package header

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    *MessageHeader
		wantErr error
	}{
		{
			name:    "TooShort",
			data:    make([]byte, MessageHeaderSize-1),
			want:    nil,
			wantErr: ErrMessageTooShort,
		},
		{
			name: "InvalidMagic",
			data: func() []byte {
				d := make([]byte, MessageHeaderSize)
				binary.LittleEndian.PutUint32(d[0:4], 0xDEADBEEF)
				binary.LittleEndian.PutUint32(d[4:8], MessageHeaderSize)
				return d
			}(),
			want:    nil,
			wantErr: ErrInvalidMagic,
		},
		{
			name: "InvalidHeaderSize",
			data: func() []byte {
				d := make([]byte, MessageHeaderSize)
				binary.LittleEndian.PutUint32(d[0:4], Magic)
				binary.LittleEndian.PutUint32(d[4:8], 64)
				return d
			}(),
			want:    nil,
			wantErr: ErrInvalidHeaderSize,
		},
		{
			name: "ValidRequest",
			data: func() []byte {
				d := make([]byte, MessageHeaderSize)
				binary.LittleEndian.PutUint32(d[0:4], Magic)
				binary.LittleEndian.PutUint32(d[4:8], MessageHeaderSize)
				binary.LittleEndian.PutUint16(d[8:10], 0)
				binary.LittleEndian.PutUint16(d[10:12], 1)
				binary.LittleEndian.PutUint32(d[12:16], 128)
				binary.LittleEndian.PutUint32(d[16:20], 7)
				binary.LittleEndian.PutUint32(d[20:24], 0)
				binary.LittleEndian.PutUint32(d[24:28], 3)
				binary.LittleEndian.PutUint32(d[28:32], 1)
				return d
			}(),
			want: &MessageHeader{
				FragmentID:        0,
				FragmentCount:     1,
				Length:            128,
				Identifier:        7,
				ConversationIndex: 0,
				ChannelCode:       3,
				ExpectsReply:      true,
			},
			wantErr: nil,
		},
		{
			name: "NegativeChannelCode",
			data: func() []byte {
				d := make([]byte, MessageHeaderSize)
				binary.LittleEndian.PutUint32(d[0:4], Magic)
				binary.LittleEndian.PutUint32(d[4:8], MessageHeaderSize)
				binary.LittleEndian.PutUint16(d[10:12], 1)
				binary.LittleEndian.PutUint32(d[24:28], uint32(0xFFFFFFFD)) // -3
				return d
			}(),
			want: &MessageHeader{
				FragmentCount: 1,
				ChannelCode:   -3,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.data)
			if err != tt.wantErr {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.want == nil {
				return
			}
			if *got != *tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessageHeaderRoundTrip(t *testing.T) {
	headers := []MessageHeader{
		{FragmentCount: 1, Length: 16, Identifier: 1, ChannelCode: 0},
		{FragmentID: 2, FragmentCount: 3, Length: 65536, Identifier: 42, ConversationIndex: 1, ChannelCode: 5, ExpectsReply: true},
		{FragmentCount: 1, Identifier: 9, ChannelCode: -12},
	}

	for _, h := range headers {
		encoded := h.Encode()
		if len(encoded) != MessageHeaderSize {
			t.Fatalf("Encode() produced %d bytes, want %d", len(encoded), MessageHeaderSize)
		}

		decoded, err := Parse(encoded)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if *decoded != h {
			t.Errorf("round trip = %+v, want %+v", decoded, h)
		}
	}
}

func TestPayloadHeaderRoundTrip(t *testing.T) {
	h := PayloadHeader{
		Flags:           FlagHasObject,
		AuxiliaryLength: 100,
		TotalLength:     356,
	}

	encoded := h.Encode()
	if len(encoded) != PayloadHeaderSize {
		t.Fatalf("Encode() produced %d bytes, want %d", len(encoded), PayloadHeaderSize)
	}

	decoded, err := ParsePayload(encoded)
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	if *decoded != h {
		t.Errorf("round trip = %+v, want %+v", decoded, h)
	}
	if decoded.ObjectLength() != 256 {
		t.Errorf("ObjectLength() = %d, want 256", decoded.ObjectLength())
	}
}

func TestPayloadHeaderCompression(t *testing.T) {
	plain := PayloadHeader{Flags: FlagHasObject}
	if plain.IsCompressed() {
		t.Error("IsCompressed() = true for uncompressed flags")
	}

	compressed := PayloadHeader{Flags: FlagHasObject | 0x3000}
	if !compressed.IsCompressed() {
		t.Error("IsCompressed() = false for compressed flags")
	}
}

func TestParsePayloadTooShort(t *testing.T) {
	_, err := ParsePayload(bytes.Repeat([]byte{0}, PayloadHeaderSize-1))
	if err != ErrPayloadTooShort {
		t.Fatalf("ParsePayload() error = %v, want %v", err, ErrPayloadTooShort)
	}
}
