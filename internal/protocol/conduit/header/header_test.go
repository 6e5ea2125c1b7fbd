package header

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    *Header
		wantErr error
	}{
		{
			name:    "TooShort",
			data:    make([]byte, HeaderSize-1),
			wantErr: ErrPacketTooShort,
		},
		{
			name: "InvalidMagic",
			data: func() []byte {
				h := New(3, 1, 0)
				d := h.Encode()
				d[0] = 'X'
				return d
			}(),
			wantErr: ErrInvalidMagic,
		},
		{
			name: "EntireLengthBelowHeader",
			data: func() []byte {
				h := &Header{EntireLength: 8, ThisLength: 8}
				return h.Encode()
			}(),
			wantErr: ErrInvalidLength,
		},
		{
			name: "ThisLengthExceedsEntire",
			data: func() []byte {
				h := &Header{EntireLength: 48, ThisLength: 64}
				return h.Encode()
			}(),
			wantErr: ErrInvalidLength,
		},
		{
			name: "Valid",
			data: New(10, 4, 12).Encode(),
			want: &Header{
				EntireLength: 52,
				ThisLength:   52,
				PacketNum:    4,
				Operation:    10,
			},
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

func TestRoundTrip(t *testing.T) {
	h := Header{
		EntireLength: 1024,
		ThisLength:   WriteThisLength,
		PacketNum:    99,
		Operation:    16,
	}

	decoded, err := Parse(h.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if *decoded != h {
		t.Errorf("round trip = %+v, want %+v", decoded, h)
	}
	if decoded.PayloadLength() != 1024-HeaderSize {
		t.Errorf("PayloadLength() = %d, want %d", decoded.PayloadLength(), 1024-HeaderSize)
	}
}
