package instr

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/skipfire/tether/internal/protocol/archive"
)

// Auxiliary section wire format: a 16-byte preamble (capacity, then the
// byte length of the items that follow, both 64-bit little-endian) followed
// by tagged items. Each item is a 32-bit flags word, a 32-bit type tag, and
// a type-dependent value.
const (
	auxPreambleSize = 16

	// auxCapacity is the fixed capacity value written in the preamble.
	auxCapacity = 0x1F0

	// auxItemFlags is the fixed flags word prefixing every item.
	auxItemFlags = 0xA

	auxTypeArchive = 2
	auxTypeInt32   = 3
	auxTypeInt64   = 4
	auxTypeUint64  = 6
)

// AuxKind discriminates the auxiliary value union.
type AuxKind int

const (
	AuxInt32 AuxKind = iota
	AuxInt64
	AuxArchive
)

// AuxValue is one auxiliary argument attached to a remote call: a 32-bit
// integer, a 64-bit integer, or an archived object.
type AuxValue struct {
	Kind   AuxKind
	Int32  int32
	Int64  int64
	Object interface{}
}

// Int32Arg builds an Int32 auxiliary value.
func Int32Arg(v int32) AuxValue {
	return AuxValue{Kind: AuxInt32, Int32: v}
}

// Int64Arg builds an Int64 auxiliary value.
func Int64Arg(v int64) AuxValue {
	return AuxValue{Kind: AuxInt64, Int64: v}
}

// ObjectArg builds an archived-object auxiliary value. The object is
// archived when the auxiliary section is encoded.
func ObjectArg(v interface{}) AuxValue {
	return AuxValue{Kind: AuxArchive, Object: v}
}

// EncodeAux serializes an ordered auxiliary argument list to wire format.
// An empty list encodes to no bytes at all.
func EncodeAux(values []AuxValue) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var items bytes.Buffer
	for i, v := range values {
		var item [8]byte
		binary.LittleEndian.PutUint32(item[0:4], auxItemFlags)

		switch v.Kind {
		case AuxInt32:
			binary.LittleEndian.PutUint32(item[4:8], auxTypeInt32)
			items.Write(item[:])
			var val [4]byte
			binary.LittleEndian.PutUint32(val[:], uint32(v.Int32))
			items.Write(val[:])

		case AuxInt64:
			binary.LittleEndian.PutUint32(item[4:8], auxTypeInt64)
			items.Write(item[:])
			var val [8]byte
			binary.LittleEndian.PutUint64(val[:], uint64(v.Int64))
			items.Write(val[:])

		case AuxArchive:
			archived, err := archive.EncodeBytes(v.Object)
			if err != nil {
				return nil, fmt.Errorf("archive auxiliary argument %d: %w", i, err)
			}
			binary.LittleEndian.PutUint32(item[4:8], auxTypeArchive)
			items.Write(item[:])
			var size [4]byte
			binary.LittleEndian.PutUint32(size[:], uint32(len(archived)))
			items.Write(size[:])
			items.Write(archived)

		default:
			return nil, &ProtocolError{Reason: fmt.Sprintf("unknown auxiliary kind %d", v.Kind)}
		}
	}

	out := make([]byte, auxPreambleSize+items.Len())
	binary.LittleEndian.PutUint64(out[0:8], auxCapacity)
	binary.LittleEndian.PutUint64(out[8:16], uint64(items.Len()))
	copy(out[auxPreambleSize:], items.Bytes())
	return out, nil
}

// DecodeAux parses an auxiliary section in the tagged-item format.
// Archived items are decoded to plain values.
func DecodeAux(data []byte) ([]AuxValue, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < auxPreambleSize {
		return nil, &ProtocolError{Reason: "auxiliary section shorter than preamble"}
	}

	size := binary.LittleEndian.Uint64(data[8:16])
	items := data[auxPreambleSize:]
	if size < uint64(len(items)) {
		items = items[:size]
	}

	var out []AuxValue
	for len(items) > 0 {
		if len(items) < 8 {
			return nil, &ProtocolError{Reason: "truncated auxiliary item header"}
		}
		typ := binary.LittleEndian.Uint32(items[4:8])
		items = items[8:]

		switch typ {
		case auxTypeInt32:
			if len(items) < 4 {
				return nil, &ProtocolError{Reason: "truncated int32 auxiliary value"}
			}
			out = append(out, Int32Arg(int32(binary.LittleEndian.Uint32(items[0:4]))))
			items = items[4:]

		case auxTypeInt64, auxTypeUint64:
			if len(items) < 8 {
				return nil, &ProtocolError{Reason: "truncated int64 auxiliary value"}
			}
			out = append(out, Int64Arg(int64(binary.LittleEndian.Uint64(items[0:8]))))
			items = items[8:]

		case auxTypeArchive:
			if len(items) < 4 {
				return nil, &ProtocolError{Reason: "truncated archived auxiliary length"}
			}
			size := binary.LittleEndian.Uint32(items[0:4])
			items = items[4:]
			if uint32(len(items)) < size {
				return nil, &ProtocolError{Reason: "truncated archived auxiliary value"}
			}
			decoded, err := archive.DecodeBytes(items[:size])
			if err != nil {
				return nil, fmt.Errorf("decode archived auxiliary value: %w", err)
			}
			out = append(out, AuxValue{Kind: AuxArchive, Object: decoded})
			items = items[size:]

		default:
			return nil, &ProtocolError{Reason: fmt.Sprintf("unknown auxiliary type %d", typ)}
		}
	}

	return out, nil
}

// isTaggedAux reports whether data plausibly starts with the tagged-item
// preamble. Handshake replies instead embed a whole archive blob in the
// auxiliary section; those fail this check and are decoded as archives.
func isTaggedAux(data []byte) bool {
	if len(data) < auxPreambleSize {
		return false
	}
	return binary.LittleEndian.Uint64(data[0:8]) == auxCapacity
}
