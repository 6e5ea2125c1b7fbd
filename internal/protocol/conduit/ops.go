package conduit

import (
	"encoding/binary"
)

// Opcode is a file-conduit operation selector.
type Opcode uint64

const (
	OpStatus      Opcode = 0x01
	OpData        Opcode = 0x02
	OpReadDir     Opcode = 0x03
	OpRemovePath  Opcode = 0x08
	OpMakeDir     Opcode = 0x09
	OpGetFileInfo Opcode = 0x0A
	OpGetDevInfo  Opcode = 0x0B
	OpFileOpen    Opcode = 0x0D
	OpFileRead    Opcode = 0x0F
	OpFileWrite   Opcode = 0x10
	OpFileSeek    Opcode = 0x11
	OpFileTell    Opcode = 0x12
	OpFileClose   Opcode = 0x14
	OpRenamePath  Opcode = 0x18
	OpMakeLink    Opcode = 0x1C
)

func (op Opcode) String() string {
	switch op {
	case OpStatus:
		return "STATUS"
	case OpData:
		return "DATA"
	case OpReadDir:
		return "READ_DIR"
	case OpRemovePath:
		return "REMOVE_PATH"
	case OpMakeDir:
		return "MAKE_DIR"
	case OpGetFileInfo:
		return "GET_FILE_INFO"
	case OpGetDevInfo:
		return "GET_DEV_INFO"
	case OpFileOpen:
		return "FILE_OPEN"
	case OpFileRead:
		return "FILE_READ"
	case OpFileWrite:
		return "FILE_WRITE"
	case OpFileSeek:
		return "FILE_SEEK"
	case OpFileTell:
		return "FILE_TELL"
	case OpFileClose:
		return "FILE_CLOSE"
	case OpRenamePath:
		return "RENAME_PATH"
	case OpMakeLink:
		return "MAKE_LINK"
	default:
		return "UNKNOWN"
	}
}

// FileMode selects how a file handle is opened.
type FileMode uint64

const (
	ModeReadOnly          FileMode = 0x01 // r
	ModeReadWrite         FileMode = 0x02 // r+
	ModeWriteTruncate     FileMode = 0x03 // w
	ModeReadWriteTruncate FileMode = 0x04 // w+
	ModeAppend            FileMode = 0x05 // a
	ModeReadAppend        FileMode = 0x06 // a+
)

// LinkKind selects the link type created by MakeLink.
type LinkKind uint64

const (
	LinkHard LinkKind = 1
	LinkSym  LinkKind = 2
)

// Payload builders. Paths travel as null-terminated strings; handles,
// modes and sizes as 64-bit little-endian values.

func pathPayload(path string) []byte {
	out := make([]byte, 0, len(path)+1)
	out = append(out, path...)
	return append(out, 0)
}

func openPayload(mode FileMode, path string) []byte {
	out := make([]byte, 8, 8+len(path)+1)
	binary.LittleEndian.PutUint64(out, uint64(mode))
	out = append(out, path...)
	return append(out, 0)
}

func readPayload(handle uint64, size uint64) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:8], handle)
	binary.LittleEndian.PutUint64(out[8:16], size)
	return out
}

// writePayload carries the handle ahead of the data bytes; the packet
// header's ThisLength override covers the handle, not the data.
func writePayload(handle uint64, data []byte) []byte {
	out := make([]byte, 8, 8+len(data))
	binary.LittleEndian.PutUint64(out, handle)
	return append(out, data...)
}

func handlePayload(handle uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, handle)
	return out
}

func seekPayload(handle uint64, whence uint64, offset int64) []byte {
	out := make([]byte, 24)
	binary.LittleEndian.PutUint64(out[0:8], handle)
	binary.LittleEndian.PutUint64(out[8:16], whence)
	binary.LittleEndian.PutUint64(out[16:24], uint64(offset))
	return out
}

func renamePayload(source, target string) []byte {
	out := make([]byte, 0, len(source)+len(target)+2)
	out = append(out, source...)
	out = append(out, 0)
	out = append(out, target...)
	return append(out, 0)
}

func linkPayload(kind LinkKind, target, linkName string) []byte {
	out := make([]byte, 8, 8+len(target)+len(linkName)+2)
	binary.LittleEndian.PutUint64(out, uint64(kind))
	out = append(out, target...)
	out = append(out, 0)
	out = append(out, linkName...)
	return append(out, 0)
}
