package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently so
// output stays queryable across both protocol engines.
const (
	// Connection & protocol
	KeyDevice   = "device"   // Device address the connection targets
	KeyService  = "service"  // Remote service identifier
	KeyProtocol = "protocol" // Protocol: instr, conduit
	KeyChannel  = "channel"  // Instrumentation channel code
	KeySelector = "selector" // Remote selector name
	KeyMsgID    = "msg_id"   // Instrumentation message identifier

	// File-conduit operations
	KeyOpcode    = "opcode"     // File-conduit operation code
	KeyPacketNum = "packet_num" // File-conduit packet sequence number
	KeyStatus    = "status"     // File-conduit status code
	KeyHandle    = "handle"     // File handle

	// Filesystem
	KeyPath       = "path"        // Full file/directory path
	KeyOldPath    = "old_path"    // Source path for rename/link operations
	KeyNewPath    = "new_path"    // Destination path for rename/link operations
	KeyLinkTarget = "link_target" // Symlink target
	KeySize       = "size"        // Size in bytes
	KeyEntries    = "entries"     // Number of directory entries

	// I/O
	KeyBytesRead    = "bytes_read"    // Actual bytes read
	KeyBytesWritten = "bytes_written" // Actual bytes written
	KeyFragments    = "fragments"     // Fragment count of a message

	// Metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
)

// Device returns a slog.Attr for the device address.
func Device(addr string) slog.Attr {
	return slog.String(KeyDevice, addr)
}

// Service returns a slog.Attr for a remote service identifier.
func Service(id string) slog.Attr {
	return slog.String(KeyService, id)
}

// Channel returns a slog.Attr for an instrumentation channel code.
func Channel(code int32) slog.Attr {
	return slog.Int(KeyChannel, int(code))
}

// Selector returns a slog.Attr for a remote selector name.
func Selector(name string) slog.Attr {
	return slog.String(KeySelector, name)
}

// Opcode returns a slog.Attr for a file-conduit operation code.
func Opcode(op uint64) slog.Attr {
	return slog.Uint64(KeyOpcode, op)
}

// Status returns a slog.Attr for a file-conduit status code.
func Status(code uint64) slog.Attr {
	return slog.Uint64(KeyStatus, code)
}

// Handle returns a slog.Attr for a file handle.
func Handle(h uint64) slog.Attr {
	return slog.Uint64(KeyHandle, h)
}

// Path returns a slog.Attr for a file or directory path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Size returns a slog.Attr for a byte size.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
