package conduit

import (
	"errors"
	"fmt"
)

// Status is the device-reported result code carried by STATUS responses.
type Status uint64

const (
	StatusSuccess             Status = 0
	StatusUnknownError        Status = 1
	StatusHeaderInvalid       Status = 2
	StatusNoResources         Status = 3
	StatusReadError           Status = 4
	StatusWriteError          Status = 5
	StatusUnknownPacketType   Status = 6
	StatusInvalidArgument     Status = 7
	StatusObjectNotFound      Status = 8
	StatusObjectIsDirectory   Status = 9
	StatusPermissionDenied    Status = 10
	StatusServiceNotConnected Status = 11
	StatusTimeout             Status = 12
	StatusTooMuchData         Status = 13
	StatusEndOfData           Status = 14
	StatusNotSupported        Status = 15
	StatusObjectExists        Status = 16
	StatusObjectBusy          Status = 17
	StatusNoSpaceLeft         Status = 18
	StatusWouldBlock          Status = 19
	StatusIOError             Status = 20
	StatusInterrupted         Status = 21
	StatusInProgress          Status = 22
	StatusInternalError       Status = 23
	StatusMuxError            Status = 30
	StatusNoMemory            Status = 31
	StatusNotEnoughData       Status = 32
	StatusDirectoryNotEmpty   Status = 33
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnknownError:
		return "unknown error"
	case StatusHeaderInvalid:
		return "operation header invalid"
	case StatusNoResources:
		return "no resources"
	case StatusReadError:
		return "read error"
	case StatusWriteError:
		return "write error"
	case StatusUnknownPacketType:
		return "unknown packet type"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusObjectNotFound:
		return "object not found"
	case StatusObjectIsDirectory:
		return "object is a directory"
	case StatusPermissionDenied:
		return "permission denied"
	case StatusServiceNotConnected:
		return "service not connected"
	case StatusTimeout:
		return "operation timed out"
	case StatusTooMuchData:
		return "too much data"
	case StatusEndOfData:
		return "end of data"
	case StatusNotSupported:
		return "operation not supported"
	case StatusObjectExists:
		return "object exists"
	case StatusObjectBusy:
		return "object busy"
	case StatusNoSpaceLeft:
		return "no space left"
	case StatusWouldBlock:
		return "operation would block"
	case StatusIOError:
		return "io error"
	case StatusInterrupted:
		return "operation interrupted"
	case StatusInProgress:
		return "operation in progress"
	case StatusInternalError:
		return "internal error"
	case StatusMuxError:
		return "mux error"
	case StatusNoMemory:
		return "no memory"
	case StatusNotEnoughData:
		return "not enough data"
	case StatusDirectoryNotEmpty:
		return "directory not empty"
	default:
		return fmt.Sprintf("status %d", uint64(s))
	}
}

// ErrObjectNotFound matches any ConduitError whose status is
// StatusObjectNotFound. Callers use errors.Is against it to implement
// force semantics on delete and existence probes.
var ErrObjectNotFound = errors.New("object not found")

// ConduitError is a non-success status returned by the device for one
// operation.
type ConduitError struct {
	Op     Opcode
	Status Status
	Path   string
}

func (e *ConduitError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *ConduitError) Is(target error) bool {
	return target == ErrObjectNotFound && e.Status == StatusObjectNotFound
}

// RemoveError reports the paths a recursive delete failed to remove.
type RemoveError struct {
	Paths []string
}

func (e *RemoveError) Error() string {
	return fmt.Sprintf("failed to remove %d path(s): %v", len(e.Paths), e.Paths)
}
