package instr

import (
	"fmt"
)

// HandshakeError indicates the capabilities exchange failed. It is fatal
// and aborts Connect.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("instrumentation handshake failed: %s", e.Reason)
}

// ProtocolError indicates a message violated the wire contract (unsupported
// compression, unknown auxiliary type). It is fatal for the message being
// processed.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("instrumentation protocol error: %s", e.Reason)
}

// StateError indicates an operation was attempted in the wrong connection
// state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: connection is %s", e.Op, e.State)
}
