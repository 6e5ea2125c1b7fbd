package instr

import (
	"strings"

	"github.com/skipfire/tether/internal/protocol/archive"
)

// Message is one reassembled, decoded instrumentation message.
type Message struct {
	// Aux is the decoded auxiliary argument list, in order. Nil when the
	// auxiliary section was empty or held an embedded archive instead.
	Aux []AuxValue

	// AuxArchive holds the decoded embedded auxiliary archive used during
	// the handshake, when present.
	AuxArchive interface{}

	// ObjectBytes is the raw archived object section, nil when absent.
	ObjectBytes []byte

	// Object is the decoded object section. Populated by RecvPlist;
	// RecvMessage leaves only ObjectBytes.
	Object interface{}

	// container retains the parsed archive for error classification.
	container *archive.Container
}

// RemoteError inspects the decoded object for the archive error
// convention and returns the device-reported failure, or nil.
func (m *Message) RemoteError() *archive.RemoteError {
	return archive.ClassifyError(m.Object, m.container)
}

// Capabilities classifies the message's auxiliary data as a capability
// announcement.
func (m *Message) Capabilities() (*Capabilities, error) {
	if m.AuxArchive != nil {
		return classifyCapabilities(m.AuxArchive, true)
	}
	if len(m.Aux) > 0 {
		return classifyCapabilities(m.Aux[0].Object, false)
	}
	return nil, &HandshakeError{Reason: "reply carries no auxiliary capability data"}
}

// MethodSelector converts a word-separated call name to the remote
// selector form: each separator-delimited segment gains a trailing colon.
// A leading marker character is preserved, and a plain name with no
// separators and no arguments passes through unchanged.
//
//	MethodSelector("setFlags_mask", 2)  -> "setFlags:mask:"
//	MethodSelector("_restartService", 0) -> "_restartService"
//	MethodSelector("start", 1)           -> "start:"
func MethodSelector(name string, argc int) string {
	marker := ""
	if strings.HasPrefix(name, "_") {
		marker = "_"
		name = name[1:]
	}

	if !strings.Contains(name, "_") {
		if argc == 0 {
			return marker + name
		}
		return marker + name + ":"
	}

	var b strings.Builder
	b.WriteString(marker)
	for _, segment := range strings.Split(name, "_") {
		b.WriteString(segment)
		b.WriteByte(':')
	}
	return b.String()
}
