package instr

import (
	"fmt"
)

// CapabilityKind identifies which of the three shapes the device used to
// announce its capabilities during the handshake.
type CapabilityKind int

const (
	// CapabilityDict is a plain dictionary delivered as a tagged
	// auxiliary item.
	CapabilityDict CapabilityKind = iota

	// CapabilityArchivedDict is a dictionary delivered as an archive blob
	// embedded directly in the auxiliary section.
	CapabilityArchivedDict

	// CapabilityList is a flat list of capability name strings.
	CapabilityList
)

func (k CapabilityKind) String() string {
	switch k {
	case CapabilityDict:
		return "dict"
	case CapabilityArchivedDict:
		return "archived-dict"
	case CapabilityList:
		return "list"
	default:
		return "unknown"
	}
}

// Capabilities is the classified capability announcement from the device.
type Capabilities struct {
	Kind CapabilityKind

	// Entries holds capability name to version mappings for the
	// dictionary shapes. Nil for the list shape.
	Entries map[string]interface{}

	// Names holds capability names for the flat list shape, and the key
	// set of Entries otherwise.
	Names []string
}

// Has reports whether a capability name was announced.
func (c *Capabilities) Has(name string) bool {
	if c.Entries != nil {
		_, ok := c.Entries[name]
		return ok
	}
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// classifyCapabilities turns a decoded capability value into the explicit
// tagged variant. The embedded-archive flag distinguishes the two
// dictionary shapes, which are identical after decoding.
func classifyCapabilities(v interface{}, fromArchive bool) (*Capabilities, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		kind := CapabilityDict
		if fromArchive {
			kind = CapabilityArchivedDict
		}
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		return &Capabilities{Kind: kind, Entries: val, Names: names}, nil

	case []interface{}:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &HandshakeError{Reason: fmt.Sprintf("capability list holds non-string entry %T", item)}
			}
			names = append(names, s)
		}
		return &Capabilities{Kind: CapabilityList, Names: names}, nil

	default:
		return nil, &HandshakeError{Reason: fmt.Sprintf("unrecognized capability shape %T", v)}
	}
}
