package archive

import (
	"fmt"
	"strings"
)

// RemoteError is a device-reported failure recovered from a decoded archive.
type RemoteError struct {
	// Description is the device-supplied failure text.
	Description string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s", e.Description)
}

// Reserved property names the archive error convention attaches to failure
// objects.
var errorPropertyKeys = []string{
	"NSLocalizedDescription",
	"NSLocalizedFailureReason",
	"DTErrorKey",
}

// Substrings that identify descriptive failure strings embedded directly in
// an object table without the error property convention.
var errorStringMarkers = []string{
	"unrecognized selector",
	"Unable to invoke",
	"Error Domain=",
}

// ClassifyError inspects a decoded archive value, plus its source container,
// and reports whether the device encoded a failure. It is kept apart from
// the decoder so decoding stays a pure value transform.
//
// Two conventions are recognized: a mapping carrying one of the reserved
// error property names anywhere in the decoded graph, and a long descriptive
// failure string sitting in the object table.
func ClassifyError(decoded interface{}, c *Container) *RemoteError {
	if desc, ok := findErrorProperty(decoded, 0); ok {
		return &RemoteError{Description: desc}
	}

	if c != nil {
		for _, obj := range c.Objects {
			s, ok := obj.(string)
			if !ok {
				continue
			}
			for _, marker := range errorStringMarkers {
				if strings.Contains(s, marker) {
					return &RemoteError{Description: s}
				}
			}
		}
	}

	return nil
}

// findErrorProperty walks the decoded graph looking for reserved error keys.
// Decoded values are trees (cycles were cut during decoding) so a depth
// bound is enough to keep the walk finite.
func findErrorProperty(v interface{}, depth int) (string, bool) {
	if depth > maxDepth {
		return "", false
	}

	switch val := v.(type) {
	case map[string]interface{}:
		for _, key := range errorPropertyKeys {
			if desc, ok := val[key]; ok {
				if s, ok := desc.(string); ok && s != "" {
					return s, true
				}
			}
		}
		for _, child := range val {
			if s, ok := findErrorProperty(child, depth+1); ok {
				return s, true
			}
		}
	case []interface{}:
		for _, child := range val {
			if s, ok := findErrorProperty(child, depth+1); ok {
				return s, true
			}
		}
	}

	return "", false
}
