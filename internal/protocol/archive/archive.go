// Package archive decodes and encodes the keyed object-archive format used
// to exchange structured values over the instrumentation protocol.
//
// An archive is a property-list container with four entries: a version tag,
// an archiver name, a root reference, and a flat object table. Objects refer
// to each other by table index through reference wrappers (plist UIDs), with
// index 0 conventionally holding a null marker.
//
// Decoding resolves the reference graph into plain Go values: maps, slices,
// strings, numbers, byte buffers. The decoder is hardened against adversarial
// input: reference cycles resolve to nil instead of looping, and a fixed
// recursion-depth ceiling aborts pathological graphs.
//
// Encoding only supports the minimal shape the engine needs to transmit:
// a zero- or one-object archive wrapping a single scalar or selector string.
package archive

import (
	"fmt"

	"howett.net/plist"
)

// Version is the archive version tag written by the encoder and expected
// from the device.
const Version = 100000

// ArchiverName is the fixed archiver tag written by the encoder.
const ArchiverName = "NSKeyedArchiver"

// NullMarker occupies object table index 0 by convention.
const NullMarker = "$null"

// maxDepth is the recursion ceiling for graph resolution. Graphs deeper
// than this resolve to nil rather than risking stack exhaustion.
const maxDepth = 64

// Container is the parsed archive shape, before reference resolution.
type Container struct {
	// Version is the archive version tag.
	Version uint64

	// Archiver is the archiver name tag.
	Archiver string

	// Top holds the declared root reference, keyed by "root". The value
	// is either a reference wrapper or a direct table index.
	Top map[string]interface{}

	// Objects is the flat object table. Index 0 is the null marker.
	Objects []interface{}
}

// rawContainer mirrors the on-wire property-list keys.
type rawContainer struct {
	Version  uint64                 `plist:"$version"`
	Archiver string                 `plist:"$archiver"`
	Top      map[string]interface{} `plist:"$top"`
	Objects  []interface{}          `plist:"$objects"`
}

// FromBytes parses archive bytes (any property-list encoding) into a Container.
func FromBytes(data []byte) (*Container, error) {
	var raw rawContainer
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse archive plist: %w", err)
	}

	return &Container{
		Version:  raw.Version,
		Archiver: raw.Archiver,
		Top:      raw.Top,
		Objects:  raw.Objects,
	}, nil
}

// ToBytes serializes a Container to binary property-list bytes.
func (c *Container) ToBytes() ([]byte, error) {
	raw := map[string]interface{}{
		"$version":  c.Version,
		"$archiver": c.Archiver,
		"$top":      c.Top,
		"$objects":  c.Objects,
	}

	data, err := plist.Marshal(raw, plist.BinaryFormat)
	if err != nil {
		return nil, fmt.Errorf("marshal archive plist: %w", err)
	}
	return data, nil
}
