package archive

import (
	"fmt"

	"github.com/skipfire/tether/internal/logger"
	"howett.net/plist"
)

// Decode resolves the container's reference graph starting at the declared
// root reference and returns the root as a plain value.
//
// Resolution rules, in priority order:
//  1. Numeric or plain values pass through unchanged.
//  2. Reference wrappers resolve to the referenced table entry.
//  3. A table entry exposing parallel NS.keys/NS.objects reference arrays
//     decodes as a key/value mapping (checked before the array form).
//  4. A table entry exposing only an NS.objects array decodes as an ordered
//     sequence.
//  5. Any other object decodes field-by-field; the reserved $class
//     descriptor is dropped, and numeric or reference-wrapper fields that
//     point to non-null table entries are resolved recursively.
//
// Per-index decoding is memoized. A reference revisited while its own
// decode is still open resolves to nil instead of looping, so cyclic tables
// terminate. Graphs deeper than the fixed ceiling resolve to nil.
//
// If the root reference is absent the decoder falls back to table index 1
// and logs a warning rather than failing.
func (c *Container) Decode() interface{} {
	root, ok := c.rootIndex()
	if !ok {
		logger.Warn("archive missing root reference, falling back to object table index 1",
			"archiver", c.Archiver)
		root = 1
	}

	d := &decoder{
		objects: c.Objects,
		memo:    make(map[uint64]interface{}),
		open:    make(map[uint64]bool),
	}
	return d.resolve(root, 0)
}

// DecodeBytes parses archive bytes and decodes the root value in one step.
func DecodeBytes(data []byte) (interface{}, error) {
	c, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	return c.Decode(), nil
}

// rootIndex extracts the root table index from the $top dictionary. The
// declared reference is either a reference wrapper or a direct index.
func (c *Container) rootIndex() (uint64, bool) {
	if c.Top == nil {
		return 0, false
	}
	ref, ok := c.Top["root"]
	if !ok {
		return 0, false
	}
	return refIndex(ref)
}

// refIndex interprets a value as a table reference. Reference wrappers and
// plain unsigned/signed integers qualify.
func refIndex(v interface{}) (uint64, bool) {
	switch ref := v.(type) {
	case plist.UID:
		return uint64(ref), true
	case uint64:
		return ref, true
	case int64:
		if ref < 0 {
			return 0, false
		}
		return uint64(ref), true
	default:
		return 0, false
	}
}

type decoder struct {
	objects []interface{}
	memo    map[uint64]interface{}
	open    map[uint64]bool
}

// resolve decodes the table entry at idx. Index 0, out-of-range indices,
// open (cyclic) references, and over-deep graphs all resolve to nil.
func (d *decoder) resolve(idx uint64, depth int) interface{} {
	if depth > maxDepth {
		logger.Warn("archive graph exceeds depth ceiling, truncating", "index", idx)
		return nil
	}
	if idx == 0 || idx >= uint64(len(d.objects)) {
		return nil
	}
	if v, ok := d.memo[idx]; ok {
		return v
	}
	if d.open[idx] {
		// Reference revisited while still being decoded: cycle.
		return nil
	}

	d.open[idx] = true
	v := d.decodeValue(d.objects[idx], depth+1)
	delete(d.open, idx)
	d.memo[idx] = v
	return v
}

func (d *decoder) decodeValue(obj interface{}, depth int) interface{} {
	switch v := obj.(type) {
	case plist.UID:
		return d.resolve(uint64(v), depth)

	case map[string]interface{}:
		keys, hasKeys := v["NS.keys"].([]interface{})
		values, hasValues := v["NS.objects"].([]interface{})

		if hasKeys && hasValues {
			return d.decodeMapping(keys, values, depth)
		}
		if hasValues {
			return d.decodeSequence(values, depth)
		}
		return d.decodeObject(v, depth)

	case []interface{}:
		return d.decodeSequence(v, depth)

	case string:
		if v == NullMarker {
			return nil
		}
		return v

	default:
		// Primitive: number, bool, byte buffer, timestamp.
		return v
	}
}

// decodeMapping decodes parallel key/value reference arrays into a map.
// Keys are rendered as strings in array order; non-string keys are
// stringified so partially understood tables still deliver their values.
func (d *decoder) decodeMapping(keys, values []interface{}, depth int) map[string]interface{} {
	n := len(keys)
	if len(values) < n {
		n = len(values)
	}

	out := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		key := d.decodeElement(keys[i], depth)
		ks, ok := key.(string)
		if !ok {
			ks = stringifyKey(key)
		}
		out[ks] = d.decodeElement(values[i], depth)
	}
	return out
}

// decodeSequence decodes a value reference array into an ordered slice.
func (d *decoder) decodeSequence(values []interface{}, depth int) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, d.decodeElement(v, depth))
	}
	return out
}

// decodeElement decodes a single array element: reference wrappers resolve,
// everything else decodes in place.
func (d *decoder) decodeElement(v interface{}, depth int) interface{} {
	if ref, ok := v.(plist.UID); ok {
		return d.resolve(uint64(ref), depth)
	}
	return d.decodeValue(v, depth)
}

// decodeObject decodes an arbitrary archived object field by field. The
// reserved $class descriptor is dropped. Fields holding a reference wrapper
// or a numeric index pointing at a non-null table entry resolve recursively;
// all other fields pass through.
func (d *decoder) decodeObject(obj map[string]interface{}, depth int) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for key, field := range obj {
		if key == "$class" {
			continue
		}

		if ref, ok := field.(plist.UID); ok {
			out[key] = d.resolve(uint64(ref), depth)
			continue
		}

		if idx, ok := numericIndex(field); ok && d.pointsToEntry(idx) {
			out[key] = d.resolve(idx, depth)
			continue
		}

		out[key] = d.decodeValue(field, depth)
	}
	return out
}

// pointsToEntry reports whether idx addresses a non-null object table entry.
func (d *decoder) pointsToEntry(idx uint64) bool {
	if idx == 0 || idx >= uint64(len(d.objects)) {
		return false
	}
	if s, ok := d.objects[idx].(string); ok && s == NullMarker {
		return false
	}
	return true
}

// numericIndex interprets plain integers as candidate table indices.
func numericIndex(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func stringifyKey(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
