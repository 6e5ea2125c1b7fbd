package archive

import (
	"howett.net/plist"
)

// Encode wraps a single outgoing value in a minimal archive container.
//
// The encoder deliberately supports only what the engine transmits: a
// selector string or a primitive. A nil value produces a zero-object
// archive whose root reference points at the null marker.
func Encode(value interface{}) *Container {
	objects := []interface{}{NullMarker}
	root := plist.UID(0)

	if value != nil {
		objects = append(objects, value)
		root = plist.UID(1)
	}

	return &Container{
		Version:  Version,
		Archiver: ArchiverName,
		Top:      map[string]interface{}{"root": root},
		Objects:  objects,
	}
}

// EncodeBytes wraps a value and serializes it to binary plist bytes.
func EncodeBytes(value interface{}) ([]byte, error) {
	return Encode(value).ToBytes()
}
