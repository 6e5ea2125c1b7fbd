package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuxRoundTrip(t *testing.T) {
	values := []AuxValue{
		Int32Arg(7),
		Int64Arg(-42),
		ObjectArg("com.example.service"),
	}

	encoded, err := EncodeAux(values)
	require.NoError(t, err)
	require.True(t, isTaggedAux(encoded))

	decoded, err := DecodeAux(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	assert.Equal(t, AuxInt32, decoded[0].Kind)
	assert.Equal(t, int32(7), decoded[0].Int32)

	assert.Equal(t, AuxInt64, decoded[1].Kind)
	assert.Equal(t, int64(-42), decoded[1].Int64)

	assert.Equal(t, AuxArchive, decoded[2].Kind)
	assert.Equal(t, "com.example.service", decoded[2].Object)
}

func TestAuxEmpty(t *testing.T) {
	encoded, err := EncodeAux(nil)
	require.NoError(t, err)
	assert.Nil(t, encoded)

	decoded, err := DecodeAux(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeAuxUnknownType(t *testing.T) {
	encoded, err := EncodeAux([]AuxValue{Int32Arg(1)})
	require.NoError(t, err)

	// Corrupt the type tag of the first item.
	encoded[auxPreambleSize+4] = 0x7F

	_, err = DecodeAux(encoded)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestDecodeAuxTruncated(t *testing.T) {
	encoded, err := EncodeAux([]AuxValue{Int64Arg(5)})
	require.NoError(t, err)

	_, err = DecodeAux(encoded[:len(encoded)-2])
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestIsTaggedAuxRejectsArchiveBlob(t *testing.T) {
	// A binary plist starts with "bplist00", which cannot match the
	// tagged preamble capacity.
	blob := []byte("bplist00xxxxxxxxxxxxxxxx")
	assert.False(t, isTaggedAux(blob))
}
