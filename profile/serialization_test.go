package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionsRoundTrip(t *testing.T) {
	original := []string{"collection_1a2b3c4d", "collection_deadbeef"}

	data := MarshalCollections(original)
	decoded, err := UnmarshalCollections(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalCollections_Corrupt(t *testing.T) {
	_, err := UnmarshalCollections([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
