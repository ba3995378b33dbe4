package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" wh ")
	require.NoError(t, err)
	assert.Equal(t, WhiteHouse, k)

	k, err = ParseKey("GH")
	require.NoError(t, err)
	assert.Equal(t, GlassHouse, k)

	_, err = ParseKey("XX")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "The White House", WhiteHouse.DisplayName())
	assert.Equal(t, "The Glass House", GlassHouse.DisplayName())
	assert.Equal(t, "Glass House", GlassHouse.ShortName())
	assert.Equal(t, []Key{WhiteHouse, GlassHouse}, All())
}
