package games

import (
	"testing"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	g, err := Lookup("Skyrim Special Edition")
	require.NoError(t, err)
	assert.Equal(t, "skyrimse", g.MasterlistRepo)
	assert.True(t, g.SupportsLight)

	// Case-insensitive
	g2, err := Lookup("skyrim special edition")
	require.NoError(t, err)
	assert.Equal(t, g, g2)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("Daggerfall")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGameUnknown))
}

func TestLightFormIDRanges(t *testing.T) {
	tests := []struct {
		game string
		min  uint32
		max  uint32
	}{
		{"Skyrim Special Edition", 0x800, 0xFFF},
		{"Fallout 4", 0x001, 0xFFF},
		{"Starfield", 0x000, 0xFFF},
	}
	for _, tt := range tests {
		g, err := Lookup(tt.game)
		require.NoError(t, err, tt.game)
		lo, hi := g.LightFormIDRange()
		assert.Equal(t, tt.min, lo, tt.game)
		assert.Equal(t, tt.max, hi, tt.game)
	}
}

func TestGamesWithoutLightPluginsHaveNoRange(t *testing.T) {
	for _, name := range []string{"Morrowind", "Oblivion", "Skyrim", "Fallout 3"} {
		g, err := Lookup(name)
		require.NoError(t, err)
		assert.False(t, g.SupportsLight, name)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "Fallout New Vegas")
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
