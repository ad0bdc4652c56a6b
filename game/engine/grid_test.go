package engine

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upperLetter = regexp.MustCompile(`^[A-Z]$`)

func TestCreateGrid(t *testing.T) {
	for _, size := range []int{2, 3, 4, 6} {
		grid, err := CreateGrid(size)
		require.NoError(t, err)
		require.Len(t, grid.Letters, size)
		require.Equal(t, size, grid.Size())

		for _, row := range grid.Letters {
			require.Len(t, row, size)
			for _, letter := range row {
				assert.Regexp(t, upperLetter, letter)
			}
		}
	}
}

func TestCreateGrid_InvalidSize(t *testing.T) {
	for _, size := range []int{1, 0, -3} {
		_, err := CreateGrid(size)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "size %d: %v", size, err)
	}
}

func TestMustCreateGrid_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCreateGrid(1) })
	assert.NotPanics(t, func() { MustCreateGrid(2) })
}

func TestCreateGrid_Differs(t *testing.T) {
	first := MustCreateGrid(4)

	// 16 independent weighted draws; a handful of attempts makes a false
	// failure practically impossible
	differs := false
	for i := 0; i < 5 && !differs; i++ {
		differs = MustCreateGrid(4).String() != first.String()
	}
	assert.True(t, differs, "consecutive grids should differ")
}

func TestWeightedLetter(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want string
	}{
		{name: "zero draw", draw: 0, want: "E"},
		{name: "end of first bucket", draw: 14.7, want: "E"},
		{name: "second bucket", draw: 15, want: "A"},
		{name: "last bucket", draw: totalWeight, want: "Z"},
		{name: "overshoot falls back", draw: totalWeight + 1, want: FallbackLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weightedLetter(tt.draw))
		})
	}
}

func TestLetterFrequencies_CoverAlphabet(t *testing.T) {
	seen := map[string]bool{}
	for _, lw := range LetterFrequencies {
		assert.Greater(t, lw.Weight, 0.0)
		seen[lw.Letter] = true
	}
	assert.Len(t, seen, 26)
}

func TestGridClone(t *testing.T) {
	grid := NewGrid("ab", "cd")
	clone := grid.Clone()
	clone.Letters[0][0] = "Z"

	assert.Equal(t, "A", grid.Letters[0][0])
	assert.Equal(t, "A B\nC D", grid.String())
	assert.True(t, Grid{}.IsZero())
	assert.True(t, Grid{}.Clone().IsZero())
}
