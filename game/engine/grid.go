package engine

import (
	"fmt"
	"math/rand/v2"
)

var totalWeight = func() float64 {
	total := 0.0
	for _, lw := range LetterFrequencies {
		total += lw.Weight
	}
	return total
}()

// CreateGrid generates a size×size grid of weighted random letters
func CreateGrid(size int) (Grid, error) {
	if size < MinGridSize {
		return Grid{}, fmt.Errorf("%w: grid size must be at least %d, got %d", ErrInvalidConfiguration, MinGridSize, size)
	}

	letters := make([][]string, size)
	for i := range letters {
		letters[i] = make([]string, size)
		for j := range letters[i] {
			letters[i][j] = weightedLetter(rand.Float64() * totalWeight)
		}
	}

	return Grid{Letters: letters}, nil
}

// MustCreateGrid is like CreateGrid but panics on an invalid size
func MustCreateGrid(size int) Grid {
	grid, err := CreateGrid(size)
	if err != nil {
		panic(err)
	}
	return grid
}

// weightedLetter maps a draw in [0, totalWeight) to a letter
func weightedLetter(draw float64) string {
	sum := 0.0
	for _, lw := range LetterFrequencies {
		sum += lw.Weight
		if draw <= sum {
			return lw.Letter
		}
	}
	return FallbackLetter
}
