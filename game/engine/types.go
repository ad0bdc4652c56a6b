package engine

import "strings"

const (
	// Validation constants
	MinGridSize     = 2
	MaxGridSize     = 10
	DefaultGridSize = 4
	MinWordLength   = 3

	// FallbackLetter is returned when weighted selection undershoots the draw.
	FallbackLetter = "E"
)

// LetterWeight pairs a letter with its relative draw weight
type LetterWeight struct {
	Letter string
	Weight float64
}

// LetterFrequencies approximates French letter frequency (percent).
// The order is fixed and is the accumulation order used by the generator.
var LetterFrequencies = []LetterWeight{
	{"E", 14.7},
	{"A", 7.6},
	{"I", 7.5},
	{"S", 7.9},
	{"N", 7.1},
	{"R", 6.5},
	{"T", 7.2},
	{"O", 5.4},
	{"L", 5.5},
	{"U", 6.3},
	{"D", 3.7},
	{"C", 3.3},
	{"M", 2.9},
	{"P", 2.9},
	{"G", 1.0},
	{"B", 0.9},
	{"V", 1.6},
	{"H", 0.7},
	{"F", 1.1},
	{"Q", 1.4},
	{"Y", 0.3},
	{"X", 0.4},
	{"J", 0.3},
	{"K", 0.1},
	{"W", 0.1},
	{"Z", 0.1},
}

// Grid is an n×n matrix of uppercase letters
type Grid struct {
	Letters [][]string `json:"letters"`
}

// NewGrid builds a grid from rows of letters, e.g. "ABCD", "EFGH".
// Letters are upper-cased; rows are not checked for squareness.
func NewGrid(rows ...string) Grid {
	letters := make([][]string, len(rows))
	for i, row := range rows {
		for _, r := range strings.ToUpper(row) {
			letters[i] = append(letters[i], string(r))
		}
	}
	return Grid{Letters: letters}
}

// Size returns the grid dimension n
func (g Grid) Size() int {
	return len(g.Letters)
}

// IsZero reports whether the grid has not been generated
func (g Grid) IsZero() bool {
	return len(g.Letters) == 0
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	if g.Letters == nil {
		return Grid{}
	}
	letters := make([][]string, len(g.Letters))
	for i, row := range g.Letters {
		letters[i] = append([]string(nil), row...)
	}
	return Grid{Letters: letters}
}

// String renders the grid one row per line
func (g Grid) String() string {
	var b strings.Builder
	for i, row := range g.Letters {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, " "))
	}
	return b.String()
}
