package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordSet map[string]bool

func (w wordSet) Contains(word string) bool {
	return w[strings.ToLower(word)]
}

func newTestValidator(words ...string) (*Validator, *int) {
	set := wordSet{}
	for _, w := range words {
		set[w] = true
	}
	calls := 0
	v := NewValidator(set)
	v.FindPath = func(word string, grid Grid) bool {
		calls++
		return FindsPath(word, grid)
	}
	return v, &calls
}

func TestValidator_Validate(t *testing.T) {
	grid := alphabetGrid()
	v, _ := newTestValidator("abc", "aei", "ab", "ack", "abcdefghijklmnopq", "afje")

	tests := []struct {
		name string
		word string
		code string
	}{
		{name: "accepted", word: "abc"},
		{name: "accepted upper case", word: "AEI"},
		{name: "accepted zigzag", word: "afje"},
		{name: "not in dictionary", word: "xyz", code: CodeNotInDictionary},
		{name: "too short", word: "ab", code: CodeTooShort},
		{name: "too long", word: "abcdefghijklmnopq", code: CodeTooLong},
		{name: "not in grid", word: "ack", code: CodeNotInGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.word, grid)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrWordRejected))

			var werr *WordError
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, tt.code, werr.Code)
			assert.Equal(t, tt.word, werr.Word)
		})
	}
}

func TestValidator_DictionaryGatesPathSearch(t *testing.T) {
	grid := alphabetGrid()
	v, calls := newTestValidator("abc")

	err := v.Validate("bcd", grid)
	require.Error(t, err)
	assert.Equal(t, 0, *calls, "dictionary miss must not reach the path search")

	err = v.Validate("AB", grid)
	require.Error(t, err)
	assert.Equal(t, 0, *calls)

	require.NoError(t, v.Validate("abc", grid))
	assert.Equal(t, 1, *calls)
}

func TestValidator_NilLexiconRejectsEverything(t *testing.T) {
	v := NewValidator(nil)
	err := v.Validate("abc", alphabetGrid())

	var werr *WordError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, CodeNotInDictionary, werr.Code)
}

func TestValidator_Check(t *testing.T) {
	v, _ := newTestValidator("afje")

	points, err := v.Check("afje", alphabetGrid())
	require.NoError(t, err)
	assert.Equal(t, 4, points)

	points, err = v.Check("zzz", alphabetGrid())
	require.Error(t, err)
	assert.Zero(t, points)
}
