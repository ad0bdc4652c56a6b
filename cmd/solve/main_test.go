package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/wordgrid/game/dictionary"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

func TestSolve(t *testing.T) {
	grid := engine.NewGrid("CAT", "XOS", "DGX")
	words := dictionary.New("cat", "cats", "dog", "dogs", "go", "tac", "coat", "zebra")

	found := solve(words, grid)

	assert.Equal(t, []Found{
		{Word: "cats", Points: 4},
		{Word: "coat", Points: 4},
		{Word: "dogs", Points: 4},
		{Word: "cat", Points: 3},
		{Word: "dog", Points: 3},
		{Word: "tac", Points: 3},
	}, found)
}

func TestSolve_EmptyDictionary(t *testing.T) {
	assert.Empty(t, solve(dictionary.Empty(), engine.MustCreateGrid(4)))
}

func TestParseGrid(t *testing.T) {
	grid, err := parseGrid("abc, def, ghi")
	require.NoError(t, err)
	assert.Equal(t, "A B C\nD E F\nG H I", grid.String())

	tests := []struct {
		name string
		spec string
	}{
		{"single row", "a"},
		{"ragged", "abc,de,fgh"},
		{"too large", strings.Repeat("abcdefghijk,", 10) + "abcdefghijk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGrid(tt.spec)
			assert.True(t, errors.Is(err, engine.ErrInvalidConfiguration), err)
		})
	}
}

func TestPrintResults(t *testing.T) {
	var out bytes.Buffer
	found := []Found{{"cats", 4}, {"cat", 3}, {"tac", 3}}

	printResults(&out, engine.NewGrid("CA", "TS"), found, 2)

	assert.Equal(t, "C A\nT S\n\n3 words, 10 points available\n  4  cats\n  3  cat\n", out.String())
}

func TestCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\n\ndog\nzebra\n"), 0644))

	var out bytes.Buffer
	err := newCommand(&out, io.Discard).Run(context.Background(), []string{
		"solve", "--dictionary", path, "--grid", "cat,xox,dgx",
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "2 words, 6 points available")
	assert.Contains(t, out.String(), "  3  cat\n")
	assert.Contains(t, out.String(), "  3  dog\n")
	assert.NotContains(t, out.String(), "zebra")
}

func TestCommand_RandomGrid(t *testing.T) {
	var out bytes.Buffer
	err := newCommand(&out, io.Discard).Run(context.Background(), []string{
		"solve", "--dictionary", "/non/existent/words.txt", "--size", "5",
	})
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	for _, row := range lines[:5] {
		assert.Len(t, strings.Fields(row), 5)
	}
	assert.Contains(t, out.String(), "0 words, 0 points available")
}

func TestCommand_InvalidSize(t *testing.T) {
	err := newCommand(io.Discard, io.Discard).Run(context.Background(), []string{"solve", "--size", "1"})
	assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
}
