// Command solve lists every dictionary word that can be traced through a
// letter grid, best scoring first. The grid is either given row by row or
// generated at random, the same way the server deals one at game start.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/wordgrid/game/dictionary"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
	"github.com/wricardo/mcp-training/wordgrid/internal/logger"
)

// Found is a word accepted by the validator and its score
type Found struct {
	Word   string
	Points int
}

// solve checks every dictionary word against grid
func solve(words *dictionary.Set, grid engine.Grid) []Found {
	validator := engine.NewValidator(words)

	var found []Found
	words.Words(func(word string) bool {
		if points, err := validator.Check(word, grid); err == nil {
			found = append(found, Found{Word: word, Points: points})
		}
		return true
	})

	sort.Slice(found, func(i, j int) bool {
		if found[i].Points != found[j].Points {
			return found[i].Points > found[j].Points
		}
		return found[i].Word < found[j].Word
	})
	return found
}

// parseGrid builds a grid from comma separated rows, e.g. "abc,def,ghi"
func parseGrid(spec string) (engine.Grid, error) {
	rows := strings.Split(strings.ReplaceAll(spec, " ", ""), ",")
	n := len(rows)
	if n < engine.MinGridSize || n > engine.MaxGridSize {
		return engine.Grid{}, fmt.Errorf("%w: %d rows", engine.ErrInvalidConfiguration, n)
	}
	for i, row := range rows {
		if utf8.RuneCountInString(row) != n {
			return engine.Grid{}, fmt.Errorf("%w: row %d has %d letters, want %d",
				engine.ErrInvalidConfiguration, i+1, utf8.RuneCountInString(row), n)
		}
	}
	return engine.NewGrid(rows...), nil
}

func printResults(w io.Writer, grid engine.Grid, found []Found, limit int) {
	fmt.Fprintf(w, "%s\n\n", grid)

	total := 0
	for _, f := range found {
		total += f.Points
	}
	fmt.Fprintf(w, "%d words, %d points available\n", len(found), total)

	if limit > 0 && limit < len(found) {
		found = found[:limit]
	}
	for _, f := range found {
		fmt.Fprintf(w, "%3d  %s\n", f.Points, f.Word)
	}
}

func newCommand(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "list the dictionary words hidden in a letter grid",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dictionary",
				Aliases: []string{"d"},
				Value:   "words.txt",
				Usage:   "word list, one word per line",
				Sources: cli.EnvVars("DICTIONARY_PATH"),
			},
			&cli.StringFlag{
				Name:  "grid",
				Usage: "comma separated rows, e.g. abcd,efgh,ijkl,mnop (random when empty)",
			},
			&cli.IntFlag{
				Name:  "size",
				Value: engine.DefaultGridSize,
				Usage: "size of the random grid",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "print at most this many words (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.New(errOut, cmd.Bool("debug"))

			var (
				grid engine.Grid
				err  error
			)
			if spec := cmd.String("grid"); spec != "" {
				grid, err = parseGrid(spec)
			} else {
				grid, err = engine.CreateGrid(cmd.Int("size"))
			}
			if err != nil {
				return err
			}

			words := dictionary.Load(cmd.String("dictionary"), log)
			printResults(out, grid, solve(words, grid), cmd.Int("limit"))
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
