// Command validate checks game preset JSON files. It reports:
//   - JSON structure and unknown fields
//   - Required name
//   - Grid size within the playable range
//   - Duration within one second and one hour
//   - Whether a grid of the configured size can be generated
//
// With no arguments it scans the configs directory; otherwise it validates
// the files given on the command line.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages contains informational lines; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// validatePreset loads and validates a single preset file
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(filePath),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset config.Preset
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&preset); err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := config.ValidatePreset(&preset); err != nil {
		result.Valid = false
		detail := strings.TrimPrefix(err.Error(), engine.ErrInvalidConfiguration.Error()+": ")
		result.Messages = append(result.Messages, strings.Split(detail, "; ")...)
		return result
	}

	grid, err := engine.CreateGrid(preset.GridSize)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Cannot generate grid: %v", err))
		return result
	}

	result.Messages = append(result.Messages,
		fmt.Sprintf("✓ %s: %dx%d grid, %ds", preset.Name, grid.Size(), grid.Size(), preset.DurationSeconds),
		fmt.Sprintf("✓ longest possible word: %d letters", preset.GridSize*preset.GridSize),
	)
	return result
}

// report prints each result and returns whether all of them were valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, msg := range result.Messages {
				fmt.Fprintln(w, "  ❌ "+msg)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate game preset JSON files",
		ArgsUsage: "[file.json ...]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("finding preset files: %w", err)
				}
			}
			if len(files) == 0 {
				return errors.New("no preset files found")
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validatePreset(file))
			}

			if !report(out, results) {
				return errors.New("some presets have errors")
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
