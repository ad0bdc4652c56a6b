package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

const (
	DefaultDurationSeconds = 60
	MaxDurationSeconds     = 3600
)

// Preset is a named set of game parameters a session is created from
type Preset struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	GridSize        int    `json:"grid_size"`
	DurationSeconds int    `json:"duration_seconds"`
}

// PresetInfo describes a preset file for listings
type PresetInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	GridSize        int    `json:"grid_size"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Duration returns the countdown length of the preset
func (p Preset) Duration() time.Duration {
	return time.Duration(p.DurationSeconds) * time.Second
}

// ValidatePreset checks that a preset can create a session
func ValidatePreset(p *Preset) error {
	var problems []string

	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.GridSize < engine.MinGridSize || p.GridSize > engine.MaxGridSize {
		problems = append(problems, fmt.Sprintf("grid_size must be between %d and %d, got %d",
			engine.MinGridSize, engine.MaxGridSize, p.GridSize))
	}
	if p.DurationSeconds <= 0 || p.DurationSeconds > MaxDurationSeconds {
		problems = append(problems, fmt.Sprintf("duration_seconds must be between 1 and %d, got %d",
			MaxDurationSeconds, p.DurationSeconds))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", engine.ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultPreset is used when no preset file is available
func DefaultPreset() Preset {
	return Preset{
		Name:            "default",
		Description:     "4x4 grid, one minute",
		GridSize:        engine.DefaultGridSize,
		DurationSeconds: DefaultDurationSeconds,
	}
}
