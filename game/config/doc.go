// Package config provides game preset management for the word grid game.
//
// The config package handles:
//   - Loading presets from JSON files
//   - Preset validation
//   - Default preset selection
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory. The file name
// without extension is the config id clients pass when creating a game:
//
//	{
//	  "name": "Classic",
//	  "description": "4x4 grid, one minute",
//	  "grid_size": 4,
//	  "duration_seconds": 60
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		return err
//	}
//
//	preset, err := manager.LoadPreset("quick")
//	presets, err := manager.ListPresets()
//
// Validation:
//
// Grid sizes must lie between engine.MinGridSize and engine.MaxGridSize and
// durations between one second and an hour. An invalid classic.json stops
// NewManager, so a misconfigured deployment fails at startup.
package config
