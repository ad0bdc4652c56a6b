package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = engine.ErrInvalidConfiguration
)

// Manager handles game preset loading and caching
type Manager struct {
	configDir     string
	defaultPreset Preset
	presets       map[string]Preset
	mu            sync.RWMutex
	logger        zerolog.Logger
}

// NewManager creates a preset manager reading JSON files from configDir.
// An empty configDir yields a manager serving only the built-in default.
func NewManager(configDir string, logger zerolog.Logger) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		presets:   make(map[string]Preset),
		logger:    logger,
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by config id
func (m *Manager) LoadPreset(name string) (Preset, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if p, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	if m.configDir == "" && name == "default" {
		return m.Default(), nil
	}
	if m.configDir == "" || name == "" || strings.ContainsAny(name, `/\`) {
		return Preset{}, ErrConfigNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.presets[name]; exists {
		return p, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Preset{}, ErrConfigNotFound
		}
		return Preset{}, fmt.Errorf("failed to read preset file: %w", err)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}

	if err := ValidatePreset(&p); err != nil {
		return Preset{}, fmt.Errorf("%s: %w", name, err)
	}

	m.presets[name] = p
	return p, nil
}

// ListPresets returns the valid presets in the config directory, sorted
// by config id. Invalid files are skipped with a warning.
func (m *Manager) ListPresets() ([]PresetInfo, error) {
	if m.configDir == "" {
		d := m.Default()
		return []PresetInfo{{
			ConfigID:        "default",
			Name:            d.Name,
			Description:     d.Description,
			GridSize:        d.GridSize,
			DurationSeconds: d.DurationSeconds,
		}}, nil
	}

	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var presets []PresetInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		p, err := m.LoadPreset(name)
		if err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping preset")
			continue
		}

		presets = append(presets, PresetInfo{
			Filename:        entry.Name(),
			ConfigID:        name,
			Name:            p.Name,
			Description:     p.Description,
			GridSize:        p.GridSize,
			DurationSeconds: p.DurationSeconds,
		})
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].ConfigID < presets[j].ConfigID })
	return presets, nil
}

// Default returns the default preset
func (m *Manager) Default() Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by config id
func (m *Manager) SetDefault(name string) error {
	p, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = p
	return nil
}

// RefreshCache drops cached presets and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.presets = make(map[string]Preset)
	m.mu.Unlock()

	return m.loadDefaultPreset()
}

// SavePreset validates p and writes it to the config directory
func (m *Manager) SavePreset(name string, p Preset) error {
	if err := ValidatePreset(&p); err != nil {
		return err
	}
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid config id %q", ErrInvalidConfig, name)
	}
	if m.configDir == "" {
		return fmt.Errorf("no config directory to save %s", name)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[name] = p
	m.mu.Unlock()

	return nil
}

// loadDefaultPreset prefers classic.json, then the first valid preset,
// then the built-in default
func (m *Manager) loadDefaultPreset() error {
	p := DefaultPreset()

	if m.configDir != "" {
		classic, err := m.LoadPreset("classic")
		switch {
		case err == nil:
			p = classic
		case errors.Is(err, ErrInvalidConfig):
			return err
		default:
			presets, listErr := m.ListPresets()
			if listErr == nil && len(presets) > 0 {
				if first, err := m.LoadPreset(presets[0].ConfigID); err == nil {
					p = first
				}
			}
		}
	}

	m.mu.Lock()
	m.defaultPreset = p
	m.mu.Unlock()
	return nil
}
