package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

func validPreset(name string) Preset {
	return Preset{
		Name:            name,
		Description:     "test preset",
		GridSize:        4,
		DurationSeconds: 90,
	}
}

func writePreset(t *testing.T, dir, name string, p Preset) {
	t.Helper()
	data, err := json.MarshalIndent(p, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("classic is the default", func(t *testing.T) {
		dir := t.TempDir()
		writePreset(t, dir, "classic", validPreset("Classic"))
		writePreset(t, dir, "big", Preset{Name: "Big", GridSize: 6, DurationSeconds: 120})

		m, err := NewManager(dir, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "Classic", m.Default().Name)
	})

	t.Run("first preset without classic", func(t *testing.T) {
		dir := t.TempDir()
		writePreset(t, dir, "b", validPreset("B"))
		writePreset(t, dir, "a", validPreset("A"))

		m, err := NewManager(dir, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "A", m.Default().Name)
	})

	t.Run("empty directory", func(t *testing.T) {
		m, err := NewManager(t.TempDir(), zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultPreset(), m.Default())
	})

	t.Run("no directory", func(t *testing.T) {
		m, err := NewManager("", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultPreset(), m.Default())

		p, err := m.LoadPreset("default")
		require.NoError(t, err)
		assert.Equal(t, DefaultPreset(), p)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path", zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("invalid classic refuses to start", func(t *testing.T) {
		dir := t.TempDir()
		writePreset(t, dir, "classic", Preset{Name: "Broken", GridSize: 1, DurationSeconds: 60})

		_, err := NewManager(dir, zerolog.Nop())
		assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
	})
}

func TestManager_LoadPreset(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic", validPreset("Classic"))
	writePreset(t, dir, "quick", Preset{Name: "Quick", GridSize: 3, DurationSeconds: 30})

	m, err := NewManager(dir, zerolog.Nop())
	require.NoError(t, err)

	t.Run("existing", func(t *testing.T) {
		p, err := m.LoadPreset("quick")
		require.NoError(t, err)
		assert.Equal(t, 3, p.GridSize)
		assert.Equal(t, 30, int(p.Duration().Seconds()))
	})

	t.Run("with extension", func(t *testing.T) {
		p, err := m.LoadPreset("quick.json")
		require.NoError(t, err)
		assert.Equal(t, "Quick", p.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := m.LoadPreset("nope")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := m.LoadPreset("../classic")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("invalid values", func(t *testing.T) {
		writePreset(t, dir, "bad", Preset{Name: "Bad", GridSize: 4, DurationSeconds: 0})
		_, err := m.LoadPreset("bad")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": oops}`), 0644))
		_, err := m.LoadPreset("malformed")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestManager_ListPresets(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic", validPreset("Classic"))
	writePreset(t, dir, "quick", Preset{Name: "Quick", GridSize: 3, DurationSeconds: 30})
	writePreset(t, dir, "bad", Preset{Name: "", GridSize: 4, DurationSeconds: 30})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	m, err := NewManager(dir, zerolog.Nop())
	require.NoError(t, err)

	presets, err := m.ListPresets()
	require.NoError(t, err)
	require.Len(t, presets, 2)

	assert.Equal(t, PresetInfo{
		Filename:        "classic.json",
		ConfigID:        "classic",
		Name:            "Classic",
		Description:     "test preset",
		GridSize:        4,
		DurationSeconds: 90,
	}, presets[0])
	assert.Equal(t, "quick", presets[1].ConfigID)
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic", validPreset("Classic"))
	writePreset(t, dir, "quick", Preset{Name: "Quick", GridSize: 3, DurationSeconds: 30})

	m, err := NewManager(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, m.SetDefault("quick"))
	assert.Equal(t, "Quick", m.Default().Name)

	assert.ErrorIs(t, m.SetDefault("nope"), ErrConfigNotFound)
	assert.Equal(t, "Quick", m.Default().Name)
}

func TestManager_SavePresetAndRefresh(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, zerolog.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, m.SavePreset("broken", Preset{Name: "x", GridSize: 0, DurationSeconds: 10}), ErrInvalidConfig)
	for _, id := range []string{"", "../escape", `a\b`, ".hidden"} {
		assert.ErrorIs(t, m.SavePreset(id, validPreset("Bad")), ErrInvalidConfig, id)
	}
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, m.SavePreset("classic", validPreset("Saved")))
	_, err = os.Stat(filepath.Join(dir, "classic.json"))
	require.NoError(t, err)

	require.NoError(t, m.RefreshCache())
	assert.Equal(t, "Saved", m.Default().Name)
}

func TestManager_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic", validPreset("Classic"))

	m, err := NewManager(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.RefreshCache())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := m.LoadPreset("classic")
			assert.NoError(t, err)
			assert.Equal(t, "Classic", p.Name)
		}()
	}
	wg.Wait()
}

func TestValidatePreset(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
		valid  bool
	}{
		{"valid", validPreset("ok"), true},
		{"smallest grid", Preset{Name: "s", GridSize: 2, DurationSeconds: 1}, true},
		{"missing name", Preset{Name: " ", GridSize: 4, DurationSeconds: 60}, false},
		{"grid too small", Preset{Name: "x", GridSize: 1, DurationSeconds: 60}, false},
		{"grid too large", Preset{Name: "x", GridSize: engine.MaxGridSize + 1, DurationSeconds: 60}, false},
		{"zero duration", Preset{Name: "x", GridSize: 4}, false},
		{"duration too long", Preset{Name: "x", GridSize: 4, DurationSeconds: MaxDurationSeconds + 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePreset(&tt.preset)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
			}
		})
	}
}
