package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func env(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100, cfg.History.Limit)
	assert.Equal(t, 3*time.Second, cfg.History.Window())
	assert.False(t, cfg.History.SealRestored)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "projects", cfg.Storage.Root)
	assert.Equal(t, "trellis.db", cfg.Storage.DB)
	assert.True(t, cfg.Storage.Autosave)
	assert.Zero(t, cfg.Storage.AutosaveInterval())
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"ctrl+z"}, cfg.Keys.Undo)
	assert.Equal(t, []string{"ctrl+y", "ctrl+shift+z"}, cfg.Keys.Redo)
	assert.Equal(t, []string{"delete", "backspace"}, cfg.Keys.Delete)
}

func TestLoadWith_NoFileIsDefault(t *testing.T) {
	cfg, err := LoadWith("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWith_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trellis.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
history: {
	limit:        50
	merge_window: "1500ms"
}
storage: backend: "sqlite"
log: level:       "debug"
keys: undo: ["cmd+z"]
`), 0o644))

	cfg, err := LoadWith(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, 1500*time.Millisecond, cfg.History.Window())
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, []string{"cmd+z"}, cfg.Keys.Undo)
	assert.Equal(t, []string{"ctrl+y", "ctrl+shift+z"}, cfg.Keys.Redo, "untouched fields keep defaults")
}

func TestLoadWith_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trellis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"history": {"seal_restored": true}}`), 0o644))

	cfg, err := LoadWith(path, noEnv)
	require.NoError(t, err)
	assert.True(t, cfg.History.SealRestored)
}

func TestLoadWith_MissingFile(t *testing.T) {
	_, err := LoadWith(filepath.Join(t.TempDir(), "nope.cue"), noEnv)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `history: {`},
		{"unknown field", `colour: "red"`},
		{"limit below one", `history: limit: 0`},
		{"limit not int", `history: limit: "many"`},
		{"bad duration", `history: merge_window: "soon"`},
		{"unknown backend", `storage: backend: "s3"`},
		{"empty root", `storage: root: ""`},
		{"unknown level", `log: level: "trace"`},
		{"empty key list", `keys: undo: []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadWith_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trellis.cue")
	require.NoError(t, os.WriteFile(path, []byte(`history: limit: 50`), 0o644))

	cfg, err := LoadWith(path, env(map[string]string{
		"TRELLIS_MERGE_WINDOW":  "5s",
		"TRELLIS_SEAL_RESTORED": "true",
		"TRELLIS_STORE":         "sqlite",
		"TRELLIS_DB":            "/tmp/h.db",
		"TRELLIS_AUTOSAVE":      "false",
		"TRELLIS_LOG_FORMAT":    "json",
	}))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, 5*time.Second, cfg.History.Window())
	assert.True(t, cfg.History.SealRestored)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/h.db", cfg.Storage.DB)
	assert.False(t, cfg.Storage.Autosave)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadWith_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trellis.cue")
	require.NoError(t, os.WriteFile(path, []byte(`history: limit: 50`), 0o644))

	cfg, err := LoadWith(path, env(map[string]string{"TRELLIS_HISTORY_LIMIT": "20"}))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.History.Limit)
}

func TestLoadWith_BadEnv(t *testing.T) {
	tests := map[string]string{
		"TRELLIS_HISTORY_LIMIT": "lots",
		"TRELLIS_SEAL_RESTORED": "maybe",
		"TRELLIS_STORE":         "s3",
		"TRELLIS_LOG_LEVEL":     "trace",
		"TRELLIS_MERGE_WINDOW":  "soon",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith("", env(map[string]string{name: value}))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
