package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ugrid.db", cfg.Store.Path)
	assert.Empty(t, cfg.Mesh.Cells)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("UGRID_STORE_PATH", "")
	t.Setenv("UGRID_MANIFEST", "")
	t.Setenv("UGRID_LOG_LEVEL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("UGRID_STORE_PATH", "")
	t.Setenv("UGRID_MANIFEST", "")
	t.Setenv("UGRID_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "ugrid.yaml")

	cfg := DefaultConfig()
	cfg.Store.Path = "grids.db"
	cfg.Mesh.Cells = "tet"
	cfg.Mesh.CellSize = 0.25
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("UGRID_STORE_PATH", "")
	t.Setenv("UGRID_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "ugrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "ugrid.db", cfg.Store.Path)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ugrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("store path", func(t *testing.T) {
		t.Setenv("UGRID_STORE_PATH", "/tmp/override.db")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("UGRID_LOG_LEVEL", "warn")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		t.Setenv("UGRID_STORE_PATH", "")
		t.Setenv("UGRID_MANIFEST", "")
		t.Setenv("UGRID_LOG_LEVEL", "")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("applied after file", func(t *testing.T) {
		t.Setenv("UGRID_LOG_LEVEL", "error")
		path := filepath.Join(t.TempDir(), "ugrid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Log.Level)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"empty manifest", func(c *Config) { c.Store.Manifest = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad cells", func(c *Config) { c.Mesh.Cells = "prism" }},
		{"bad encoding", func(c *Config) { c.Mesh.Encoding = "packed" }},
		{"negative cell size", func(c *Config) { c.Mesh.CellSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
