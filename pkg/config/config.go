// Package config loads the ugrid tool configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all settings of the ugrid command.
type Config struct {
	Store StoreConfig   `yaml:"store"`
	Log   LoggingConfig `yaml:"log"`
	Mesh  MeshConfig    `yaml:"mesh"`
}

// StoreConfig locates the array store and the grid manifest.
type StoreConfig struct {
	Path     string `yaml:"path"`     // SQLite database holding the datasets
	Manifest string `yaml:"manifest"` // YAML manifest of the data objects
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// MeshConfig overrides the grid requests of a script. Empty fields keep
// what the script asks for.
type MeshConfig struct {
	Cells    string  `yaml:"cells,omitempty"`    // hex, tet
	Encoding string  `yaml:"encoding,omitempty"` // constant, variable
	CellSize float64 `yaml:"cell_size,omitempty"`
	CRSTitle string  `yaml:"crs_title"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:     "ugrid.db",
			Manifest: "ugrid.yaml",
		},
		Log: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Mesh: MeshConfig{
			CRSTitle: "Local CRS",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("UGRID_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if path := os.Getenv("UGRID_MANIFEST"); path != "" {
		c.Store.Manifest = path
	}
	if level := os.Getenv("UGRID_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

var (
	validLevels    = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"json", "console"}
	validCells     = []string{"", "hex", "tet"}
	validEncodings = []string{"", "constant", "variable"}
)

func oneOf(what, v string, valid []string) error {
	for _, ok := range valid {
		if v == ok {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %q (valid: %v)", what, v, valid)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path not configured (set store.path or UGRID_STORE_PATH)")
	}
	if c.Store.Manifest == "" {
		return fmt.Errorf("manifest path not configured")
	}
	if err := oneOf("log level", c.Log.Level, validLevels); err != nil {
		return err
	}
	if err := oneOf("log format", c.Log.Format, validFormats); err != nil {
		return err
	}
	if err := oneOf("cell kind", c.Mesh.Cells, validCells); err != nil {
		return err
	}
	if err := oneOf("encoding", c.Mesh.Encoding, validEncodings); err != nil {
		return err
	}
	if c.Mesh.CellSize < 0 {
		return fmt.Errorf("mesh.cell_size must not be negative, got %g", c.Mesh.CellSize)
	}
	return nil
}
