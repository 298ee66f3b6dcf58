package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/smallwins/internal/calendar"
	"github.com/julianstephens/smallwins/internal/constants"
)

// Config holds the persistent settings for smallwins.
type Config struct {
	Storage     string `toml:"storage"`                // "json" (default), "sqlite" or "postgres"
	DataDir     string `toml:"data_dir"`               // habit store, backups and logs
	Timezone    string `toml:"timezone"`               // IANA name or "Local"
	MaxBackups  int    `toml:"max_backups"`            // snapshots kept by rotation
	ExportDir   string `toml:"export_dir,omitempty"`   // defaults to the working directory
	PostgresDSN string `toml:"postgres_dsn,omitempty"` // only used for storage=postgres; must not carry a password
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Storage:    constants.DefaultStorage,
		DataDir:    constants.DefaultDataDir,
		Timezone:   constants.DefaultTimezone,
		MaxBackups: constants.MaxBackups,
	}
}

// applyDefaults fills zero fields left out of a partial config file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Storage == "" {
		c.Storage = d.Storage
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
}

// Validate checks that the config values are usable.
func (c *Config) Validate() error {
	switch c.Storage {
	case constants.StorageJSON, constants.StorageSQLite, constants.StoragePostgres:
	default:
		return fmt.Errorf("invalid storage %q: expected %s, %s or %s",
			c.Storage, constants.StorageJSON, constants.StorageSQLite, constants.StoragePostgres)
	}
	if !calendar.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.MaxBackups < 1 {
		return fmt.Errorf("max_backups must be at least 1, got %d", c.MaxBackups)
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return calendar.LoadLocation(c.Timezone)
}

// ResolvedDataDir returns DataDir with a leading ~ expanded.
func (c *Config) ResolvedDataDir() (string, error) {
	return ExpandPath(c.DataDir)
}

// ResolvedExportDir returns the directory exports are written to.
func (c *Config) ResolvedExportDir() (string, error) {
	if c.ExportDir == "" {
		return ".", nil
	}
	return ExpandPath(c.ExportDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Keys that are not set
// keep their default values.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", resolved, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", resolved, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", resolved, err)
	}
	return nil
}
