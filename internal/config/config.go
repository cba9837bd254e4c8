// Package config loads namecleanup configuration.
//
// Settings come from an optional YAML file named by --config or the
// NAMECLEANUP_CONFIG environment variable. Command-line flags that were set
// explicitly override values from the file; everything else keeps the
// defaults from Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tianer2820/namecleanup/internal/logging"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "NAMECLEANUP_CONFIG"

// Driver selects the document store.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`

	// Scene is an optional YAML scene loaded into the document at startup.
	Scene string `yaml:"scene"`

	// LegacyReports reproduces the original report wording: images report
	// "materials" and meshes report "meshs".
	LegacyReports bool `yaml:"legacy_reports"`
}

type StoreConfig struct {
	Driver Driver `yaml:"driver"`
	// Path is the sqlite database file. Ignored by the memory driver.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: DriverMemory, Path: "./namecleanup.db"},
		Log:   LogConfig{Level: "info", Format: logging.FormatText},
	}
}

// Load reads path on top of the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty file decodes to io.EOF and keeps the defaults
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
