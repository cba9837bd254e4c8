package config

import (
	"os"

	"github.com/spf13/pflag"
)

// Flags holds the configuration flags registered on a flag set.
type Flags struct {
	path          string
	driver        string
	dbPath        string
	scene         string
	logLevel      string
	logFormat     string
	legacyReports bool
}

// Bind registers the configuration flags on fs.
func Bind(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{}
	fs.StringVar(&f.path, "config", "", "YAML config file (default: $"+EnvPath+")")
	fs.StringVar(&f.driver, "store", string(d.Store.Driver), "document store: memory or sqlite")
	fs.StringVar(&f.dbPath, "db", d.Store.Path, "sqlite database path")
	fs.StringVar(&f.scene, "scene", "", "YAML scene to load at startup")
	fs.StringVar(&f.logLevel, "log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", d.Log.Format, "log format: text or json")
	fs.BoolVar(&f.legacyReports, "legacy-reports", d.LegacyReports, "use the original report wording")
	return f
}

// Resolve loads the config file, if any, and applies the flags that were
// set explicitly on fs. fs must already be parsed.
func (f *Flags) Resolve(fs *pflag.FlagSet) (*Config, error) {
	path := f.path
	if path == "" {
		path = os.Getenv(EnvPath)
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("store") {
		cfg.Store.Driver = Driver(f.driver)
	}
	if fs.Changed("db") {
		cfg.Store.Path = f.dbPath
	}
	if fs.Changed("scene") {
		cfg.Scene = f.scene
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if fs.Changed("legacy-reports") {
		cfg.LegacyReports = f.legacyReports
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
