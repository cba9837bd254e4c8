package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "namecleanup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
store:
  driver: sqlite
  path: /tmp/scene.db
log:
  level: debug
  format: json
legacy_reports: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/scene.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.LegacyReports)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	_, err := Load(writeFile(t, "stor:\n  driver: memory\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "store:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "unknown driver")

	_, err = Load(writeFile(t, "log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "unknown format")
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "store:\n  driver: sqlite\n  path: from-file.db\nlog:\n  level: warn\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := Bind(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--db", "from-flag.db", "--legacy-reports"}))

	cfg, err := flags.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "from-flag.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.LegacyReports)
}

func TestFlagsUseEnvPath(t *testing.T) {
	t.Setenv(EnvPath, writeFile(t, "log:\n  level: error\n"))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := Bind(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := flags.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}
