package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvLogLevel, EnvAddr, "CBUDGET_LOG_PRETTY"} {
		t.Setenv(k, "")
	}
}

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, model.DefaultThresholds(), cfg.Thresholds())
}

func TestSaveToThenLoadFrom(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cbudget", "config.toml")

	cfg := DefaultConfig()
	cfg.General.DBPath = "/tmp/budget.db"
	cfg.Alerts.Warning = 70
	cfg.Appearance.Theme = "catppuccin-mocha"
	require.NoError(t, SaveTo(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[alerts]\nwarning = 60\ndanger = 95\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Alerts.Warning)
	assert.Equal(t, 6, cfg.General.ReportMonths)
	assert.True(t, cfg.Alerts.SavingsGoalEnabled)
}

func TestLoadFrom_RejectsInvertedThresholds(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[alerts]\nwarning = 100\ndanger = 90\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "warning")
}

func TestLoadFrom_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "/data/override.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv("CBUDGET_LOG_PRETTY", "false")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/override.db", cfg.DBPath())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestDirsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	assert.Equal(t, "/xdg/config/cbudget/config.toml", ConfigPath())
	assert.Equal(t, "/xdg/data/cbudget/budget.db", DefaultConfig().DBPath())
}
