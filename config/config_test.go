package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
backtest:
  allocation_per_trade: 250.0
  output_dir: out
api:
  gamma_base: http://localhost:8080
storage:
  dsn: runs.db
log:
  level: debug
  format: json
`)
	t.Setenv("VISUAL_CROSSING_API_KEY", "vc-key")
	t.Setenv("TOMORROWIO_API_KEY", "tio-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Backtest.AllocationPerTrade)
	assert.Equal(t, "out", cfg.Backtest.OutputDir)
	assert.Equal(t, "http://localhost:8080", cfg.API.GammaBase)
	assert.Equal(t, "vc-key", cfg.API.VisualCrossingKey)
	assert.Equal(t, "tio-key", cfg.API.TomorrowIOKey)
	assert.Equal(t, "runs.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `backtest: {}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Backtest.AllocationPerTrade)
	assert.Equal(t, "test-results", cfg.Backtest.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Storage.DSN, "sin dsn el ledger queda desactivado")
}

func TestLoad_EnvLogOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
  format: text
`)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_KeysNeverFromYAML(t *testing.T) {
	path := writeConfig(t, `
api:
  visualcrossingkey: leaked
`)
	t.Setenv("VISUAL_CROSSING_API_KEY", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.API.VisualCrossingKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "backtest: [not: a map")
	_, err := Load(path)
	assert.Error(t, err)
}
