package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/model"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.BaseURL)
	assert.Equal(t, "data/fpu.geojson", cfg.Data.WaterRegions)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, time.Minute, cfg.Fetch.Timeout())
	assert.Equal(t, 1, cfg.Fetch.MaxRetries)
	assert.Equal(t, "water-atlas/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.Store.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	set, err := cfg.Thresholds.Set()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultThresholds(), set)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  base_url: https://example.org/fpu
log:
  level: debug
  format: console
server:
  port: 9090
thresholds:
  shortage: [400, 900, 1500]
store:
  dsn: atlas.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/fpu", cfg.Data.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "atlas.db", cfg.Store.DSN)

	set, err := cfg.Thresholds.Set()
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{400, 900, 1500}, set.Shortage)
	// Defaults still apply for unset values
	assert.Equal(t, model.Thresholds{0.2, 0.4, 1}, set.Stress)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ATLAS_LOG_LEVEL", "warn")
	t.Setenv("ATLAS_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "log:\n  level: loud\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"descending thresholds", "thresholds:\n  stress: [1, 0.4, 0.2]\n"},
		{"short thresholds", "thresholds:\n  scarcity: [0, 1]\n"},
		{"zero retries", "fetch:\n  max_retries: 0\n"},
		{"empty base url", "data:\n  base_url: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.yaml), 0644))
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestThresholdsSetLength(t *testing.T) {
	_, err := ThresholdsConfig{Stress: []float64{1}, Shortage: []float64{1, 2, 3}, Scarcity: []float64{0, 1, 2}}.Set()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
