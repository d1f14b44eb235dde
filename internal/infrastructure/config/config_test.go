package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Monitoring.TrendWindowDays)
	assert.Equal(t, 20, cfg.Monitoring.DashboardActionLimit)
	assert.False(t, cfg.Monitoring.AutoCreateActionItems)
	assert.True(t, cfg.Server.RateLimit.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
monitoring:
  trend_window_days: 60
  auto_create_action_items: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Monitoring.TrendWindowDays)
	assert.True(t, cfg.Monitoring.AutoCreateActionItems)
	assert.Equal(t, 20, cfg.Monitoring.DashboardActionLimit, "untouched keys keep defaults")
}

func TestLoadEnvOverridesAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	t.Setenv("GDPR_ENVIRONMENT", "production")
	t.Setenv("GDPR_DATABASE_URL", "postgres://localhost/compliance")
	t.Setenv("GDPR_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel, "file value survives unrelated env overrides")
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "postgres://localhost/compliance", cfg.Database.URL)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}
