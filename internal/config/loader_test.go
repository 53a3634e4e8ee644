package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err) // explicit file must exist

	cfg, err = Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, 5, cfg.Admission.Limits.BurstRequests)
	require.Equal(t, 10*time.Second, cfg.Admission.Limits.BurstWindow)
	require.Equal(t, 10, cfg.Admission.Limits.PerMinute)
	require.Equal(t, 50, cfg.Admission.Limits.PerHour)
	require.Equal(t, 200, cfg.Admission.Limits.PerDay)
	require.Equal(t, 20, cfg.Admission.Limits.AIPerHour)
	require.Equal(t, 100, cfg.Admission.Limits.AIPerDay)
	require.Equal(t, 10, cfg.Admission.Limits.FailuresPerHour)

	require.Equal(t, "openai", cfg.AILink.Provider)
	require.Equal(t, "gpt-4o-mini", cfg.AILink.Model)
	require.Equal(t, 2, cfg.AILink.MaxRetries)
	require.Equal(t, time.Second, cfg.AILink.RetryBaseDelay)
	require.Equal(t, 30*time.Second, cfg.AILink.Timeout)

	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, 9090, cfg.Metrics.Port)
	require.Empty(t, cfg.Admin.Token)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipcal.yaml")
	content := `
server:
  port: 9999
admission:
  limits:
    per_minute: 3
ailink:
  api_key: test-key
  timeout: 5s
admin:
  token: secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 3, cfg.Admission.Limits.PerMinute)
	// Unset keys keep their defaults.
	require.Equal(t, 50, cfg.Admission.Limits.PerHour)
	require.Equal(t, "test-key", cfg.AILink.APIKey)
	require.Equal(t, 5*time.Second, cfg.AILink.Timeout)
	require.Equal(t, "secret", cfg.Admin.Token)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLIPCAL_SERVER_PORT", "7070")
	t.Setenv("CLIPCAL_AILINK_API_KEY", "env-key")
	t.Setenv("CLIPCAL_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "env-key", cfg.AILink.APIKey)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("CLIPCAL_SERVER_PORT", "99999")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid server port")
}
