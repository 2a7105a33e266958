package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 5, cfg.ReportTopItems)
	assert.True(t, cfg.SeedSampleMenu)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REPORT_TOP_ITEMS", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SEED_SAMPLE_MENU", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.ReportTopItems)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.SeedSampleMenu)
}

func TestLoadRejectsWeakSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET is not set")

	t.Setenv("SESSION_SECRET", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: "https://a.example, https://b.example ,,"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())
}
