package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PRESALE_ADDR", "SESSION_TTL", "DATABASE_URL", "REGISTRY_BASE_URL", "KAFKA_BROKERS", "VERIFY_RATE_LIMIT", "LOGIN_RATE_LIMIT", "RATE_LIMIT_DISABLED"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "https://www.bcfsa.ca/re-licencee", cfg.Registry.BaseURL)
	assert.Equal(t, 5, cfg.RateLimit.VerifyLimit)
	assert.Equal(t, 10, cfg.RateLimit.LoginLimit)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Nil(t, cfg.Audit.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PRESALE_ADDR", ":9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REGISTRY_BASE_URL", "http://registry.test/lookup/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("VERIFY_RATE_LIMIT", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, "http://registry.test/lookup", cfg.Registry.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 3, cfg.RateLimit.VerifyLimit)
}

func TestFromEnv_RejectsMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "tomorrow")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestFromEnv_RejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("VERIFY_RATE_LIMIT", "0")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRESALE_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PRESALE_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("PRESALE_TEST_DOTENV"))
}
