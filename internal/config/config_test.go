package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "STORAGE", "REDIS_ADDR", "CATALOG_DELAY", "SESSION_CACHE", "LOG_FILE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "marketflow.db", cfg.DBDSN)
	assert.Equal(t, "sql", cfg.Storage)
	assert.Equal(t, time.Duration(0), cfg.CatalogDelay)
	assert.Equal(t, 1024, cfg.SessionCache)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE", "redis")
	t.Setenv("CATALOG_DELAY", "250ms")
	t.Setenv("SESSION_CACHE", "not-a-number")
	cfg := Load()
	assert.Equal(t, "redis", cfg.Storage)
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogDelay)
	assert.Equal(t, 1024, cfg.SessionCache)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg := Load()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "9100", "--storage=memory"}))
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}
