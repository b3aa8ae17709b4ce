package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Port         string
	DBDriver     string // sqlite | mysql
	DBDSN        string
	Storage      string // sql | redis | memory
	RedisAddr    string
	CatalogDelay time.Duration
	SessionCache int
	LogFile      string
}

// Load reads the environment, falling back to defaults for anything unset or unparsable.
func Load() Config {
	return Config{
		Port:         env("PORT", "8081"),
		DBDriver:     env("DB_DRIVER", "sqlite"),
		DBDSN:        env("DB_DSN", "marketflow.db"), // sqlite file in working dir
		Storage:      env("STORAGE", "sql"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		CatalogDelay: envDuration("CATALOG_DELAY", 0),
		SessionCache: envInt("SESSION_CACHE", 1024),
		LogFile:      os.Getenv("LOG_FILE"),
	}
}

// BindFlags registers command-line overrides on fs, defaulting each to the value already in cfg.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "catalog database driver (sqlite|mysql)")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "catalog database DSN")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "cart/order storage backend (sql|redis|memory)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for --storage=redis")
	fs.DurationVar(&cfg.CatalogDelay, "catalog-delay", cfg.CatalogDelay, "artificial latency per catalog read")
	fs.IntVar(&cfg.SessionCache, "session-cache", cfg.SessionCache, "number of session carts kept in memory")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write logs to this file")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}
