package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/authenticator/pkg/sqlite"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

var storages = []string{StorageMemory, StorageSQLite, StorageRedis, StoragePostgres, StorageMongo}

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration. Backend specific settings (REDIS_URL,
// PG_CONN_URL, MONGODB_URL ...) are parsed only when that backend is selected.
type Config struct {
	Env          string        `env:"AUTHENTICATOR_ENV" envDefault:"development"`  // development or production; selects the log format
	Storage      string        `env:"AUTHENTICATOR_STORAGE" envDefault:"sqlite"`   // memory, sqlite, redis, postgres or mongo
	TickInterval time.Duration `env:"AUTHENTICATOR_TICK_INTERVAL" envDefault:"1s"` // refresh cadence of the watch command
	LogLevel     slog.Level    `env:"AUTHENTICATOR_LOG_LEVEL" envDefault:"warn"`
	RegistryKey  string        `env:"AUTHENTICATOR_REGISTRY_KEY" envDefault:"totp_entries"` // KV key holding the credential list

	SQLite sqlite.Config
	TOTP   totp.Config
}

// loadConfig reads dotenv files and then the environment. A missing default
// .env is fine; files named explicitly must exist.
func loadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !slices.Contains(storages, c.Storage) {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("unknown storage %q, use one of %v", c.Storage, storages))
	}
	if c.TickInterval <= 0 {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	return nil
}

// SealKey returns the master key, or nil when TOTP_ENCRYPTION_KEY is unset.
func (c Config) SealKey() ([]byte, error) {
	if c.TOTP.EncryptionKey == "" {
		return nil, nil
	}
	return c.TOTP.MasterKey()
}
