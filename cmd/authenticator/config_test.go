package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTHENTICATOR_STORAGE", "memory")
	unsetEnv(t, "AUTHENTICATOR_TICK_INTERVAL", "AUTHENTICATOR_REGISTRY_KEY", "SQLITE_MAX_READERS", "TOTP_ENCRYPTION_KEY")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "totp_entries", cfg.RegistryKey)
	assert.Equal(t, 4, cfg.SQLite.MaxReaders)

	key, err := cfg.SealKey()
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AUTHENTICATOR_TICK_INTERVAL=250ms\n"), 0o600))
	t.Setenv("AUTHENTICATOR_STORAGE", "memory")
	// godotenv never overrides variables that are already set.
	unsetEnv(t, "AUTHENTICATOR_TICK_INTERVAL")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("AUTHENTICATOR_STORAGE", "etcd")
		_, err := loadConfig()
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad interval", func(t *testing.T) {
		t.Setenv("AUTHENTICATOR_STORAGE", "memory")
		t.Setenv("AUTHENTICATOR_TICK_INTERVAL", "soon")
		_, err := loadConfig()
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	valid := Config{Storage: StorageSQLite, TickInterval: time.Second}
	require.NoError(t, valid.Validate())

	zero := valid
	zero.TickInterval = 0
	require.ErrorIs(t, zero.Validate(), ErrInvalidConfig)

	unknown := valid
	unknown.Storage = "files"
	require.ErrorIs(t, unknown.Validate(), ErrInvalidConfig)
}

func TestConfig_SealKey(t *testing.T) {
	t.Parallel()
	_, err := Config{TOTP: totp.Config{EncryptionKey: "not base64!"}}.SealKey()
	require.ErrorIs(t, err, totp.ErrFailedToLoadEncryptionKey)
}

// unsetEnv removes keys for the duration of the test; t.Setenv restores them.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
