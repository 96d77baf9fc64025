package sqlite_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/sqlite"
)

// setupTestDB opens a shared in-memory database named after the test so parallel
// tests stay isolated.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.OpenMemory(ctx, url.PathEscape(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db, nil))
	return db
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := sqlite.Open(context.Background(), sqlite.Config{})
	require.ErrorIs(t, err, sqlite.ErrEmptyPath)
}

func TestOpen_File(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := t.TempDir() + "/authenticator.db"

	db, err := sqlite.Open(ctx, sqlite.Config{Path: path, MaxReaders: 2})
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(ctx, db, nil))
	require.NoError(t, sqlite.NewKV(db).Set(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(ctx, sqlite.Config{Path: path, MaxReaders: 2})
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, sqlite.Migrate(ctx, reopened, nil), "migrations are idempotent")

	got, err := sqlite.NewKV(reopened).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestKV(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := sqlite.NewKV(setupTestDB(t))

	got, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, kv.Set(ctx, "a", []byte("one")))
	require.NoError(t, kv.Set(ctx, "a", []byte("two")))
	require.NoError(t, kv.Set(ctx, "b", []byte("other")))

	got, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, kv.Delete(ctx, "a"))
	require.NoError(t, kv.Delete(ctx, "a"), "deleting a missing key is not an error")

	got, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), got)
}

func TestKV_UsesMigratedTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := sqlite.OpenMemory(ctx, url.PathEscape(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	kv := sqlite.NewKV(db)

	_, err = kv.Get(ctx, "a")
	require.ErrorIs(t, err, sqlite.ErrFailedToGetValue)
	require.ErrorIs(t, kv.Set(ctx, "a", []byte("x")), sqlite.ErrFailedToSetValue)

	require.NoError(t, sqlite.Migrate(ctx, db, nil))
	require.NoError(t, kv.Set(ctx, "a", []byte("x")))
	got, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestKV_Registry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := registry.NewKVStore(sqlite.NewKV(db))

	added, err := store.Add(ctx, registry.PresetGoogle.Apply(registry.Credential{
		Name:   "alice@example.com",
		Issuer: "Google",
		Secret: "JBSWY3DPEHPK3PXP",
	}))
	require.NoError(t, err)

	creds, err := registry.NewKVStore(sqlite.NewKV(db)).Entries(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, added.ID, creds[0].ID)
	assert.Equal(t, "Google (alice@example.com)", creds[0].Label())

	require.NoError(t, sqlite.Healthcheck(db)(ctx))
}
