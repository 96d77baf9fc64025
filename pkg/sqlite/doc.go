// Package sqlite is the default durable backend for the credential registry.
//
// It uses the pure-Go modernc.org/sqlite driver, so the binary stays CGO-free,
// and embeds its schema as goose migrations. The registry collection is kept as a
// single row of a key/value table; KV implements registry.KV on top of it.
//
// # Usage
//
//	db, err := sqlite.Open(ctx, sqlite.Config{Path: "authenticator.db", MaxReaders: 4})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := sqlite.Migrate(ctx, db, log); err != nil {
//	    return err
//	}
//	store := registry.NewKVStore(sqlite.NewKV(db, "kv"))
//
// OpenMemory gives a shared in-memory database for tests and throwaway sessions.
package sqlite
