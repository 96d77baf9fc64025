// Package pg stores the credential registry in PostgreSQL using the pgx/v5 driver.
//
// # Architecture
//
//   • Config – populated from environment variables via github.com/caarlos0/env.
//     It controls pool limits, health-check cadence and the migrations table.
//
//   • Connect – opens a *pgxpool.Pool, retrying with a growing delay until the
//     database becomes available.
//
//   • Migrate – runs the embedded goose migrations through a database/sql bridge
//     over the same pool, creating the authenticator_kv table.
//
//   • KV – registry.KV on top of authenticator_kv.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	store := registry.NewKVStore(pg.NewKV(pool))
//
// # Error Handling
//
// Errors are joined with package sentinels such as ErrFailedToOpenDBConnection and
// ErrFailedToApplyMigrations; IsNotFoundError recognises pgx.ErrNoRows.
package pg
