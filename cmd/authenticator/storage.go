package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/authenticator/pkg/logger"
	"github.com/dmitrymomot/authenticator/pkg/mongo"
	"github.com/dmitrymomot/authenticator/pkg/pg"
	"github.com/dmitrymomot/authenticator/pkg/redis"
	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/sqlite"
)

// backend is an opened storage with its health check and release functions.
type backend struct {
	kv    registry.KV
	ping  func(context.Context) error
	close func() error
}

// openBackend connects the configured storage.
func openBackend(ctx context.Context, cfg Config, log *slog.Logger) (*backend, error) {
	log = log.With(logger.Backend(cfg.Storage))

	switch cfg.Storage {
	case StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.DebugContext(ctx, "storage opened", slog.String("path", cfg.SQLite.Path))
		return &backend{kv: sqlite.NewKV(db), ping: sqlite.Healthcheck(db), close: db.Close}, nil

	case StorageRedis:
		rc, err := env.ParseAs[redis.Config]()
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return nil, err
		}
		return &backend{kv: redis.NewKV(client, rc.KeyPrefix), ping: redis.Healthcheck(client), close: client.Close}, nil

	case StoragePostgres:
		pc, err := env.ParseAs[pg.Config]()
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, pc, log); err != nil {
			pool.Close()
			return nil, err
		}
		release := func() error { pool.Close(); return nil }
		return &backend{kv: pg.NewKV(pool), ping: pg.Healthcheck(pool), close: release}, nil

	case StorageMongo:
		mc, err := env.ParseAs[mongo.Config]()
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		coll, err := mongo.NewCollection(ctx, mc)
		if err != nil {
			return nil, err
		}
		client := coll.Database().Client()
		disconnect := func() error { return client.Disconnect(context.Background()) }
		return &backend{kv: mongo.NewKV(coll), ping: mongo.Healthcheck(client), close: disconnect}, nil
	}

	log.WarnContext(ctx, "using in-memory storage, credentials are lost on exit")
	return &backend{
		kv:    registry.NewMemoryKV(),
		ping:  func(context.Context) error { return nil },
		close: func() error { return nil },
	}, nil
}
