package sqlite

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/authenticator/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations through the writer connection.
// Applied versions are skipped, so it is safe to call on every start.
func Migrate(ctx context.Context, db *DB, log *slog.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.Writer, fsys)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			logger.Duration(r.Duration),
			logger.Backend("sqlite"),
		)
	}
	return nil
}
