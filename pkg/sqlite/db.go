package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"

// DB pairs a single-connection writer with a small reader pool so that concurrent
// reads never hit "database is locked" while a write is in flight.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	dsn    string
}

// Open opens the database file at cfg.Path in WAL mode.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&%s", cfg.Path, pragmas)
	return open(ctx, dsn, cfg.MaxReaders)
}

// OpenMemory opens a named shared in-memory database. Every DB opened with the
// same name sees the same data until the last connection closes.
func OpenMemory(ctx context.Context, name string) (*DB, error) {
	if name == "" {
		return nil, ErrEmptyPath
	}
	// WAL does not apply to in-memory databases.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", name, pragmas)
	return open(ctx, dsn, 4)
}

func open(ctx context.Context, dsn string, maxReaders int) (*DB, error) {
	if maxReaders < 1 {
		maxReaders = 1
	}

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDB, fmt.Errorf("open writer: %w", err))
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(ctx); err != nil {
		_ = writer.Close()
		return nil, errors.Join(ErrFailedToOpenDB, fmt.Errorf("ping writer: %w", err))
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, errors.Join(ErrFailedToOpenDB, fmt.Errorf("open reader: %w", err))
	}
	reader.SetMaxOpenConns(maxReaders)
	if err := reader.PingContext(ctx); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, errors.Join(ErrFailedToOpenDB, fmt.Errorf("ping reader: %w", err))
	}

	return &DB{Writer: writer, Reader: reader, dsn: dsn}, nil
}

// Close closes both pools and returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error
	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}
	return firstErr
}

// Healthcheck returns a closure suitable for liveness and startup checks.
func Healthcheck(db *DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.Writer.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
