package sqlite

import "errors"

var (
	ErrEmptyPath               = errors.New("empty sqlite database path")
	ErrFailedToOpenDB          = errors.New("failed to open sqlite database")
	ErrFailedToApplyMigrations = errors.New("failed to apply sqlite migrations")
	ErrHealthcheckFailed       = errors.New("sqlite healthcheck failed")
	ErrFailedToGetValue        = errors.New("failed to read value")
	ErrFailedToSetValue        = errors.New("failed to write value")
	ErrFailedToDeleteValue     = errors.New("failed to delete value")
)
