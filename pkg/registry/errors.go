package registry

import "errors"

var (
	ErrNotFound          = errors.New("credential not found")
	ErrDuplicateID       = errors.New("credential with this id already exists")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidName       = errors.New("invalid credential name")
	ErrCorruptCollection = errors.New("stored credential collection is corrupt")
	ErrFailedToLoad      = errors.New("failed to load credentials")
	ErrFailedToSave      = errors.New("failed to save credentials")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrUnsupportedPreset = errors.New("unsupported preset")
	ErrFailedToImport    = errors.New("failed to import credentials")
	ErrFailedToExport    = errors.New("failed to export credentials")
)
