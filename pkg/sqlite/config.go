package sqlite

type Config struct {
	Path       string `env:"AUTHENTICATOR_SQLITE_PATH" envDefault:"authenticator.db"` // Path is the database file; it is created on first use.
	MaxReaders int    `env:"SQLITE_MAX_READERS" envDefault:"4"`                       // MaxReaders caps the reader pool. The writer always has a single connection.
}
