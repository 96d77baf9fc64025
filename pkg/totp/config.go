package totp

// Config holds the TOTP settings read from the environment.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"` // Base64 master key for sealing secrets at rest (optional)
}

// MasterKey decodes the configured encryption key. It returns ErrEncryptionKeyNotSet
// (joined with ErrFailedToLoadEncryptionKey) when sealing is not configured.
func (c Config) MasterKey() ([]byte, error) {
	return ParseEncryptionKey(c.EncryptionKey)
}
