package totp

import "errors"

var (
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrInvalidAlgorithm              = errors.New("invalid algorithm")
	ErrInvalidParameter              = errors.New("invalid parameter")
	ErrInvalidCode                   = errors.New("invalid OTP format")
	ErrFailedToGenerateSecretKey     = errors.New("failed to generate TOTP secret key")
	ErrFailedToGenerateTOTP          = errors.New("failed to generate TOTP")
	ErrFailedToSealSecret            = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret            = errors.New("failed to open TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
)
