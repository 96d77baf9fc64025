package totp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// NormalizeSecret removes all whitespace and uppercases the secret.
// Authenticator apps often display secrets in groups of four ("mfyh a3df ..."),
// so inner spaces are dropped as well.
func NormalizeSecret(secret string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, secret)
}

// DecodeSecret turns a stored Base32 secret into the raw HMAC key.
// Padded and unpadded secrets are both accepted.
func DecodeSecret(secret string) ([]byte, error) {
	secret = NormalizeSecret(secret)
	if secret == "" {
		return nil, errors.Join(ErrInvalidSecret, errors.New("secret is empty"))
	}
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, errors.Join(ErrInvalidSecret, errors.New("secret contains characters outside the base32 alphabet"))
	}

	key, err := b32NoPadding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, errors.Join(ErrInvalidSecret, errors.New("secret decodes to zero bytes"))
	}
	return key, nil
}

// ValidateSecret reports whether the secret can be used as an HMAC key.
func ValidateSecret(secret string) error {
	_, err := DecodeSecret(secret)
	return err
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32NoPadding.EncodeToString(secret), nil
}
