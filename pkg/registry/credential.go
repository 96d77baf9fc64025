package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// MaxNameLength is the longest display label, counted in code points after NFC normalization.
const MaxNameLength = 60

// Credential is one stored TOTP configuration.
// Derived display state (code, progress) is never part of it.
type Credential struct {
	ID        string
	Name      string
	Issuer    string
	Secret    string
	Algorithm totp.Algorithm
	Digits    int
	Period    int
	Preset    Preset // provider the shape was taken from; empty when entered by hand
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Params returns the immutable snapshot the engine derives codes from.
func (c Credential) Params() totp.Params {
	return totp.Params{
		Secret:    c.Secret,
		Algorithm: c.Algorithm,
		Digits:    c.Digits,
		Period:    c.Period,
	}
}

// SameParams reports whether both credentials derive identical codes.
func (c Credential) SameParams(other Credential) bool {
	return c.Params() == other.Params()
}

// Normalize trims and NFC-normalizes labels and canonicalizes the secret.
func (c Credential) Normalize() Credential {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = norm.NFC.String(strings.TrimSpace(c.Name))
	c.Issuer = norm.NFC.String(strings.TrimSpace(c.Issuer))
	c.Secret = totp.NormalizeSecret(c.Secret)
	if p, err := ParsePreset(string(c.Preset)); err == nil && c.Preset != "" {
		c.Preset = p
	}
	return c
}

// Validate checks the credential the same way regardless of how it entered the
// registry (form, import or direct store edit).
func (c Credential) Validate() error {
	if c.Name == "" {
		return errors.Join(ErrInvalidCredential, ErrInvalidName, errors.New("name is required"))
	}
	if n := utf8.RuneCountInString(c.Name); n > MaxNameLength {
		return errors.Join(ErrInvalidCredential, ErrInvalidName,
			fmt.Errorf("name is %d characters long, at most %d allowed", n, MaxNameLength))
	}
	if n := utf8.RuneCountInString(c.Issuer); n > MaxNameLength {
		return errors.Join(ErrInvalidCredential,
			fmt.Errorf("issuer is %d characters long, at most %d allowed", n, MaxNameLength))
	}
	if c.Preset != "" {
		if _, ok := presets[c.Preset]; !ok {
			return errors.Join(ErrInvalidCredential, ErrUnsupportedPreset, fmt.Errorf("unknown preset %q", c.Preset))
		}
	}
	if err := c.Params().Validate(); err != nil {
		return errors.Join(ErrInvalidCredential, err)
	}
	return nil
}

// Label is the text shown next to a code: "Issuer (Name)" or just the name.
func (c Credential) Label() string {
	if c.Issuer == "" {
		return c.Name
	}
	return c.Issuer + " (" + c.Name + ")"
}
