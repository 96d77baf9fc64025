package totp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// Algorithm identifies the HMAC hash function used for code derivation.
// The zero value is SHA1, the RFC 6238 default.
type Algorithm uint8

const (
	SHA1 Algorithm = iota
	SHA256
	SHA512
)

// DefaultAlgorithm is used when a credential does not name one.
const DefaultAlgorithm = SHA1

// Algorithms lists every supported algorithm in canonical order.
var Algorithms = []Algorithm{SHA1, SHA256, SHA512}

// ParseAlgorithm converts an external algorithm token into an Algorithm.
// Both spellings found in the wild are accepted ("SHA1" and "SHA-1"), case-insensitively.
// An empty token yields DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	token = strings.ReplaceAll(token, "-", "")
	switch token {
	case "":
		return DefaultAlgorithm, nil
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA512":
		return SHA512, nil
	}
	return 0, errors.Join(ErrInvalidAlgorithm, fmt.Errorf("unsupported algorithm %q", s))
}

// String returns the canonical token: SHA1, SHA256 or SHA512.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA512:
		return "SHA512"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	return a <= SHA512
}

// Hash returns the hash constructor backing the HMAC for a.
func (a Algorithm) Hash() (func() hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	}
	return nil, errors.Join(ErrInvalidAlgorithm, fmt.Errorf("unsupported algorithm %d", uint8(a)))
}

// MarshalText implements encoding.TextMarshaler so JSON and YAML documents
// always carry the canonical token.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.Join(ErrInvalidAlgorithm, fmt.Errorf("unsupported algorithm %d", uint8(a)))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseAlgorithm.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
