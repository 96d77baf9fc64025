package totp

import (
	"crypto/hmac"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDigits = 6  // Standard 6-digit TOTP codes
	DefaultPeriod = 30 // 30-second validity window (RFC 6238 standard)

	// MinDigits is the shortest code RFC 4226 allows.
	MinDigits = 6
	// MaxDigits is the longest code a 31-bit truncated value can fill.
	MaxDigits = 10
)

var (
	codeRegex = regexp.MustCompile(`^\d+$`)

	// pow10 holds 10^n for every supported digit count; math.Pow10 would pull
	// floating point into the derivation path.
	pow10 = [MaxDigits + 1]uint64{
		1, 10, 100, 1_000, 10_000, 100_000, 1_000_000,
		10_000_000, 100_000_000, 1_000_000_000, 10_000_000_000,
	}
)

// Params is an immutable snapshot of everything needed to derive a code.
type Params struct {
	Secret    string    // Base32-encoded shared secret (required)
	Algorithm Algorithm // HMAC hash function
	Digits    int       // Code length, MinDigits..MaxDigits
	Period    int       // Seconds per time step, >= 1
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p Params) GetDefaults() Params {
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// Validate checks the derivation parameters without touching the clock.
func (p Params) Validate() error {
	if !p.Algorithm.Valid() {
		return errors.Join(ErrInvalidAlgorithm, fmt.Errorf("unsupported algorithm %d", uint8(p.Algorithm)))
	}
	if err := validateShape(p.Digits, p.Period); err != nil {
		return err
	}
	return ValidateSecret(p.Secret)
}

func validateShape(digits, period int) error {
	if digits < MinDigits || digits > MaxDigits {
		return errors.Join(ErrInvalidParameter,
			fmt.Errorf("digits must be between %d and %d, got %d", MinDigits, MaxDigits, digits))
	}
	if period < 1 {
		return errors.Join(ErrInvalidParameter, fmt.Errorf("period must be positive, got %d", period))
	}
	return nil
}

// Counter returns the RFC 6238 time step for the given Unix time.
// The caller guarantees at >= 0 and period >= 1.
func Counter(at int64, period int) uint64 {
	return uint64(at) / uint64(period)
}

// Compute derives the code for the time step containing atUnixSeconds.
// It is a pure function of its inputs.
func Compute(secret string, alg Algorithm, digits, period int, atUnixSeconds int64) (string, error) {
	if err := validateShape(digits, period); err != nil {
		return "", err
	}
	if atUnixSeconds < 0 {
		return "", errors.Join(ErrInvalidParameter, fmt.Errorf("time must not precede the Unix epoch, got %d", atUnixSeconds))
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}

	value, err := GenerateHOTP(key, Counter(atUnixSeconds, period), alg, digits)
	if err != nil {
		return "", err
	}
	return FormatCode(value, digits), nil
}

// Generate derives the code of p for the time step containing t.
func Generate(p Params, t time.Time) (string, error) {
	return Compute(p.Secret, p.Algorithm, p.Digits, p.Period, t.Unix())
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm
// and returns the truncated value reduced to the requested number of digits.
func GenerateHOTP(key []byte, counter uint64, alg Algorithm, digits int) (uint32, error) {
	if digits < 1 || digits > MaxDigits {
		return 0, errors.Join(ErrInvalidParameter, fmt.Errorf("digits out of range: %d", digits))
	}
	newHash, err := alg.Hash()
	if err != nil {
		return 0, err
	}

	// Counter is hashed as an 8-byte big-endian value (RFC 4226 requirement)
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the last nibble picks a 4-byte window, MSB cleared
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return uint32(uint64(value) % pow10[digits]), nil
}

// FormatCode renders value left-padded with zeros to exactly digits characters.
func FormatCode(value uint32, digits int) string {
	s := strconv.FormatUint(uint64(value), 10)
	if len(s) >= digits {
		return s
	}
	return strings.Repeat("0", digits-len(s)) + s
}

// Remaining returns the time left before the code for t rotates.
func Remaining(t time.Time, period int) time.Duration {
	if period < 1 {
		return 0
	}
	step := int64(period) * int64(time.Second/time.Millisecond)
	elapsed := t.UnixMilli() % step
	if elapsed < 0 {
		elapsed += step
	}
	return time.Duration(step-elapsed) * time.Millisecond
}

// Verify checks a user-supplied code against the steps around t.
// skew is the number of adjacent steps accepted on each side to absorb clock drift.
func Verify(p Params, code string, t time.Time, skew uint) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if len(code) != p.Digits || !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	key, err := DecodeSecret(p.Secret)
	if err != nil {
		return false, err
	}
	if t.Unix() < 0 {
		return false, errors.Join(ErrInvalidParameter, errors.New("time must not precede the Unix epoch"))
	}

	counter := Counter(t.Unix(), p.Period)
	for i := -int64(skew); i <= int64(skew); i++ {
		c := int64(counter) + i
		if c < 0 {
			continue
		}
		value, err := GenerateHOTP(key, uint64(c), p.Algorithm, p.Digits)
		if err != nil {
			return false, errors.Join(ErrFailedToGenerateTOTP, err)
		}
		if hmac.Equal([]byte(FormatCode(value, p.Digits)), []byte(code)) {
			return true, nil
		}
	}

	return false, nil
}
