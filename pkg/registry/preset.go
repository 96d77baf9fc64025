package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// Preset names a provider whose published TOTP settings can prefill a credential.
type Preset string

const (
	PresetGoogle    Preset = "Google"
	PresetMicrosoft Preset = "Microsoft"
	PresetGitHub    Preset = "GitHub"
	PresetOther     Preset = "Other"
)

// Settings is the derivation shape shared by every credential of a preset.
type Settings struct {
	Algorithm totp.Algorithm
	Digits    int
	Period    int
}

// All major providers publish the RFC 6238 defaults.
var presets = map[Preset]Settings{
	PresetGoogle:    {Algorithm: totp.SHA1, Digits: 6, Period: 30},
	PresetMicrosoft: {Algorithm: totp.SHA1, Digits: 6, Period: 30},
	PresetGitHub:    {Algorithm: totp.SHA1, Digits: 6, Period: 30},
	PresetOther:     {Algorithm: totp.DefaultAlgorithm, Digits: totp.DefaultDigits, Period: totp.DefaultPeriod},
}

// ParsePreset matches a preset name case-insensitively. Empty means PresetOther.
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PresetOther, nil
	}
	for p := range presets {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", errors.Join(ErrUnsupportedPreset, fmt.Errorf("unknown preset %q", s))
}

// Settings returns the preset's derivation shape.
func (p Preset) Settings() Settings {
	if s, ok := presets[p]; ok {
		return s
	}
	return presets[PresetOther]
}

// Apply prefills c. Named providers overwrite the derivation shape and are
// recorded in c.Preset; PresetOther only fills fields the user left at zero.
func (p Preset) Apply(c Credential) Credential {
	s := p.Settings()
	if p != PresetOther {
		c.Algorithm = s.Algorithm
		c.Digits = s.Digits
		c.Period = s.Period
		c.Preset = p
		return c
	}
	if c.Digits == 0 {
		c.Digits = s.Digits
	}
	if c.Period == 0 {
		c.Period = s.Period
	}
	return c
}
