package registry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func validCredential() registry.Credential {
	return registry.Credential{
		Name:      "alice@example.com",
		Issuer:    "Example",
		Secret:    testSecret,
		Algorithm: totp.SHA1,
		Digits:    6,
		Period:    30,
	}
}

func TestCredential_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(c *registry.Credential)
		wantErr error
	}{
		{"valid", func(c *registry.Credential) {}, nil},
		{"empty name", func(c *registry.Credential) { c.Name = "" }, registry.ErrInvalidName},
		{"name too long", func(c *registry.Credential) { c.Name = strings.Repeat("a", 61) }, registry.ErrInvalidName},
		{"name of 60 multibyte chars", func(c *registry.Credential) { c.Name = strings.Repeat("é", 60) }, nil},
		{"issuer too long", func(c *registry.Credential) { c.Issuer = strings.Repeat("b", 61) }, registry.ErrInvalidCredential},
		{"bad secret", func(c *registry.Credential) { c.Secret = "!!!" }, totp.ErrInvalidSecret},
		{"empty secret", func(c *registry.Credential) { c.Secret = "" }, totp.ErrInvalidSecret},
		{"bad algorithm", func(c *registry.Credential) { c.Algorithm = totp.Algorithm(5) }, totp.ErrInvalidAlgorithm},
		{"five digits", func(c *registry.Credential) { c.Digits = 5 }, totp.ErrInvalidParameter},
		{"twelve digits", func(c *registry.Credential) { c.Digits = 12 }, totp.ErrInvalidParameter},
		{"zero period", func(c *registry.Credential) { c.Period = 0 }, totp.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validCredential()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, registry.ErrInvalidCredential)
		})
	}
}

func TestCredential_Normalize(t *testing.T) {
	t.Parallel()
	c := registry.Credential{
		ID:     " id-1 ",
		Name:   "  Café  ",
		Issuer: " ACME ",
		Secret: "jbsw y3dp ehpk 3pxp",
	}.Normalize()

	assert.Equal(t, "id-1", c.ID)
	assert.Equal(t, "Caf\u00e9", c.Name, "combining accent folds to NFC")
	assert.Equal(t, "ACME", c.Issuer)
	assert.Equal(t, testSecret, c.Secret)
}

func TestCredential_Label(t *testing.T) {
	t.Parallel()
	c := validCredential()
	assert.Equal(t, "Example (alice@example.com)", c.Label())
	c.Issuer = ""
	assert.Equal(t, "alice@example.com", c.Label())
}

func TestCredential_SameParams(t *testing.T) {
	t.Parallel()
	a := validCredential()
	b := a
	b.Name = "renamed"
	assert.True(t, a.SameParams(b))
	b.Period = 60
	assert.False(t, a.SameParams(b))
}

func TestPreset(t *testing.T) {
	t.Parallel()

	p, err := registry.ParsePreset("github")
	require.NoError(t, err)
	assert.Equal(t, registry.PresetGitHub, p)

	p, err = registry.ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, registry.PresetOther, p)

	_, err = registry.ParsePreset("Okta")
	require.ErrorIs(t, err, registry.ErrUnsupportedPreset)

	c := registry.PresetGoogle.Apply(registry.Credential{Algorithm: totp.SHA512, Digits: 8, Period: 60})
	assert.Equal(t, totp.SHA1, c.Algorithm)
	assert.Equal(t, 6, c.Digits)
	assert.Equal(t, 30, c.Period)
	assert.Equal(t, registry.PresetGoogle, c.Preset)

	c = registry.PresetOther.Apply(registry.Credential{Algorithm: totp.SHA512, Digits: 8})
	assert.Equal(t, totp.SHA512, c.Algorithm)
	assert.Equal(t, 8, c.Digits)
	assert.Equal(t, 30, c.Period)
	assert.Empty(t, c.Preset)
}

func TestCredential_PresetField(t *testing.T) {
	t.Parallel()
	c := validCredential()
	c.Preset = "microsoft"
	c = c.Normalize()
	assert.Equal(t, registry.PresetMicrosoft, c.Preset)
	require.NoError(t, c.Validate())

	c.Preset = "Okta"
	err := c.Normalize().Validate()
	require.ErrorIs(t, err, registry.ErrInvalidCredential)
	require.ErrorIs(t, err, registry.ErrUnsupportedPreset)
}
