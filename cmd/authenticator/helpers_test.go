package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/countdown"
	"github.com/dmitrymomot/authenticator/pkg/registry"
)

func TestParseInstant(t *testing.T) {
	t.Parallel()
	got, err := parseInstant("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseInstant("1234567890")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), got.Unix())

	got, err = parseInstant("2009-02-13T23:31:30Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), got.Unix())

	_, err = parseInstant("yesterday")
	require.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		explicit, path string
		want           registry.Format
	}{
		{"", "", registry.FormatJSON},
		{"", "backup.yml", registry.FormatYAML},
		{"", "backup.YAML", registry.FormatYAML},
		{"", "backup.txt", registry.FormatJSON},
		{"yaml", "backup.json", registry.FormatYAML},
	}
	for _, tt := range tests {
		got, err := formatFor(tt.explicit, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "explicit=%q path=%q", tt.explicit, tt.path)
	}

	_, err := formatFor("toml", "")
	require.ErrorIs(t, err, registry.ErrUnsupportedFormat)
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[....................]", progressBar(0))
	assert.Equal(t, "[##########..........]", progressBar(0.5))
	assert.Equal(t, "[####################]", progressBar(1.5))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	creds := []registry.Credential{
		{ID: "1", Name: "alice", Issuer: "ACME"},
		{ID: "2", Name: "Alice", Issuer: "Initech"},
		{ID: "3", Name: "bob"},
	}

	got, err := resolve(creds, "3")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Name)

	got, err = resolve(creds, "BOB")
	require.NoError(t, err)
	assert.Equal(t, "3", got.ID)

	got, err = resolve(creds, "acme (alice)")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = resolve(creds, "alice")
	require.ErrorIs(t, err, ErrAmbiguousReference)

	_, err = resolve(creds, "carol")
	require.ErrorIs(t, err, registry.ErrNotFound)

	all, err := filter(creds, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRenderOverlays(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	at := time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC)
	renderOverlays(&buf, at, []countdown.Overlay{
		{ID: "1", Label: "ACME (alice)", Code: "123456", Progress: 0.5, Remaining: 15 * time.Second, Running: true},
		{ID: "2", Label: "stopped", Code: "654321"},
		{ID: "3", Label: "broken", Running: true, Err: errors.New("bad secret")},
	})

	out := buf.String()
	assert.Contains(t, out, "12:00:05")
	assert.Contains(t, out, "123456  [##########..........] 15s")
	assert.NotContains(t, out, "stopped")
	assert.Contains(t, out, "error: bad secret")
}
