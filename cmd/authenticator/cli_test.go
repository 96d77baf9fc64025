package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

// useSQLite points the CLI at a fresh database file and returns its path.
func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authenticator.db")
	t.Setenv("AUTHENTICATOR_STORAGE", StorageSQLite)
	t.Setenv("AUTHENTICATOR_SQLITE_PATH", path)
	t.Setenv("AUTHENTICATOR_LOG_LEVEL", "error")
	unsetEnv(t, "TOTP_ENCRYPTION_KEY", "AUTHENTICATOR_REGISTRY_KEY", "AUTHENTICATOR_TICK_INTERVAL")
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runErr(args...)
	require.NoError(t, err, "authenticator %s\n%s", strings.Join(args, " "), out)
	return out
}

func runErr(args ...string) (string, error) {
	var buf bytes.Buffer
	err := execute(context.Background(), args, &buf)
	return buf.String(), err
}

func TestCLI_Lifecycle(t *testing.T) {
	useSQLite(t)

	id := strings.TrimSpace(run(t, "add", "alice@example.com", "--issuer", "ACME", "--secret", rfcSecret, "--digits", "8"))
	require.NotEmpty(t, id)

	list := run(t, "list")
	assert.Contains(t, list, id)
	assert.Contains(t, list, "ACME (alice@example.com)")
	assert.Contains(t, list, "SHA1")

	assert.Contains(t, run(t, "code", "--at", "59"), "94287082")
	assert.Contains(t, run(t, "code", "alice@example.com", "--at", "1970-01-01T00:00:59Z"), "94287082")

	run(t, "edit", "ACME (alice@example.com)", "--digits", "6")
	assert.Contains(t, run(t, "code", id, "--at", "59"), "287082")

	assert.Contains(t, run(t, "verify", id, "287082", "--at", "59"), "valid")
	assert.Contains(t, run(t, "verify", id, "287082", "--at", "89"), "valid", "one step of drift is accepted")
	_, err := runErr("verify", id, "000000", "--at", "59")
	require.Error(t, err)

	run(t, "rm", "alice@example.com")
	assert.NotContains(t, run(t, "list"), id)
}

func TestCLI_AddValidation(t *testing.T) {
	useSQLite(t)

	_, err := runErr("add", "bad", "--secret", "!!!")
	require.ErrorIs(t, err, registry.ErrInvalidCredential)

	_, err = runErr("add", "bad", "--secret", rfcSecret, "--algorithm", "MD5")
	require.ErrorIs(t, err, totp.ErrInvalidAlgorithm)

	_, err = runErr("add", "bad", "--secret", rfcSecret, "--digits", "4")
	require.ErrorIs(t, err, registry.ErrInvalidCredential)

	_, err = runErr("add", "bad", "--secret", rfcSecret, "--preset", "Nope")
	require.ErrorIs(t, err, registry.ErrUnsupportedPreset)

	assert.NotContains(t, run(t, "list"), "bad")
}

func TestCLI_PresetAndGenerate(t *testing.T) {
	useSQLite(t)

	run(t, "add", "octocat", "--preset", "github", "--digits", "8", "--secret", rfcSecret)
	assert.Contains(t, run(t, "code", "octocat", "--at", "59"), "287082", "named presets override the shape")

	out := run(t, "add", "fresh", "--generate")
	assert.Contains(t, out, "secret ")
	_, err := runErr("add", "both", "--generate", "--secret", rfcSecret)
	require.Error(t, err)
}

func TestCLI_Resolve(t *testing.T) {
	useSQLite(t)
	run(t, "add", "alice", "--issuer", "ACME", "--secret", rfcSecret)
	run(t, "add", "alice", "--issuer", "Initech", "--secret", rfcSecret)

	_, err := runErr("code", "alice")
	require.ErrorIs(t, err, ErrAmbiguousReference)

	_, err = runErr("code", "bob")
	require.ErrorIs(t, err, registry.ErrNotFound)

	assert.Contains(t, run(t, "code", "initech (alice)", "--at", "59"), "287082")

	_, err = runErr("code", "--copy")
	require.Error(t, err)
}

func TestCLI_ExportImport(t *testing.T) {
	useSQLite(t)
	run(t, "add", "alice", "--issuer", "ACME", "--secret", rfcSecret, "--digits", "8", "--algorithm", "SHA-256")

	export := filepath.Join(t.TempDir(), "backup.yaml")
	run(t, "export", "-o", export)
	assert.Contains(t, run(t, "export", "--format", "yaml"), "algorithm: SHA256")

	// A second, empty registry.
	useSQLite(t)
	assert.Contains(t, run(t, "import", export), "1 credentials stored")
	assert.Contains(t, run(t, "import", export), "1 credentials stored", "merging keeps IDs unique")

	code, err := totp.Compute(rfcSecret, totp.SHA256, 8, 30, 1234567890)
	require.NoError(t, err)
	assert.Contains(t, run(t, "code", "--at", "1234567890"), code)

	_, err = runErr("import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestCLI_SealedSecrets(t *testing.T) {
	useSQLite(t)
	key, err := totp.GenerateEncodedEncryptionKey()
	require.NoError(t, err)
	t.Setenv("TOTP_ENCRYPTION_KEY", key)

	run(t, "add", "alice", "--secret", rfcSecret)
	assert.Contains(t, run(t, "code", "--at", "59"), "287082")

	unsetEnv(t, "TOTP_ENCRYPTION_KEY")
	_, err = runErr("list")
	require.ErrorIs(t, err, registry.ErrFailedToLoad)
}

func TestCLI_Watch(t *testing.T) {
	useSQLite(t)
	t.Setenv("AUTHENTICATOR_TICK_INTERVAL", "20ms")

	_, err := runErr("watch", "--for", "50ms")
	require.Error(t, err, "nothing to watch")

	run(t, "add", "alice", "--issuer", "ACME", "--secret", rfcSecret)
	out := run(t, "watch", "--for", "200ms")
	assert.Contains(t, out, "ACME (alice)")
	assert.Contains(t, out, "[")
}

func TestCLI_Keygen(t *testing.T) {
	// keygen needs neither configuration nor storage.
	t.Setenv("AUTHENTICATOR_STORAGE", "invalid")

	out := run(t, "keygen")
	var key, secret string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok)
		switch k {
		case "TOTP_ENCRYPTION_KEY":
			key = v
		case "TOTP_SECRET":
			secret = v
		}
	}

	_, err := totp.ParseEncryptionKey(key)
	require.NoError(t, err)
	require.NoError(t, totp.ValidateSecret(secret))
}

func TestCLI_Health(t *testing.T) {
	useSQLite(t)
	run(t, "add", "alice", "--secret", rfcSecret)
	assert.Equal(t, "sqlite: ok, 1 credentials\n", run(t, "health"))

	t.Setenv("AUTHENTICATOR_STORAGE", StorageMemory)
	assert.Equal(t, "memory: ok, 0 credentials\n", run(t, "health"))
}

func TestCLI_InvalidStorage(t *testing.T) {
	t.Setenv("AUTHENTICATOR_STORAGE", "invalid")
	_, err := runErr("list")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
