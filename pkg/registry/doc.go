// Package registry stores the user's TOTP credential configurations.
//
// The registry owns persisted fields only (ID, name, issuer, secret, algorithm,
// digits, period, timestamps). Anything derived from them – the current code,
// countdown progress, whether a credential is being refreshed – lives in the
// countdown package and is never written back here.
//
// # Architecture
//
// Store is the CRUD contract. KVStore implements it by keeping the whole list as
// one JSON document under a single key of a KV collaborator, which mirrors how
// mobile authenticators persist their list and lets any key-value backend serve
// as storage:
//
//   • MemoryKV – in-process map, for tests and throwaway sessions
//   • pkg/sqlite, pkg/redis, pkg/pg, pkg/mongo – durable backends
//
// Mutations validate first (Credential.Validate), then read, modify and write the
// document under a mutex. When a seal key is configured, secrets are encrypted
// per credential with totp.SealSecret before they reach the KV.
//
// Import and Export move credentials in and out as versioned JSON or YAML
// documents. Algorithms are written with their canonical token (SHA1, SHA256,
// SHA512) and both spellings are accepted on input.
//
// # Usage
//
//	store := registry.NewKVStore(registry.NewMemoryKV())
//	c, err := store.Add(ctx, registry.PresetGitHub.Apply(registry.Credential{
//	    Name:   "octocat",
//	    Secret: "JBSWY3DPEHPK3PXP",
//	}))
//
// # Error Handling
//
// Errors wrap package sentinels (ErrNotFound, ErrDuplicateID, ErrInvalidCredential,
// ErrFailedToLoad, ErrFailedToSave ...) with errors.Join; validation failures also
// carry the totp sentinel that caused them, e.g. totp.ErrInvalidSecret.
package registry
