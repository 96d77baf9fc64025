package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authenticator/pkg/logger"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// DefaultKey is the KV key holding the serialized credential collection.
const DefaultKey = "totp_entries"

// InvalidAlgorithm marks a stored credential whose algorithm token could not be
// parsed. The engine rejects it, so only that credential shows no code.
const InvalidAlgorithm = totp.Algorithm(math.MaxUint8)

// Store is the registry contract consumed by the application service.
// Every mutation persists before returning.
type Store interface {
	Entries(ctx context.Context) ([]Credential, error)
	Get(ctx context.Context, id string) (Credential, error)
	Add(ctx context.Context, c Credential) (Credential, error)
	Update(ctx context.Context, c Credential) (Credential, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, creds []Credential) ([]Credential, error)
	Clear(ctx context.Context) error
}

// Compile-time interface satisfaction check.
var _ Store = (*KVStore)(nil)

// KVStore keeps the whole credential list as one JSON document under a single key.
// Mutations are read-modify-write and serialized by a mutex.
type KVStore struct {
	kv      KV
	key     string
	sealKey []byte
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	mu      sync.Mutex

	// Set by load and written back by save so that entries this version cannot
	// read survive unrelated mutations.
	rawAlgorithms map[string]string
	undecodable   []json.RawMessage
}

// Option configures a KVStore.
type Option func(*KVStore)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *KVStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSealKey enables AES-256-GCM sealing of secrets at rest. A nil key keeps
// secrets as plain Base32, which is also how unsealed documents are read back.
func WithSealKey(key []byte) Option {
	return func(s *KVStore) {
		s.sealKey = key
	}
}

// WithClock replaces time.Now for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *KVStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID v4 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *KVStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *KVStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewKVStore creates a registry on top of kv.
func NewKVStore(kv KV, opts ...Option) *KVStore {
	s := &KVStore{
		kv:     kv,
		key:    DefaultKey,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record is the persisted shape of a Credential.
type record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Issuer    string    `json:"issuer,omitempty"`
	Secret    string    `json:"secret"`
	Sealed    bool      `json:"sealed,omitempty"`
	Algorithm string    `json:"algorithm"`
	Digits    int       `json:"digits"`
	Period    int       `json:"period"`
	Preset    Preset    `json:"preset,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *KVStore) Entries(ctx context.Context) ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *KVStore) Get(ctx context.Context, id string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load(ctx)
	if err != nil {
		return Credential{}, err
	}
	idx := indexOf(creds, id)
	if idx < 0 {
		return Credential{}, errors.Join(ErrNotFound, fmt.Errorf("id %q", id))
	}
	return creds[idx], nil
}

// Add assigns an ID when empty, stamps timestamps and appends the credential.
func (s *KVStore) Add(ctx context.Context, c Credential) (Credential, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load(ctx)
	if err != nil {
		return Credential{}, err
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	if indexOf(creds, c.ID) >= 0 {
		return Credential{}, errors.Join(ErrDuplicateID, fmt.Errorf("id %q", c.ID))
	}

	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.save(ctx, append(creds, c)); err != nil {
		return Credential{}, err
	}

	s.logger.DebugContext(ctx, "credential added", logger.CredentialID(c.ID))
	return c, nil
}

// Update replaces the stored credential with the same ID, keeping CreatedAt.
func (s *KVStore) Update(ctx context.Context, c Credential) (Credential, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load(ctx)
	if err != nil {
		return Credential{}, err
	}
	idx := indexOf(creds, c.ID)
	if idx < 0 {
		return Credential{}, errors.Join(ErrNotFound, fmt.Errorf("id %q", c.ID))
	}

	c.CreatedAt = creds[idx].CreatedAt
	c.UpdatedAt = s.now()
	creds[idx] = c
	if err := s.save(ctx, creds); err != nil {
		return Credential{}, err
	}

	s.logger.DebugContext(ctx, "credential updated", logger.CredentialID(c.ID))
	return c, nil
}

func (s *KVStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(creds, id)
	if idx < 0 {
		return errors.Join(ErrNotFound, fmt.Errorf("id %q", id))
	}
	if err := s.save(ctx, slices.Delete(creds, idx, idx+1)); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "credential deleted", logger.CredentialID(id))
	return nil
}

// Replace swaps the whole collection in one write, unreadable stored entries
// included. Credentials without an ID get one; existing CreatedAt values are kept.
func (s *KVStore) Replace(ctx context.Context, creds []Credential) ([]Credential, error) {
	now := s.now()
	out := make([]Credential, 0, len(creds))
	seen := make(map[string]struct{}, len(creds))
	for i, c := range creds {
		c = c.Normalize()
		if c.ID == "" {
			c.ID = s.newID()
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("credential #%d: %w", i, err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, errors.Join(ErrDuplicateID, fmt.Errorf("id %q", c.ID))
		}
		seen[c.ID] = struct{}{}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		out = append(out, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rawAlgorithms, s.undecodable = nil, nil
	if err := s.save(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes the collection key only; other keys in the KV are untouched.
func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	s.rawAlgorithms, s.undecodable = nil, nil
	return nil
}

func (s *KVStore) load(ctx context.Context) ([]Credential, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	if len(raw) == 0 {
		return []Credential{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Join(ErrFailedToLoad, ErrCorruptCollection, err)
	}

	s.rawAlgorithms = make(map[string]string)
	s.undecodable = nil
	creds := make([]Credential, 0, len(items))
	for i, item := range items {
		var r record
		if err := json.Unmarshal(item, &r); err != nil || r.ID == "" {
			s.undecodable = append(s.undecodable, item)
			s.logger.WarnContext(ctx, "skipping unreadable stored credential",
				slog.Int("index", i), logger.Error(err))
			continue
		}

		alg, err := totp.ParseAlgorithm(r.Algorithm)
		if err != nil {
			s.rawAlgorithms[r.ID] = r.Algorithm
			alg = InvalidAlgorithm
			s.logger.WarnContext(ctx, "stored credential has an unsupported algorithm",
				logger.CredentialID(r.ID), slog.String("algorithm", r.Algorithm))
		}

		secret := r.Secret
		if r.Sealed {
			if s.sealKey == nil {
				return nil, errors.Join(ErrFailedToLoad, totp.ErrEncryptionKeyNotSet)
			}
			secret, err = totp.OpenSecret(r.Secret, s.sealKey, r.ID)
			if err != nil {
				return nil, errors.Join(ErrFailedToLoad, err)
			}
		}
		creds = append(creds, Credential{
			ID:        r.ID,
			Name:      r.Name,
			Issuer:    r.Issuer,
			Secret:    secret,
			Algorithm: alg,
			Digits:    r.Digits,
			Period:    r.Period,
			Preset:    r.Preset,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return creds, nil
}

func (s *KVStore) save(ctx context.Context, creds []Credential) error {
	items := make([]any, 0, len(creds)+len(s.undecodable))
	for _, c := range creds {
		alg := c.Algorithm.String()
		if raw, ok := s.rawAlgorithms[c.ID]; ok && !c.Algorithm.Valid() {
			alg = raw
		}
		r := record{
			ID:        c.ID,
			Name:      c.Name,
			Issuer:    c.Issuer,
			Secret:    c.Secret,
			Algorithm: alg,
			Digits:    c.Digits,
			Period:    c.Period,
			Preset:    c.Preset,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if s.sealKey != nil {
			sealed, err := totp.SealSecret(c.Secret, s.sealKey, c.ID)
			if err != nil {
				return errors.Join(ErrFailedToSave, err)
			}
			r.Secret, r.Sealed = sealed, true
		}
		items = append(items, r)
	}
	for _, item := range s.undecodable {
		items = append(items, item)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func indexOf(creds []Credential, id string) int {
	return slices.IndexFunc(creds, func(c Credential) bool { return c.ID == id })
}
