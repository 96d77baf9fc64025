package authenticator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/authenticator/pkg/countdown"
	"github.com/dmitrymomot/authenticator/pkg/logger"
	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// Service binds the credential registry to the countdown scheduler.
// Every mutation persists first, then re-syncs the scheduler and returns the new list.
type Service interface {
	// Registry
	Load(ctx context.Context) ([]registry.Credential, error)
	List() []registry.Credential
	Get(ctx context.Context, id string) (registry.Credential, error)
	Add(ctx context.Context, c registry.Credential) ([]registry.Credential, error)
	Update(ctx context.Context, c registry.Credential) ([]registry.Credential, error)
	Delete(ctx context.Context, id string) ([]registry.Credential, error)
	Replace(ctx context.Context, creds []registry.Credential) ([]registry.Credential, error)
	Clear(ctx context.Context) error

	// Refresh
	Start(id string) error
	Stop(id string) error
	Toggle(id string) (countdown.State, error)
	StartAll() error
	Snapshot() []countdown.Overlay
	Subscribe(ctx context.Context) countdown.Subscriber

	// One-shot derivation, independent of the refresh state
	Codes(at time.Time) []Code
	Verify(ctx context.Context, id, code string, at time.Time) (bool, error)

	// Transfer
	Export(ctx context.Context, w io.Writer, format registry.Format) error
	Import(ctx context.Context, r io.Reader, format registry.Format, mode ImportMode) ([]registry.Credential, error)

	Close() error
}

// Scheduler is the part of *countdown.Scheduler the service drives.
type Scheduler interface {
	Sync(creds []registry.Credential)
	Start(id string) error
	Stop(id string) error
	Toggle(id string) (countdown.State, error)
	Snapshot() []countdown.Overlay
	Subscribe(ctx context.Context) countdown.Subscriber
	Close() error
}

var _ Scheduler = (*countdown.Scheduler)(nil)

// Code is a code derived on demand for one credential.
type Code struct {
	Credential registry.Credential
	Code       string
	Remaining  time.Duration
	Err        error
}

// ImportMode selects how imported credentials meet the stored ones.
type ImportMode uint8

const (
	// ImportMerge overwrites credentials with the same ID and appends the rest.
	ImportMerge ImportMode = iota
	// ImportReplace discards the stored list.
	ImportReplace
)

type service struct {
	store     registry.Store
	scheduler Scheduler
	logger    *slog.Logger
	now       func() time.Time
	skew      uint

	creds []registry.Credential
	mu    sync.RWMutex
}

// NewService panics if store or scheduler is nil to fail fast during wiring.
func NewService(store registry.Store, scheduler Scheduler, opts ...ServiceOption) Service {
	if store == nil {
		panic("authenticator: registry store is required")
	}
	if scheduler == nil {
		panic("authenticator: scheduler is required")
	}

	s := &service{
		store:     store,
		scheduler: scheduler,
		logger:    logger.Discard(),
		now:       time.Now,
		skew:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the registry and hands the list to the scheduler.
func (s *service) Load(ctx context.Context) ([]registry.Credential, error) {
	creds, err := s.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(creds)
	s.logger.InfoContext(ctx, "credentials loaded", slog.Int("count", len(creds)))
	return slices.Clone(creds), nil
}

func (s *service) List() []registry.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.creds)
}

func (s *service) Get(ctx context.Context, id string) (registry.Credential, error) {
	return s.store.Get(ctx, id)
}

func (s *service) Add(ctx context.Context, c registry.Credential) ([]registry.Credential, error) {
	added, err := s.store.Add(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "credential added", logger.CredentialID(added.ID), logger.Algorithm(added.Algorithm))
	return s.reload(ctx)
}

func (s *service) Update(ctx context.Context, c registry.Credential) ([]registry.Credential, error) {
	if _, err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "credential updated", logger.CredentialID(c.ID))
	return s.reload(ctx)
}

func (s *service) Delete(ctx context.Context, id string) ([]registry.Credential, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "credential deleted", logger.CredentialID(id))
	return s.reload(ctx)
}

func (s *service) Replace(ctx context.Context, creds []registry.Credential) ([]registry.Credential, error) {
	saved, err := s.store.Replace(ctx, creds)
	if err != nil {
		return nil, err
	}
	s.publish(saved)
	return slices.Clone(saved), nil
}

func (s *service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.publish(nil)
	s.logger.InfoContext(ctx, "credentials cleared")
	return nil
}

func (s *service) Start(id string) error { return s.scheduler.Start(id) }

func (s *service) Stop(id string) error { return s.scheduler.Stop(id) }

func (s *service) Toggle(id string) (countdown.State, error) { return s.scheduler.Toggle(id) }

// StartAll starts every credential that is not running yet.
func (s *service) StartAll() error {
	var errs []error
	for _, o := range s.scheduler.Snapshot() {
		if o.Running {
			continue
		}
		if err := s.scheduler.Start(o.ID); err != nil && !countdown.IsTransitionError(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) Snapshot() []countdown.Overlay { return s.scheduler.Snapshot() }

func (s *service) Subscribe(ctx context.Context) countdown.Subscriber {
	return s.scheduler.Subscribe(ctx)
}

// Codes derives the code of every credential at the given instant.
// A zero time means now. Failures are reported per credential.
// It reads the registry and calls the TOTP engine directly; the scheduler and
// its overlays are left untouched, whatever the credentials' refresh state.
func (s *service) Codes(at time.Time) []Code {
	if at.IsZero() {
		at = s.now()
	}
	creds := s.List()
	out := make([]Code, 0, len(creds))
	for _, c := range creds {
		code, err := totp.Generate(c.Params(), at)
		out = append(out, Code{
			Credential: c,
			Code:       code,
			Remaining:  totp.Remaining(at, c.Period),
			Err:        err,
		})
	}
	return out
}

// Verify checks a code typed by the user against one credential, allowing one
// step of clock drift by default.
func (s *service) Verify(ctx context.Context, id, code string, at time.Time) (bool, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if at.IsZero() {
		at = s.now()
	}
	return totp.Verify(c.Params(), code, at, s.skew)
}

func (s *service) Export(ctx context.Context, w io.Writer, format registry.Format) error {
	creds, err := s.store.Entries(ctx)
	if err != nil {
		return err
	}
	if err := registry.Export(w, creds, format); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "credentials exported", slog.Int("count", len(creds)), slog.String("format", string(format)))
	return nil
}

func (s *service) Import(ctx context.Context, r io.Reader, format registry.Format, mode ImportMode) ([]registry.Credential, error) {
	imported, err := registry.Import(r, format)
	if err != nil {
		return nil, err
	}
	if len(imported) == 0 {
		return nil, ErrNothingToImport
	}

	next := imported
	if mode == ImportMerge {
		current, err := s.store.Entries(ctx)
		if err != nil {
			return nil, err
		}
		next = merge(current, imported)
	}

	saved, err := s.store.Replace(ctx, next)
	if err != nil {
		return nil, err
	}
	s.publish(saved)
	s.logger.InfoContext(ctx, "credentials imported", slog.Int("count", len(imported)), slog.String("format", string(format)))
	return slices.Clone(saved), nil
}

// Close stops the scheduler. The store is owned by the caller.
func (s *service) Close() error {
	return s.scheduler.Close()
}

func (s *service) reload(ctx context.Context) ([]registry.Credential, error) {
	creds, err := s.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(creds)
	return slices.Clone(creds), nil
}

func (s *service) publish(creds []registry.Credential) {
	s.mu.Lock()
	s.creds = slices.Clone(creds)
	s.mu.Unlock()
	s.scheduler.Sync(creds)
}

// merge overwrites entries of current that share an ID with imported and appends the rest.
func merge(current, imported []registry.Credential) []registry.Credential {
	out := slices.Clone(current)
	for _, c := range imported {
		if c.ID != "" {
			if i := slices.IndexFunc(out, func(e registry.Credential) bool { return e.ID == c.ID }); i >= 0 {
				c.CreatedAt = out[i].CreatedAt
				out[i] = c
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
