package countdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authenticator/pkg/logger"
	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// Overlay is the derived, never persisted display state of one credential.
type Overlay struct {
	ID        string
	Label     string
	Code      string        // zero-padded; empty when never computed or the last derivation failed
	Progress  float64       // elapsed fraction of the current step, [0,1)
	Remaining time.Duration // time until the code rotates
	Running   bool
	Err       error // last derivation error
}

type entry struct {
	cred       registry.Credential
	state      State
	code       string
	counter    uint64
	hasCounter bool
	progress   float64
	remaining  time.Duration
	err        error
}

func (e *entry) overlay() Overlay {
	return Overlay{
		ID:        e.cred.ID,
		Label:     e.cred.Label(),
		Code:      e.code,
		Progress:  e.progress,
		Remaining: e.remaining,
		Running:   e.state == Running,
		Err:       e.err,
	}
}

func (e *entry) reset() {
	e.code, e.err = "", nil
	e.counter, e.hasCounter = 0, false
	e.progress, e.remaining = 0, 0
}

// Scheduler drives code refresh for every Running credential from one shared ticker.
// All state is guarded by mu. Updates are published under pub, which is taken
// before mu is released, so subscribers see them in the order they were built.
type Scheduler struct {
	entries []*entry
	index   map[string]*entry
	running int

	now        func() time.Time
	interval   time.Duration
	engine     Engine
	logger     *slog.Logger
	feedBuffer int
	feed       *feed

	cancel context.CancelFunc
	closed bool
	mu     sync.Mutex
	pub    sync.Mutex
}

// New returns a scheduler with no credentials and no ticker.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		index:      make(map[string]*entry),
		now:        time.Now,
		interval:   DefaultInterval,
		engine:     totp.Compute,
		logger:     logger.Discard(),
		feedBuffer: DefaultFeedBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.feed = newFeed(s.feedBuffer)
	return s
}

// Sync replaces the working list. Surviving IDs keep their state; running entries
// whose derivation parameters changed are recomputed at once, stopped ones are reset.
func (s *Scheduler) Sync(creds []registry.Credential) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	now := s.now()
	entries := make([]*entry, 0, len(creds))
	index := make(map[string]*entry, len(creds))
	running := 0
	for _, c := range creds {
		if _, dup := index[c.ID]; dup {
			continue
		}
		e, ok := s.index[c.ID]
		if !ok {
			e = &entry{cred: c}
		} else {
			changed := !e.cred.SameParams(c)
			e.cred = c
			if changed {
				if e.state == Running {
					s.refresh(e, now, true)
				} else {
					e.reset()
				}
			}
		}
		if e.state == Running {
			running++
		}
		entries = append(entries, e)
		index[c.ID] = e
	}

	s.entries, s.index = entries, index
	s.setRunning(running)
	s.publishLocked(now)
}

// Start moves a Stopped credential to Running and computes its code immediately.
func (s *Scheduler) Start(id string) error {
	_, err := s.apply(id, func(State) Event { return EventStart })
	return err
}

// Stop moves a Running credential to Stopped. Its last code and progress are kept
// as they were and are no longer refreshed.
func (s *Scheduler) Stop(id string) error {
	_, err := s.apply(id, func(State) Event { return EventStop })
	return err
}

// Toggle starts a stopped credential or stops a running one and reports the new state.
func (s *Scheduler) Toggle(id string) (State, error) {
	return s.apply(id, func(current State) Event {
		if canFire(current, EventStart) {
			return EventStart
		}
		return EventStop
	})
}

// apply fires the event chosen by pick for the credential's current state.
func (s *Scheduler) apply(id string, pick func(State) Event) (State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Stopped, ErrSchedulerClosed
	}
	e, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return Stopped, errors.Join(ErrUnknownCredential, fmt.Errorf("id %q", id))
	}
	ev := pick(e.state)
	next, err := fire(id, e.state, ev)
	if err != nil {
		s.mu.Unlock()
		return e.state, err
	}

	now := s.now()
	e.state = next
	switch next {
	case Running:
		s.refresh(e, now, true)
		s.setRunning(s.running + 1)
	case Stopped:
		s.setRunning(s.running - 1)
	}
	s.logger.Debug("credential state changed",
		logger.CredentialID(id),
		logger.Event(string(ev)),
		slog.String("state", next.String()),
	)
	s.publishLocked(now)
	return next, nil
}

// Tick refreshes every Running credential against the same timestamp.
// Stopped credentials are not touched and the engine is not called for them.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	if s.closed || s.running == 0 {
		s.mu.Unlock()
		return
	}
	for _, e := range s.entries {
		if e.state == Running {
			s.refresh(e, now, false)
		}
	}
	s.publishLocked(now)
}

// refresh updates progress and, when the time step changed or no code is held,
// derives a new code. A derivation error blanks the code of this entry only.
func (s *Scheduler) refresh(e *entry, now time.Time, force bool) {
	period := e.cred.Period
	if period < 1 {
		s.fail(e, errors.Join(totp.ErrInvalidParameter, fmt.Errorf("period must be positive, got %d", period)))
		return
	}

	stepMillis := int64(period) * 1000
	elapsed := now.UnixMilli() % stepMillis
	if elapsed < 0 {
		elapsed += stepMillis
	}
	e.progress = float64(elapsed) / float64(stepMillis)
	e.remaining = time.Duration(stepMillis-elapsed) * time.Millisecond

	at := now.Unix()
	var counter uint64
	if at >= 0 {
		counter = totp.Counter(at, period)
	}
	if !force && at >= 0 && e.code != "" && e.hasCounter && e.counter == counter {
		return
	}

	code, err := s.engine(e.cred.Secret, e.cred.Algorithm, e.cred.Digits, period, at)
	if err != nil {
		s.fail(e, err)
		return
	}
	e.code, e.err = code, nil
	e.counter, e.hasCounter = counter, true
	s.logger.Debug("code derived", logger.CredentialID(e.cred.ID), logger.Counter(counter))
}

func (s *Scheduler) fail(e *entry, err error) {
	if e.err == nil {
		s.logger.Warn("code derivation failed",
			logger.CredentialID(e.cred.ID),
			logger.Algorithm(e.cred.Algorithm),
			logger.Error(err),
		)
	}
	e.code, e.err = "", err
	e.counter, e.hasCounter = 0, false
}

// setRunning starts the shared ticker on 0 -> n and releases it on n -> 0.
func (s *Scheduler) setRunning(n int) {
	prev := s.running
	s.running = max(n, 0)
	switch {
	case prev == 0 && s.running > 0:
		s.startTicker()
	case s.running == 0:
		s.stopTicker()
	}
}

func (s *Scheduler) startTicker() {
	if s.cancel != nil || s.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop(ctx, s.interval)
	s.logger.Debug("ticker started", logger.Running(s.running), logger.Duration(s.interval))
}

// stopTicker is idempotent. It does not wait for the loop, which may be blocked on s.mu.
func (s *Scheduler) stopTicker() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.logger.Debug("ticker stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Ticking reports whether the shared ticker is active.
func (s *Scheduler) Ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Snapshot returns the overlay of every credential in list order.
func (s *Scheduler) Snapshot() []Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Overlay returns the overlay of one credential.
func (s *Scheduler) Overlay(id string) (Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.index[id]
	if !ok {
		return Overlay{}, errors.Join(ErrUnknownCredential, fmt.Errorf("id %q", id))
	}
	return e.overlay(), nil
}

// Subscribe returns a feed of updates published after every tick, state change and sync.
// The subscription ends when ctx is cancelled or the scheduler is closed.
func (s *Scheduler) Subscribe(ctx context.Context) Subscriber {
	return s.feed.subscribe(ctx)
}

// Close releases the ticker and closes every subscriber. It is idempotent.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopTicker()
	s.mu.Unlock()

	s.feed.close()
	return nil
}

func (s *Scheduler) snapshotLocked() []Overlay {
	out := make([]Overlay, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.overlay())
	}
	return out
}

// publishLocked builds the update under mu and releases mu. The feed never
// blocks, so holding pub while publishing only orders concurrent publishers.
func (s *Scheduler) publishLocked(now time.Time) {
	u := Update{At: now, Overlays: s.snapshotLocked()}
	s.pub.Lock()
	s.mu.Unlock()
	defer s.pub.Unlock()
	s.feed.publish(u)
}
