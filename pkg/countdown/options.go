package countdown

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

const (
	DefaultInterval   = time.Second
	DefaultFeedBuffer = 16
)

// Engine derives the code for the step containing atUnixSeconds.
// totp.Compute is the production implementation.
type Engine func(secret string, alg totp.Algorithm, digits, period int, atUnixSeconds int64) (string, error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now for immediate computations and the ticker loop.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInterval sets the shared ticker cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngine swaps the code derivation, mostly for tests that count calls.
func WithEngine(e Engine) Option {
	return func(s *Scheduler) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithFeedBuffer sets the per-subscriber channel buffer.
func WithFeedBuffer(n int) Option {
	return func(s *Scheduler) {
		s.feedBuffer = n
	}
}
