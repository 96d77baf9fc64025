package authenticator

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used when Codes or Verify get a zero time.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithVerifySkew sets how many adjacent steps Verify accepts on each side.
func WithVerifySkew(steps uint) ServiceOption {
	return func(s *service) {
		s.skew = steps
	}
}
