package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// CredentialID records the credential identifier under the key "credential_id".
func CredentialID(id string) slog.Attr {
	return slog.String("credential_id", id)
}

// Algorithm records the HMAC algorithm under the key "algorithm".
// Accepts anything with a String method so callers can pass totp.Algorithm directly.
func Algorithm(alg interface{ String() string }) slog.Attr {
	if alg == nil {
		return slog.Attr{}
	}
	return slog.String("algorithm", alg.String())
}

// Counter records the TOTP time step under the key "counter".
func Counter(step uint64) slog.Attr {
	return slog.Uint64("counter", step)
}

// Running records how many credentials are being refreshed.
func Running(n int) slog.Attr {
	return slog.Int("running", n)
}

// Backend records the storage backend name under the key "backend".
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
