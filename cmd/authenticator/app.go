package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrymomot/authenticator/pkg/countdown"
	"github.com/dmitrymomot/authenticator/pkg/logger"
	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/svc/authenticator"
)

type commandKey struct{}

// app holds everything a subcommand needs once the root command has run its setup.
type app struct {
	cfg     Config
	log     *slog.Logger
	svc     authenticator.Service
	ping    func(context.Context) error
	closers []func() error
}

func newApp(ctx context.Context, envFiles ...string) (*app, error) {
	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return nil, err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "authenticator"),
		logger.WithLevel(cfg.LogLevel),
		logger.WithOutput(os.Stderr),
		logger.WithContextValue("command", commandKey{}),
	)

	a := &app{cfg: cfg, log: log}
	if err := a.open(ctx); err != nil {
		return nil, errors.Join(err, a.close())
	}
	return a, nil
}

func (a *app) open(ctx context.Context) error {
	sealKey, err := a.cfg.SealKey()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, b.close)
	a.ping = b.ping

	store := registry.NewKVStore(b.kv,
		registry.WithKey(a.cfg.RegistryKey),
		registry.WithSealKey(sealKey),
		registry.WithLogger(a.log.With(logger.Component("registry"))),
	)
	scheduler := countdown.New(
		countdown.WithInterval(a.cfg.TickInterval),
		countdown.WithLogger(a.log.With(logger.Component("countdown"))),
	)
	a.svc = authenticator.NewService(store, scheduler,
		authenticator.WithLogger(a.log.With(logger.Component("authenticator"))),
	)
	a.closers = append(a.closers, a.svc.Close)

	_, err = a.svc.Load(ctx)
	return err
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
