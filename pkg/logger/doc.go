// Package logger builds the *slog.Logger shared by the authenticator packages.
//
// New applies Option functions on top of a JSON-at-INFO-on-stderr default and
// returns a logger whose handler is wrapped by LogHandlerDecorator. The
// decorator does two things on every record:
//
//   • runs the registered ContextExtractor callbacks and appends their
//     attributes (WithContextValue covers the common "value under a key" case;
//     the CLI uses it to tag records with the running command);
//   • masks attributes whose key is listed in DefaultRedactedKeys or added with
//     WithRedactedKeys. Credential secrets and the master key are never written,
//     even when nested in a group or attached with Logger.With.
//
// WithEnvironment picks text output at DEBUG for "development" and JSON at INFO
// for "production". Libraries in this module take a *slog.Logger through their
// own options and fall back to Discard.
//
// attr.go keeps attribute names consistent: CredentialID, Algorithm, Counter,
// Running, Backend, Duration, Component and Event. Error and Errors return an
// empty attribute for nil errors, so
//
//	log.Warn("code derivation failed", logger.CredentialID(id), logger.Error(err))
//
// needs no nil check.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "authenticator"),
//	    logger.WithLevel(cfg.LogLevel),
//	    logger.WithContextValue("command", commandKey{}),
//	)
//	scheduler := countdown.New(countdown.WithLogger(log.With(logger.Component("countdown"))))
package logger
