// Package authenticator is the application service of the authenticator.
//
// It owns no state of its own beyond a read view of the credential list: the
// registry persists configurations and the countdown scheduler derives codes.
// Each mutation (Add, Update, Delete, Replace, Import, Clear) is written to the
// registry first; the fresh list is then handed to the scheduler, which keeps the
// refresh state of surviving credentials, and returned to the caller.
//
//	store := registry.NewKVStore(kv, registry.WithSealKey(key))
//	sched := countdown.New(countdown.WithLogger(log))
//	svc := authenticator.NewService(store, sched, authenticator.WithLogger(log))
//	defer svc.Close()
//
//	if _, err := svc.Load(ctx); err != nil {
//	    return err
//	}
//	_ = svc.StartAll()
//	sub := svc.Subscribe(ctx)
//	for u := range sub.Receive() {
//	    render(u.Overlays)
//	}
//
// Codes and Verify derive codes on demand at a given instant, regardless of
// whether a credential is running.
package authenticator
