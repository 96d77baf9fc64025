// Package countdown keeps the displayed TOTP codes of a credential list fresh.
//
// Every credential is either Stopped (the initial state) or Running. Only Running
// credentials are refreshed: one shared ticker, started when the first credential
// starts and released when the last one stops, calls Tick with a single captured
// timestamp so that credentials sharing a period roll over together.
//
// A tick recomputes progress (the elapsed fraction of the current step) for each
// Running credential and calls the engine only when the time-step counter changed
// or no code is held. A failing credential shows no code and carries the error in
// its Overlay; the other credentials are unaffected.
//
// The derived Overlay is never written back to the registry. Callers read it with
// Snapshot or Overlay, or follow it through Subscribe, which publishes an Update
// after every tick, state change and Sync. Slow subscribers are dropped instead of
// blocking the ticker.
//
// Tests drive the scheduler with Tick and a fixed clock:
//
//	s := countdown.New(countdown.WithClock(func() time.Time { return at }))
//	defer s.Close()
//	s.Sync(creds)
//	_ = s.Start(creds[0].ID)
//	s.Tick(at.Add(time.Second))
//	fmt.Println(s.Snapshot()[0].Code)
package countdown
