// Package clock supplies the current instant to code that must stay deterministic under test.
//
// Lifecycle decisions in this module are pure functions of (state, now). Services receive a
// Clock through an option and default to System, while tests use Fixed or Mock to travel in time:
//
//	c := clock.NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	svc := subscription.NewService(store, subscription.WithClock(c))
//	c.Advance(25 * time.Hour)
package clock
