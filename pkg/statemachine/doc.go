// Package statemachine provides a stateless finite state machine: a Table of transitions that
// computes the next state for a (current state, event) pair.
//
// The current state is not held by the machine. It lives with the entity (usually a database row)
// and is passed to Next, which makes a single Table safe to share between goroutines and requests:
//
//	table := statemachine.MustNew(
//		statemachine.WithTransition(pending, approved, approve,
//			statemachine.WithGuard(hasPaidPlan),
//			statemachine.WithAction(extendSubscription),
//		),
//		statemachine.WithTransition(pending, rejected, reject),
//	)
//
//	next, err := table.Next(ctx, current, approve, data)
//	if statemachine.IsNoTransitionAvailableError(err) {
//		// entity is already in a terminal state
//	}
//
// Several transitions may share a (from, event) pair; the first one whose guards all pass wins.
// Actions run in order after the guards and any action error aborts the transition.
package statemachine
