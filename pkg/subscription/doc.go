// Package subscription models the per-account subscription lifecycle: the free trial, the paid
// PRO plans and the premium gate derived from them.
//
// # Model
//
// Every account owns exactly one Info record. It starts on PlanBasic with the free trial clock
// running from account creation. Paid plans are activated or extended only by an approved manual
// payment (see package payment), which calls Extend.
//
// Nothing derived is persisted. Evaluate is a pure function of (Info, now) and is the single place
// where trial status, activity, premium access and remaining days are computed:
//
//	state := subscription.Evaluate(info, now)
//	if !state.IsAllowedPremium {
//		return access.ErrForbidden
//	}
//
// # Rules
//
//   - The trial lasts DefaultTrialPeriod (14 days) from FreeTrialStartedAt. FinishedFreeTrial ends it
//     early; crossing the window ends it on its own.
//   - A paid plan is active while now is before ExpirationDate.
//   - Premium access is allowed while the plan is active or the trial is running. PlanBasic is
//     always allowed.
//   - RemainingDays counts started days until expiration and is never negative.
//   - Extend stacks: the new expiration is max(now, current expiration) + plan duration, and the
//     first approval ends the trial.
//
// # Service
//
// Service loads Info from a Store and evaluates it against an injected clock.Clock, so the premium
// check is always recomputed at call time:
//
//	svc := subscription.NewService(store, subscription.WithClock(clock.System()))
//	state, err := svc.Evaluate(ctx, accountID)
//
// IsAllowedPremium fails closed: storage errors deny access and are logged.
package subscription
