package subscription

import "errors"

var (
	ErrUnknownPlan         = errors.New("subscription: unknown plan")
	ErrPlanNotPurchasable  = errors.New("subscription: plan cannot be purchased")
	ErrAccountNotFound     = errors.New("subscription: account not found")
	ErrInvalidInfo         = errors.New("subscription: invalid subscription info")
	ErrFailedToLoadInfo    = errors.New("subscription: failed to load subscription info")
	ErrFailedToSaveInfo    = errors.New("subscription: failed to save subscription info")
	ErrTrialAlreadyStarted = errors.New("subscription: free trial start is immutable")
)
