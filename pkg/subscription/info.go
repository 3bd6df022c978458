package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Info is the persisted subscription record of one account.
// SubscribedAt and ExpirationDate stay nil until the first approved payment.
type Info struct {
	AccountID          uuid.UUID  `json:"account_id"`
	Plan               Plan       `json:"plan"`
	FinishedFreeTrial  bool       `json:"finished_free_trial"`
	FreeTrialStartedAt time.Time  `json:"free_trial_started_at"`
	SubscribedAt       *time.Time `json:"subscribed_at,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewInfo returns the record of a freshly created account: basic plan, trial started at now.
func NewInfo(accountID uuid.UUID, now time.Time) Info {
	return Info{
		AccountID:          accountID,
		Plan:               PlanBasic,
		FreeTrialStartedAt: now,
		UpdatedAt:          now,
	}
}

// Validate checks the record invariants that storage must never violate.
func (i Info) Validate() error {
	if i.AccountID == uuid.Nil || !i.Plan.Valid() || i.FreeTrialStartedAt.IsZero() {
		return ErrInvalidInfo
	}
	return nil
}

// Extend applies an approved payment for plan at now.
// The new expiration stacks on top of any unused paid time and the trial is finished for good.
func Extend(info Info, plan Plan, now time.Time) (Info, error) {
	if !plan.IsPaid() {
		return info, ErrPlanNotPurchasable
	}

	base := now
	if info.ExpirationDate != nil && info.ExpirationDate.After(now) {
		base = *info.ExpirationDate
	}
	expiresAt := base.Add(plan.Duration())
	subscribedAt := now

	info.Plan = plan
	info.SubscribedAt = &subscribedAt
	info.ExpirationDate = &expiresAt
	info.FinishedFreeTrial = true
	info.UpdatedAt = now
	return info, nil
}

// FinishTrial ends the free trial early. The flag never goes back to false.
func FinishTrial(info Info, now time.Time) Info {
	if info.FinishedFreeTrial {
		return info
	}
	info.FinishedFreeTrial = true
	info.UpdatedAt = now
	return info
}
