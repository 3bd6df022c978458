package subscription

import (
	"math"
	"time"
)

// DefaultTrialPeriod is the length of the free trial window.
const DefaultTrialPeriod = 14 * day

// State is the evaluated view of an Info at a given instant. It is never persisted.
type State struct {
	Plan               Plan       `json:"plan"`
	IsInFreeTrial      bool       `json:"is_in_free_trial"`
	IsActive           bool       `json:"is_active"`
	IsAllowedPremium   bool       `json:"is_allowed_premium"`
	RemainingDays      int        `json:"remaining_days"`
	TrialDaysRemaining int        `json:"trial_days_remaining"`
	TrialEndsAt        time.Time  `json:"trial_ends_at"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
}

// Evaluator computes State with a configurable trial window.
type Evaluator struct {
	TrialPeriod time.Duration
}

// Evaluate computes the State of info at now with the default trial window.
func Evaluate(info Info, now time.Time) State {
	return Evaluator{TrialPeriod: DefaultTrialPeriod}.Evaluate(info, now)
}

// Evaluate computes the State of info at now.
func (e Evaluator) Evaluate(info Info, now time.Time) State {
	trialEndsAt := e.TrialEndsAt(info)
	inTrial := !info.FinishedFreeTrial && now.Before(trialEndsAt)
	active := info.ExpirationDate != nil && now.Before(*info.ExpirationDate)

	st := State{
		Plan:             info.Plan,
		IsInFreeTrial:    inTrial,
		IsActive:         active,
		IsAllowedPremium: info.Plan == PlanBasic || active || inTrial,
		TrialEndsAt:      trialEndsAt,
		ExpirationDate:   info.ExpirationDate,
	}
	if active && info.Plan.IsPaid() {
		st.RemainingDays = daysCeil(info.ExpirationDate.Sub(now))
	}
	if inTrial {
		st.TrialDaysRemaining = daysCeil(trialEndsAt.Sub(now))
	}
	return st
}

// TrialEndsAt returns the end of the trial window for info.
func (e Evaluator) TrialEndsAt(info Info) time.Time {
	period := e.TrialPeriod
	if period <= 0 {
		period = DefaultTrialPeriod
	}
	return info.FreeTrialStartedAt.Add(period)
}

// daysCeil counts started days in d. Negative durations count as zero.
func daysCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
