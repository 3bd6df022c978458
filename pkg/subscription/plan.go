package subscription

import (
	"strings"
	"time"
)

// Plan identifies a subscription tier.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanProWeekly  Plan = "pro_weekly"
	PlanProMonthly Plan = "pro_monthly"
)

const day = 24 * time.Hour

// ParsePlan converts user input such as "PRO_WEEKLY" or "pro_weekly" into a Plan.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrUnknownPlan
	}
	return p, nil
}

func (p Plan) String() string { return string(p) }

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanProWeekly, PlanProMonthly:
		return true
	}
	return false
}

// IsPaid reports whether p can be bought with a payment request.
func (p Plan) IsPaid() bool {
	return p == PlanProWeekly || p == PlanProMonthly
}

// Duration is the extension granted by one approved payment. Zero for non-paid plans.
func (p Plan) Duration() time.Duration {
	switch p {
	case PlanProWeekly:
		return 7 * day
	case PlanProMonthly:
		return 30 * day
	}
	return 0
}
