package payment

import (
	"context"
	"time"

	"github.com/dmitrymomot/bizdesk/pkg/statemachine"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// decision carries the data of one Decide call through the transition table.
type decision struct {
	request  Request
	info     subscription.Info
	now      time.Time
	extended *subscription.Info
}

// newTransitionTable defines the request lifecycle: pending -> approved | rejected.
// Approved and rejected have no outgoing transitions.
func newTransitionTable() *statemachine.Table {
	return statemachine.MustNew(
		statemachine.WithTransition(StatusPending, StatusApproved, DecisionApprove,
			statemachine.WithGuard(hasPurchasablePlan),
			statemachine.WithAction(extendSubscription),
		),
		statemachine.WithTransition(StatusPending, StatusRejected, DecisionReject),
	)
}

func hasPurchasablePlan(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	dc, ok := data.(*decision)
	return ok && dc.request.Plan.IsPaid()
}

func extendSubscription(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	dc := data.(*decision)
	info, err := subscription.Extend(dc.info, dc.request.Plan, dc.now)
	if err != nil {
		return err
	}
	dc.extended = &info
	return nil
}
