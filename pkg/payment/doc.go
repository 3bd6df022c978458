// Package payment is the ledger of manually reconciled payment requests.
//
// A subscriber who paid outside the system (bank transfer, cash, card-to-card) submits a Request
// with the amount, the sender name, the target plan and optionally a screenshot of the receipt.
// The request starts in StatusPending. An administrator later approves or rejects it exactly once;
// both outcomes are terminal.
//
// Approval is the only cross-entity mutation in the model: it marks the request approved and
// extends the funded account's subscription (see subscription.Extend) as one unit of work. The
// Store is responsible for that atomicity and for serialising concurrent decisions on the same
// request, so that a second decider observes ErrInvalidStateTransition instead of overwriting
// the first decision.
//
//	ledger := payment.NewLedger(store,
//		payment.WithScreenshots(s3host),
//		payment.WithClock(clock.System()),
//		payment.WithLogger(log),
//	)
//
//	req, err := ledger.Submit(ctx, payment.SubmitParams{...})
//	req, err = ledger.Decide(ctx, payment.DecideParams{
//		RequestID: req.ID,
//		Decision:  payment.DecisionApprove,
//		DecidedBy: adminID,
//	})
//
// Validation failures are returned as ErrInvalidRequest joined with validator.ValidationErrors.
package payment
