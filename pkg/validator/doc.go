// Package validator builds declarative input checks out of small Rule values.
//
// Each rule pairs a Check func with the ValidationError reported when it fails. Apply evaluates
// every rule and aggregates failures into ValidationErrors, which implements error:
//
//	err := validator.Apply(
//		validator.RequiredString("sender_name", p.SenderName),
//		validator.PositiveDecimal("amount_paid", p.AmountPaid),
//		validator.OneOf("plan", p.Plan, purchasable),
//	)
//	if validator.IsValidationError(err) {
//		// 400 with per-field messages
//	}
//
// Rules are stateless and safe for concurrent use.
package validator
