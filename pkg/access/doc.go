// Package access decides whether a resolved principal may use a capability.
//
// Roles are checked through an rbac.Authorizer for both principal kinds. Account owners asking
// for a premium capability are additionally checked against their subscription, evaluated at the
// moment of the call. Employees are checked by role only.
//
// The HTTP middlewares build on pkg/jwt:
//
//	r.Use(jwt.Middleware(tokens))
//	r.Use(access.Authenticate(resolver))
//	r.With(gate.Require("reports.advanced")).Get("/reports", handler)
package access
