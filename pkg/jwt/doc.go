// Package jwt issues and verifies the HS256 access tokens shared by both principal kinds.
//
// A token carries the subject email, the principal id, its role and its kind ("user" or
// "employee"), plus iat/exp. The kind claim tells the resolver which principal table to read, so
// owners and employees share one token format without a discriminator lookup.
//
// The signing secret is injected once at construction and never changes. Time comes from an
// injected clock.Clock so that expiry can be tested deterministically:
//
//	svc, err := jwt.New([]byte(cfg.Secret), jwt.WithTTL(24*time.Hour))
//	token, err := svc.Issue(p)
//	claims, err := svc.Verify(token)
//	switch {
//	case errors.Is(err, jwt.ErrTokenExpired):
//	case errors.Is(err, jwt.ErrTokenInvalid):
//	}
//
// Verification is CPU-bound: it checks the signature and temporal claims and performs no I/O.
// Middleware extracts a bearer token, verifies it and stores the claims in the request context.
package jwt
