package access

import "errors"

var (
	ErrForbidden       = errors.New("access: forbidden")
	ErrUnauthenticated = errors.New("access: no authenticated principal")
	ErrPremiumRequired = errors.New("access: premium subscription required")
	ErrStalePrincipal  = errors.New("access: token does not match the stored principal")
)
