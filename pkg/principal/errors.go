package principal

import "errors"

var (
	ErrPrincipalNotFound  = errors.New("principal: not found")
	ErrInvalidCredentials = errors.New("principal: invalid email or password")
	ErrUnknownKind        = errors.New("principal: unknown principal kind")
	ErrCacheMiss          = errors.New("principal: cache miss")
	ErrFailedToResolve    = errors.New("principal: failed to resolve")
	ErrFailedToHash       = errors.New("principal: failed to hash password")
)
