package jwt

import "errors"

var (
	ErrTokenExpired      = errors.New("jwt: token is expired")
	ErrTokenInvalid      = errors.New("jwt: token is invalid")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrInvalidPrincipal  = errors.New("jwt: principal cannot be issued a token")
)
