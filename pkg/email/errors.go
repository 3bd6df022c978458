package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("email: failed to send email")
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrInvalidMessage    = errors.New("email: invalid message")
	ErrUnknownTemplate   = errors.New("email: unknown template")
)
