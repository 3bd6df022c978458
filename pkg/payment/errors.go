package payment

import "errors"

var (
	ErrInvalidRequest         = errors.New("payment: invalid request")
	ErrRequestNotFound        = errors.New("payment: request not found")
	ErrInvalidStateTransition = errors.New("payment: request is not pending")
	ErrScreenshotsDisabled    = errors.New("payment: screenshot storage is not configured")
	ErrScreenshotUpload       = errors.New("payment: failed to store screenshot")
	ErrFailedToCreate         = errors.New("payment: failed to create request")
	ErrFailedToDecide         = errors.New("payment: failed to record decision")
	ErrFailedToList           = errors.New("payment: failed to list requests")
)
