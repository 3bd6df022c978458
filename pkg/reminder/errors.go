package reminder

import "errors"

var (
	ErrInvalidSchedule = errors.New("reminder: invalid cron schedule")
	ErrAlreadyStarted  = errors.New("reminder: job already started")
)
