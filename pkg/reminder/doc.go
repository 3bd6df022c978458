// Package reminder warns account owners that their paid subscription is about to expire.
//
// Job runs on a cron schedule. Each run looks at every warning day d (7 and 3 by default) and
// notifies owners whose plan expires within the 24h window ending d days from now. Consecutive
// daily runs cover contiguous windows, so every owner is warned once per warning day.
//
// Failures are logged and never stop the run or the scheduler.
package reminder
