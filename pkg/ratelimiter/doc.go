// Package ratelimiter throttles requests per key with token buckets from golang.org/x/time/rate.
//
// bizdesk limits login attempts per client address so passwords cannot be brute-forced:
//
//	limiter, err := ratelimiter.New(cfg)
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByClientIP)).Post("/v1/auth/login", login)
//
// Buckets live in process memory. Idle buckets are dropped by Prune, which Run calls
// periodically.
package ratelimiter
