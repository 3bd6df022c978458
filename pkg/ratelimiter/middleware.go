package ratelimiter

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/bizdesk/pkg/clientip"
)

const maxKeyLength = 64

// KeyFunc derives the bucket key of a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ByClientIP keys on the address stored by clientip.Middleware.
func ByClientIP(r *http.Request) string {
	return clientip.FromContext(r.Context())
}

// Composite joins the non-empty keys of fns, hashing keys longer than 64 bytes.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// DeniedHandler writes the response for a throttled request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, res Result)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	denied DeniedHandler
}

// WithDeniedHandler replaces the plain-text 429 response.
func WithDeniedHandler(h DeniedHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.denied = h
		}
	}
}

// Middleware takes one token per request and sets the X-RateLimit-* headers.
func Middleware(l *Limiter, key KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if l == nil || key == nil {
		panic("ratelimiter: limiter and key func are required")
	}
	cfg := middlewareConfig{denied: func(w http.ResponseWriter, _ *http.Request, _ Result) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Allow(k)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := res.RetryAfter(l.clock.Now())
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				cfg.denied(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
