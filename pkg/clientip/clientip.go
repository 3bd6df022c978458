package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders are checked in order by Resolver when proxy headers are trusted.
var DefaultHeaders = []string{"CF-Connecting-IP", "DO-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// Resolver extracts client addresses.
type Resolver struct {
	headers []string
}

// New returns a Resolver reading headers in order before RemoteAddr.
// Without headers only RemoteAddr is used.
func New(headers ...string) Resolver {
	return Resolver{headers: headers}
}

// IP returns the normalised client address, or "" when none parses.
func (res Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}
		// X-Forwarded-For lists the original client first.
		for part := range strings.SplitSeq(value, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// Middleware stores the client address in the request context.
func (res Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), res.IP(r))))
	})
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type contextKey struct{}

// WithContext stores ip in ctx.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the address stored by Middleware, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}
