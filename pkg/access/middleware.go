package access

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
)

// Resolver re-derives a principal from token claims. *principal.Resolver satisfies it.
type Resolver interface {
	ResolveKind(ctx context.Context, kind principal.Kind, email string) (principal.Principal, error)
}

// ErrorHandlerFunc writes the response for a rejected request.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Authenticate and Require.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	errorHandler ErrorHandlerFunc
}

// WithErrorHandler replaces the default plain-text 401/403 responses.
func WithErrorHandler(h ErrorHandlerFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func newMiddlewareConfig(opts []MiddlewareOption) middlewareConfig {
	cfg := middlewareConfig{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Authenticate resolves the principal named by the jwt claims in the request context and stores
// it with principal.WithContext. It must run after jwt.Middleware.
func Authenticate(resolver Resolver, opts ...MiddlewareOption) func(next http.Handler) http.Handler {
	if resolver == nil {
		panic("access: resolver is required")
	}
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.GetClaims(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrUnauthenticated)
				return
			}

			p, err := resolver.ResolveKind(r.Context(), claims.Kind, claims.Email)
			if err != nil {
				cfg.errorHandler(w, r, errors.Join(ErrUnauthenticated, err))
				return
			}
			if p.ID() != claims.PrincipalID {
				cfg.errorHandler(w, r, errors.Join(ErrUnauthenticated, ErrStalePrincipal))
				return
			}

			next.ServeHTTP(w, r.WithContext(principal.WithContext(r.Context(), p)))
		})
	}
}

// Require rejects requests whose principal may not use capability.
func (g *Gate) Require(capability string, opts ...MiddlewareOption) func(next http.Handler) http.Handler {
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal.FromContext(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrUnauthenticated)
				return
			}
			if err := g.Authorize(r.Context(), p, capability); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrForbidden) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
