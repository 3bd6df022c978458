package jwt

import (
	"errors"
	"net/http"
	"strings"
)

// Verifier verifies a raw token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// TokenExtractorFunc extracts a token from a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// ErrorHandlerFunc writes the response for a rejected request.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Verifier     Verifier
	Extractor    TokenExtractorFunc // defaults to BearerTokenExtractor
	ErrorHandler ErrorHandlerFunc   // defaults to a plain 401
}

// Middleware verifies bearer tokens and stores the claims in the request context.
func Middleware(v Verifier) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Verifier: v})
}

// MiddlewareWithConfig is Middleware with a custom extractor or error handler.
func MiddlewareWithConfig(cfg MiddlewareConfig) func(next http.Handler) http.Handler {
	if cfg.Verifier == nil {
		panic("jwt: Verifier is required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BearerTokenExtractor
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.Extractor(r)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx := SetClaims(SetToken(r.Context(), token), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid token"
	switch {
	case errors.Is(err, ErrTokenExpired):
		msg = "token expired"
	case errors.Is(err, ErrMissingToken):
		msg = "missing token"
	}
	http.Error(w, msg, http.StatusUnauthorized)
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrTokenInvalid
	}
	return strings.TrimSpace(token), nil
}

// CookieTokenExtractor reads the token from a cookie.
func CookieTokenExtractor(name string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", ErrMissingToken
		}
		return c.Value, nil
	}
}
