package jwt

import "context"

type contextKey struct{ name string }

var (
	tokenContextKey  = &contextKey{name: "jwt"}
	claimsContextKey = &contextKey{name: "jwt_claims"}
)

// SetToken stores the raw token in ctx.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetToken returns the raw token stored by SetToken.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// SetClaims stores verified claims in ctx.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims returns the claims stored by SetClaims.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
