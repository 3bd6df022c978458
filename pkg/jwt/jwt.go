package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
)

// DefaultTTL is the validity window of an access token.
const DefaultTTL = 24 * time.Hour

// Claims are the custom and registered claims of an access token.
// Subject holds the principal's email.
type Claims struct {
	Email       string         `json:"email"`
	PrincipalID uuid.UUID      `json:"principal_id"`
	Role        string         `json:"role"`
	Kind        principal.Kind `json:"kind"`
	gojwt.RegisteredClaims
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithIssuer sets the iss claim written and required by the service.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithClock sets the time source used for iat, exp and verification.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// Service signs and verifies tokens with a process-wide HMAC key.
// It is immutable after New and safe for concurrent use.
type Service struct {
	key    []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
	parser *gojwt.Parser
}

// New creates a Service. The key should be at least 32 random bytes.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		key:   append([]byte(nil), signingKey...),
		ttl:   DefaultTTL,
		clock: clock.System(),
	}
	for _, opt := range opts {
		opt(s)
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.clock.Now),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		// a token is still valid at its exact expiry instant
		gojwt.WithLeeway(time.Nanosecond),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, gojwt.WithIssuer(s.issuer))
	}
	s.parser = gojwt.NewParser(parserOpts...)
	return s, nil
}

// NewFromConfig creates a Service from Config.
func NewFromConfig(cfg Config, opts ...Option) (*Service, error) {
	return New([]byte(cfg.Secret), append([]Option{WithTTL(cfg.TTL), WithIssuer(cfg.Issuer)}, opts...)...)
}

// Issue signs a token for p valid for the configured TTL.
func (s *Service) Issue(p principal.Principal) (string, error) {
	token, _, err := s.IssueWithExpiry(p)
	return token, err
}

// IssueWithExpiry is Issue that also returns the exp claim written into the token.
func (s *Service) IssueWithExpiry(p principal.Principal) (string, time.Time, error) {
	if p.IsZero() || p.ID() == uuid.Nil || p.Email() == "" {
		return "", time.Time{}, ErrInvalidPrincipal
	}

	now := s.clock.Now()
	expiresAt := gojwt.NewNumericDate(now.Add(s.ttl))
	claims := Claims{
		Email:       p.Email(),
		PrincipalID: p.ID(),
		Role:        p.Role(),
		Kind:        p.Kind,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.Email(),
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrTokenInvalid, err)
	}
	return token, expiresAt.Time, nil
}

// Verify checks the signature and temporal claims of token and returns its claims.
// Tokens are expired only once now is past exp and then yield ErrTokenExpired; everything else yields ErrTokenInvalid.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	if _, err := principal.ParseKind(string(claims.Kind)); err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if claims.PrincipalID == uuid.Nil || claims.Email == "" || claims.Subject != claims.Email {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
