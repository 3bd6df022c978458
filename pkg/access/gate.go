package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/rbac"
)

// DefaultPremiumCapabilities are gated behind an active subscription or trial.
var DefaultPremiumCapabilities = []string{
	"reports.advanced",
	"ai.chat",
	"inventory.export",
	"employees.manage",
}

// PremiumChecker reports whether an account may use premium features right now.
// subscription.Service satisfies it.
type PremiumChecker interface {
	IsAllowedPremium(ctx context.Context, accountID uuid.UUID) bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithPremiumCapabilities replaces DefaultPremiumCapabilities.
func WithPremiumCapabilities(capabilities ...string) Option {
	return func(g *Gate) {
		g.premium = make(map[string]struct{}, len(capabilities))
		for _, c := range capabilities {
			g.premium[c] = struct{}{}
		}
	}
}

// WithLogger sets the logger used for denials.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gate authorizes principals. It holds no per-request state.
type Gate struct {
	roles   rbac.Authorizer
	premium map[string]struct{}
	subs    PremiumChecker
	logger  *slog.Logger
}

// NewGate creates a Gate. Panics if roles or subs is nil.
func NewGate(roles rbac.Authorizer, subs PremiumChecker, opts ...Option) *Gate {
	if roles == nil || subs == nil {
		panic("access: authorizer and premium checker are required")
	}
	g := &Gate{
		roles:  roles,
		subs:   subs,
		logger: logger.Discard(),
	}
	WithPremiumCapabilities(DefaultPremiumCapabilities...)(g)
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("access_gate"))
	return g
}

// IsPremium reports whether capability requires premium access.
func (g *Gate) IsPremium(capability string) bool {
	_, ok := g.premium[capability]
	return ok
}

// Authorize returns nil if p may use capability, or ErrForbidden joined with the reason.
func (g *Gate) Authorize(ctx context.Context, p principal.Principal, capability string) error {
	if p.IsZero() {
		return errors.Join(ErrForbidden, ErrUnauthenticated)
	}

	if err := g.roles.Can(p.Role(), capability); err != nil {
		g.deny(ctx, p, capability, err)
		return errors.Join(ErrForbidden, err)
	}

	if p.Kind == principal.KindUser && g.IsPremium(capability) {
		if !g.subs.IsAllowedPremium(ctx, p.AccountID()) {
			g.deny(ctx, p, capability, ErrPremiumRequired)
			return errors.Join(ErrForbidden, ErrPremiumRequired)
		}
	}
	return nil
}

func (g *Gate) deny(ctx context.Context, p principal.Principal, capability string, reason error) {
	g.logger.DebugContext(ctx, "access denied",
		logger.PrincipalID(p.ID()),
		logger.PrincipalKind(p.Kind),
		logger.Role(p.Role()),
		logger.Capability(capability),
		logger.Error(reason),
	)
}
