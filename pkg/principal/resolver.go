package principal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

// Resolver finds principals across the owner and employee stores.
type Resolver struct {
	owners    OwnerStore
	employees EmployeeStore
	cache     Cache
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache enables caching for ResolveKind.
func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver. Panics if a store is nil.
func NewResolver(owners OwnerStore, employees EmployeeStore, opts ...ResolverOption) *Resolver {
	if owners == nil || employees == nil {
		panic("principal: owner and employee stores are required")
	}
	r := &Resolver{
		owners:    owners,
		employees: employees,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("principal_resolver"))
	return r
}

// Resolve looks email up in the owner store, then in the employee store.
// An email present in both resolves to the owner.
func (r *Resolver) Resolve(ctx context.Context, email string) (Principal, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Principal{}, ErrPrincipalNotFound
	}

	p, err := r.lookup(ctx, KindUser, email)
	if err == nil || !errors.Is(err, ErrPrincipalNotFound) {
		return p, err
	}
	return r.lookup(ctx, KindEmployee, email)
}

// ResolveKind looks email up only in the store for kind, consulting the cache first.
func (r *Resolver) ResolveKind(ctx context.Context, kind Kind, email string) (Principal, error) {
	if kind != KindUser && kind != KindEmployee {
		return Principal{}, ErrUnknownKind
	}
	email = NormalizeEmail(email)
	if email == "" {
		return Principal{}, ErrPrincipalNotFound
	}

	if r.cache != nil {
		p, err := r.cache.Get(ctx, kind, email)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.WarnContext(ctx, "principal cache read failed", logger.Error(err))
		}
	}

	p, err := r.lookup(ctx, kind, email)
	if err != nil {
		return Principal{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, p); err != nil {
			r.logger.WarnContext(ctx, "principal cache write failed", logger.Error(err))
		}
	}
	return p, nil
}

// Authenticate resolves email and checks password. Every failure except storage errors is
// reported as ErrInvalidCredentials.
func (r *Resolver) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	p, err := r.Resolve(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			comparePassword("", password)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if !comparePassword(p.PasswordHash(), password) {
		r.logger.InfoContext(ctx, "password mismatch",
			logger.PrincipalID(p.ID()),
			logger.PrincipalKind(p.Kind),
		)
		return Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

// Invalidate drops a cached principal, e.g. after a role change.
func (r *Resolver) Invalidate(ctx context.Context, kind Kind, email string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, kind, NormalizeEmail(email))
}

func (r *Resolver) lookup(ctx context.Context, kind Kind, email string) (Principal, error) {
	switch kind {
	case KindUser:
		o, err := r.owners.GetOwnerByEmail(ctx, email)
		if err != nil {
			return Principal{}, wrapLookupErr(err)
		}
		return FromOwner(o), nil
	case KindEmployee:
		e, err := r.employees.GetEmployeeByEmail(ctx, email)
		if err != nil {
			return Principal{}, wrapLookupErr(err)
		}
		return FromEmployee(e), nil
	}
	return Principal{}, ErrUnknownKind
}

func wrapLookupErr(err error) error {
	if errors.Is(err, ErrPrincipalNotFound) {
		return ErrPrincipalNotFound
	}
	return errors.Join(ErrFailedToResolve, err)
}
