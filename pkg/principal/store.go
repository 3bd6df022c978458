package principal

import "context"

// OwnerStore looks up account owners. Misses return ErrPrincipalNotFound.
type OwnerStore interface {
	GetOwnerByEmail(ctx context.Context, email string) (*Owner, error)
}

// EmployeeStore looks up employees. Misses return ErrPrincipalNotFound.
type EmployeeStore interface {
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
}

// Cache holds resolved principals without password hashes.
// Get returns ErrCacheMiss when nothing is stored.
type Cache interface {
	Get(ctx context.Context, kind Kind, email string) (Principal, error)
	Set(ctx context.Context, p Principal) error
	Delete(ctx context.Context, kind Kind, email string) error
}
