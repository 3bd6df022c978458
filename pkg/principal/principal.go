package principal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two principal tables.
type Kind string

const (
	KindUser     Kind = "user"
	KindEmployee Kind = "employee"
)

// ParseKind validates a kind read from a token or request.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindUser, KindEmployee:
		return k, nil
	}
	return "", ErrUnknownKind
}

// Default roles.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Owner is an account owner. Its ID is also the id of the account's subscription.
type Owner struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Employee belongs to one business of one owner.
type Employee struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	BusinessID   uuid.UUID `json:"business_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is exactly one of Owner or Employee, tagged by Kind.
type Principal struct {
	Kind     Kind
	Owner    *Owner
	Employee *Employee
}

// FromOwner wraps an owner.
func FromOwner(o *Owner) Principal { return Principal{Kind: KindUser, Owner: o} }

// FromEmployee wraps an employee.
func FromEmployee(e *Employee) Principal { return Principal{Kind: KindEmployee, Employee: e} }

// IsZero reports whether p wraps nothing.
func (p Principal) IsZero() bool { return p.Owner == nil && p.Employee == nil }

func (p Principal) ID() uuid.UUID {
	switch {
	case p.Owner != nil:
		return p.Owner.ID
	case p.Employee != nil:
		return p.Employee.ID
	}
	return uuid.Nil
}

func (p Principal) Email() string {
	switch {
	case p.Owner != nil:
		return p.Owner.Email
	case p.Employee != nil:
		return p.Employee.Email
	}
	return ""
}

func (p Principal) Role() string {
	switch {
	case p.Owner != nil:
		return p.Owner.Role
	case p.Employee != nil:
		return p.Employee.Role
	}
	return ""
}

func (p Principal) PasswordHash() string {
	switch {
	case p.Owner != nil:
		return p.Owner.PasswordHash
	case p.Employee != nil:
		return p.Employee.PasswordHash
	}
	return ""
}

// AccountID is the subscription-owning account: the owner itself, or the employee's owner.
func (p Principal) AccountID() uuid.UUID {
	switch {
	case p.Owner != nil:
		return p.Owner.ID
	case p.Employee != nil:
		return p.Employee.OwnerID
	}
	return uuid.Nil
}

// NormalizeEmail trims and lower-cases an email before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
