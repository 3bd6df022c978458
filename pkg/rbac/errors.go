package rbac

import "errors"

var (
	// ErrInvalidRole is returned when a role does not exist.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrInsufficientPermissions is returned when the role lacks the capability.
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")

	// ErrCircularInheritance is returned when roles inherit from each other in a loop.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrUnknownParentRole is returned when a role inherits from an undefined role.
	ErrUnknownParentRole = errors.New("rbac.unknown_parent_role")

	// ErrInvalidRoleSource is returned when role definitions cannot be decoded.
	ErrInvalidRoleSource = errors.New("rbac.invalid_role_source")
)
