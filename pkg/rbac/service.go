package rbac

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Authorizer answers capability checks for roles.
type Authorizer interface {
	// Can checks whether role grants capability, directly or through inheritance.
	Can(role, capability string) error

	// VerifyRole returns ErrInvalidRole for undefined roles.
	VerifyRole(role string) error

	// Roles returns all role names, base roles first.
	Roles() []string
}

// RoleSource provides role definitions.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

type authorizer struct {
	// permissions holds the flattened grants of every role. Read-only after construction.
	permissions map[string][]string
	sorted      []string
}

// NewAuthorizer loads roles from source and flattens their inheritance.
func NewAuthorizer(ctx context.Context, source RoleSource) (Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = make(map[string]Role)
	}

	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	permissions := make(map[string][]string, len(roles))
	for name := range roles {
		permissions[name] = normalize(collectPermissions(name, roles, make(map[string]bool), 0))
	}

	return &authorizer{
		permissions: permissions,
		sorted:      sortByInheritance(roles),
	}, nil
}

func (a *authorizer) Can(role, capability string) error {
	grants, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	if !matchAny(grants, capability) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) VerifyRole(role string) error {
	if _, ok := a.permissions[role]; !ok {
		return ErrInvalidRole
	}
	return nil
}

func (a *authorizer) Roles() []string {
	return slices.Clone(a.sorted)
}

func collectPermissions(name string, roles map[string]Role, visited map[string]bool, depth int) []string {
	if depth > MaxInheritanceDepth || visited[name] {
		return nil
	}
	visited[name] = true

	role, ok := roles[name]
	if !ok {
		return nil
	}

	out := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		out = append(out, collectPermissions(parent, roles, visited, depth+1)...)
	}
	return out
}

// sortByInheritance orders roles by inheritance depth, then by name.
func sortByInheritance(roles map[string]Role) []string {
	depths := make(map[string]int, len(roles))
	names := make([]string, 0, len(roles))
	for name := range roles {
		depths[name] = roleDepth(name, roles, depths)
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(depths[a], depths[b]), strings.Compare(a, b))
	})
	return names
}

// roleDepth assumes validateRoles already rejected cycles.
func roleDepth(name string, roles map[string]Role, memo map[string]int) int {
	if d, ok := memo[name]; ok {
		return d
	}
	depth := 0
	for _, parent := range roles[name].Inherits {
		depth = max(depth, roleDepth(parent, roles, memo)+1)
	}
	memo[name] = depth
	return depth
}

func validateRoles(roles map[string]Role) error {
	for name, role := range roles {
		for _, parent := range role.Inherits {
			if _, ok := roles[parent]; !ok {
				return errors.Join(ErrUnknownParentRole, fmt.Errorf("role %q inherits undefined role %q", name, parent))
			}
		}
	}

	for name := range roles {
		if err := checkCycle(name, roles, []string{name}); err != nil {
			return err
		}
	}

	memo := make(map[string]int, len(roles))
	for name := range roles {
		if roleDepth(name, roles, memo) > MaxInheritanceDepth {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
		}
	}
	return nil
}

func checkCycle(name string, roles map[string]Role, path []string) error {
	if len(path) > MaxInheritanceDepth+1 {
		return errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
	}
	for _, parent := range roles[name].Inherits {
		if slices.Contains(path, parent) {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("circular inheritance detected: %s -> %s", name, parent))
		}
		if err := checkCycle(parent, roles, append(slices.Clone(path), parent)); err != nil {
			return err
		}
	}
	return nil
}
