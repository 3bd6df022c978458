package rbac

import (
	"context"
	"maps"
	"slices"
)

type inMemRoleSource struct {
	roles map[string]Role
}

// NewInMemRoleSource returns a RoleSource over a deep copy of roles.
func NewInMemRoleSource(roles map[string]Role) RoleSource {
	return &inMemRoleSource{roles: cloneRoles(roles)}
}

func (s *inMemRoleSource) Load(context.Context) (map[string]Role, error) {
	return cloneRoles(s.roles), nil
}

func cloneRoles(roles map[string]Role) map[string]Role {
	out := make(map[string]Role, len(roles))
	for name, r := range maps.All(roles) {
		out[name] = Role{
			Permissions: slices.Clone(r.Permissions),
			Inherits:    slices.Clone(r.Inherits),
		}
	}
	return out
}
