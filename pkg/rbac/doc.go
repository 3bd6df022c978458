// Package rbac maps roles to capabilities.
//
// A capability is a dot-separated name such as "payments.decide". Roles grant capabilities
// directly or inherit them from other roles, and a grant may end with a wildcard: "payments.*"
// covers every payments capability and "*" covers everything.
//
// Roles come from a RoleSource. NewInMemRoleSource wraps a map and NewYAMLSource reads a YAML
// document; DefaultRoles returns the roles shipped with bizdesk:
//
//	auth, err := rbac.NewAuthorizer(ctx, rbac.DefaultRoles())
//	if err != nil {
//		return err
//	}
//	if err := auth.Can("cashier", "sales.create"); err != nil {
//		// rbac.ErrInsufficientPermissions or rbac.ErrInvalidRole
//	}
package rbac
