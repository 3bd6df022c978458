package rbac

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Wildcard grants every capability.
const Wildcard = "*"

// Role is a set of capabilities with optional inheritance.
type Role struct {
	// Permissions granted directly to the role. Entries may end with ".*".
	Permissions []string `yaml:"permissions"`

	// Inherits lists roles whose permissions are included.
	Inherits []string `yaml:"inherits,omitempty"`
}

// Can reports whether the role grants capability directly, ignoring inheritance.
func (r *Role) Can(capability string) bool {
	return matchAny(r.Permissions, capability)
}
