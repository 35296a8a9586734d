package rbac

import (
	"encoding/json"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// Role is a named permission bundle. A role may include other roles; its
// effective permission set is its own permissions plus those of every
// sub-role, expanded recursively. Sub-role names that do not resolve to an
// existing role contribute nothing.
type Role struct {
	Name        string
	Permissions shared.StringSet
	SubRoles    shared.StringSet
}

// NewRole constructs a Role with the given permissions and sub-roles.
func NewRole(name string, permissions, subRoles []string) Role {
	return Role{
		Name:        name,
		Permissions: shared.NewStringSet(permissions...),
		SubRoles:    shared.NewStringSet(subRoles...),
	}
}

// Clone returns an independent copy of the role.
func (r Role) Clone() Role {
	return Role{
		Name:        r.Name,
		Permissions: r.Permissions.Clone(),
		SubRoles:    r.SubRoles.Clone(),
	}
}

type roleJSON struct {
	Name        string           `json:"name"`
	Permissions shared.StringSet `json:"permissions"`
	SubRoles    shared.StringSet `json:"subRoles"`
}

// MarshalJSON encodes the role with its sets rendered as sorted arrays.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(roleJSON{Name: r.Name, Permissions: r.Permissions, SubRoles: r.SubRoles})
}
