package rbac

import (
	"github.com/ostiary-dev/ostiary/internal/shared"
)

// UserSource resolves a username to its directly granted permissions and
// assigned role names. It exists so the checker reads user data without
// owning the user store.
type UserSource interface {
	UserGrants(username string) (permissions, roles shared.StringSet, ok bool)
}

// Checker resolves whether a user holds a permission, walking direct grants
// first and then the role graph. Results are recomputed per call; there is
// no cache to invalidate.
type Checker struct {
	users    UserSource
	roles    *RoleStore
	registry *Registry
}

// NewChecker constructs a Checker.
func NewChecker(users UserSource, roles *RoleStore, registry *Registry) *Checker {
	return &Checker{users: users, roles: roles, registry: registry}
}

// HasPermission reports whether the user holds the permission. The queried
// name is registered as a side effect so the admin surface can enumerate
// every permission the application has ever checked. The "all" permission,
// held directly or through any role, grants everything.
func (c *Checker) HasPermission(username, permission string) bool {
	c.registry.Add(permission)
	perms, roles, ok := c.users.UserGrants(username)
	if !ok {
		return false
	}
	if perms.Has(PermissionAll) || perms.Has(permission) {
		return true
	}
	for role := range roles {
		effective := c.roles.EffectivePermissions(role)
		if effective.Has(PermissionAll) || effective.Has(permission) {
			return true
		}
	}
	return false
}
