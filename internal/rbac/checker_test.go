package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

type fakeUsers map[string]struct {
	perms []string
	roles []string
}

func (f fakeUsers) UserGrants(username string) (shared.StringSet, shared.StringSet, bool) {
	u, ok := f[username]
	if !ok {
		return nil, nil, false
	}
	return shared.NewStringSet(u.perms...), shared.NewStringSet(u.roles...), true
}

func grants(perms, roles []string) struct {
	perms []string
	roles []string
} {
	return struct {
		perms []string
		roles []string
	}{perms, roles}
}

func TestHasPermissionDirectGrant(t *testing.T) {
	users := fakeUsers{"alice": grants([]string{"reports-GET"}, nil)}
	c := NewChecker(users, NewRoleStore(), NewRegistry())

	require.True(t, c.HasPermission("alice", "reports-GET"))
	require.False(t, c.HasPermission("alice", "reports-PUT"))
}

func TestHasPermissionUnknownUser(t *testing.T) {
	c := NewChecker(fakeUsers{}, NewRoleStore(), NewRegistry())
	require.False(t, c.HasPermission("nobody", "reports-GET"))
}

func TestHasPermissionAllShortCircuits(t *testing.T) {
	users := fakeUsers{"root": grants([]string{PermissionAll}, nil)}
	c := NewChecker(users, NewRoleStore(), NewRegistry())

	require.True(t, c.HasPermission("root", "anything-at-all"))
}

func TestHasPermissionAllThroughRole(t *testing.T) {
	users := fakeUsers{"alice": grants(nil, []string{"admin"})}
	roles := NewRoleStore()
	roles.Set(NewRole("admin", []string{PermissionAll}, nil))
	c := NewChecker(users, roles, NewRegistry())

	require.True(t, c.HasPermission("alice", "never-registered-before"))
}

func TestHasPermissionThroughSubRole(t *testing.T) {
	users := fakeUsers{"bob": grants(nil, []string{"ops"})}
	roles := NewRoleStore()
	roles.Set(NewRole("viewer", []string{"reports-GET"}, nil))
	roles.Set(NewRole("ops", nil, []string{"viewer"}))
	c := NewChecker(users, roles, NewRegistry())

	require.True(t, c.HasPermission("bob", "reports-GET"))
	require.False(t, c.HasPermission("bob", "reports-PUT"))
}

func TestHasPermissionRegistersCheckedName(t *testing.T) {
	registry := NewRegistry()
	c := NewChecker(fakeUsers{}, NewRoleStore(), registry)

	require.False(t, registry.Has("fresh-permission"))
	c.HasPermission("nobody", "fresh-permission")
	require.True(t, registry.Has("fresh-permission"))

	// Checking again must not duplicate the entry.
	c.HasPermission("nobody", "fresh-permission")
	require.Equal(t, 1, countOf(registry.List(), "fresh-permission"))
}

func countOf(list []string, want string) int {
	n := 0
	for _, item := range list {
		if item == want {
			n++
		}
	}
	return n
}
