package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

func TestRoleStoreRoundTrip(t *testing.T) {
	s := NewRoleStore()
	s.Set(NewRole("viewer", []string{"reports-GET"}, nil))

	role, ok := s.Get("viewer")
	require.True(t, ok)
	require.True(t, role.Permissions.Has("reports-GET"))

	// Mutating the returned copy must not leak into the store.
	role.Permissions.Add("reports-PUT")
	again, _ := s.Get("viewer")
	require.False(t, again.Permissions.Has("reports-PUT"))
}

func TestRoleStoreDeleteUnknown(t *testing.T) {
	s := NewRoleStore()
	require.ErrorIs(t, s.Delete("ghost"), shared.ErrNotFound)
}

func TestEffectivePermissionsUnionsSubRoles(t *testing.T) {
	s := NewRoleStore()
	s.Set(NewRole("viewer", []string{"reports-GET"}, nil))
	s.Set(NewRole("editor", []string{"reports-PUT"}, []string{"viewer"}))
	s.Set(NewRole("lead", []string{"users-GET"}, []string{"editor"}))

	perms := s.EffectivePermissions("lead")
	for _, want := range []string{"users-GET", "reports-PUT", "reports-GET"} {
		require.True(t, perms.Has(want), "missing %s", want)
	}
}

func TestEffectivePermissionsCycleTerminates(t *testing.T) {
	s := NewRoleStore()
	s.Set(NewRole("a", []string{"p-a"}, []string{"b"}))
	s.Set(NewRole("b", []string{"p-b"}, []string{"a"}))

	perms := s.EffectivePermissions("a")
	require.True(t, perms.Has("p-a"))
	require.True(t, perms.Has("p-b"))
	require.Len(t, perms, 2)
}

func TestEffectivePermissionsUnknownRole(t *testing.T) {
	s := NewRoleStore()
	require.Empty(t, s.EffectivePermissions("ghost"))
}

func TestEffectivePermissionsUnknownSubRoleSkipped(t *testing.T) {
	s := NewRoleStore()
	s.Set(NewRole("ops", []string{"p-ops"}, []string{"ghost"}))

	perms := s.EffectivePermissions("ops")
	require.True(t, perms.Has("p-ops"))
	require.Len(t, perms, 1)
}
