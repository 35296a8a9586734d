package rbac

import (
	"sort"
	"sync"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// RoleStore holds all roles by name. Access is safe for concurrent use.
type RoleStore struct {
	mu    sync.RWMutex
	roles map[string]Role
}

// NewRoleStore constructs an empty RoleStore.
func NewRoleStore() *RoleStore {
	return &RoleStore{roles: make(map[string]Role)}
}

// Get returns a copy of the named role.
func (s *RoleStore) Get(name string) (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[name]
	if !ok {
		return Role{}, false
	}
	return role.Clone(), true
}

// Set stores the role, replacing any previous definition.
func (s *RoleStore) Set(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.Name] = role.Clone()
}

// Delete removes the named role. It returns shared.ErrNotFound when the
// role does not exist.
func (s *RoleStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[name]; !ok {
		return shared.ErrNotFound
	}
	delete(s.roles, name)
	return nil
}

// Names returns all role names in lexical order.
func (s *RoleStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.roles))
	for name := range s.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns copies of all roles ordered by name.
func (s *RoleStore) List() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := make([]Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role.Clone())
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles
}

// Len returns the number of stored roles.
func (s *RoleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roles)
}

// EffectivePermissions expands the named role's permission set through its
// sub-roles. A visited set bounds the walk so cyclic sub-role graphs
// terminate, each role contributing its permissions once. An unknown role
// name yields an empty set, not an error.
func (s *RoleStore) EffectivePermissions(name string) shared.StringSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms := shared.NewStringSet()
	s.expand(name, perms, shared.NewStringSet())
	return perms
}

func (s *RoleStore) expand(name string, perms, visited shared.StringSet) {
	if visited.Has(name) {
		return
	}
	visited.Add(name)
	role, ok := s.roles[name]
	if !ok {
		return
	}
	perms.AddAll(role.Permissions)
	for sub := range role.SubRoles {
		s.expand(sub, perms, visited)
	}
}

// Restore replaces the store contents. Used when loading a database snapshot.
func (s *RoleStore) Restore(roles []Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = make(map[string]Role, len(roles))
	for _, role := range roles {
		s.roles[role.Name] = role.Clone()
	}
}
