package auth

import (
	"sort"
	"sync"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// UserStore holds all user accounts by username. Access is safe for
// concurrent use.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]User)}
}

// Get returns a copy of the named user.
func (s *UserStore) Get(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, false
	}
	return u.Clone(), true
}

// Set stores the user, replacing any previous account with the same name.
func (s *UserStore) Set(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u.Clone()
}

// Delete removes the named user. It returns shared.ErrNotFound when the
// account does not exist.
func (s *UserStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return shared.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

// List returns copies of all users ordered by username.
func (s *UserStore) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// UserGrants implements rbac.UserSource.
func (s *UserStore) UserGrants(username string) (permissions, roles shared.StringSet, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, nil, false
	}
	return u.Permissions.Clone(), u.Roles.Clone(), true
}

// Restore replaces the store contents. Used when loading a database snapshot.
func (s *UserStore) Restore(users []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]User, len(users))
	for _, u := range users {
		s.users[u.Username] = u.Clone()
	}
}
