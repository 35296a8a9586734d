package rbac

import (
	"sync"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// PermissionAll grants universal access and short-circuits every check.
const PermissionAll = "all"

// Registry is the set of permission names known to the application. It is an
// injected dependency rather than process-wide state so tests can isolate it.
// Names are only ever added, never removed.
type Registry struct {
	mu    sync.RWMutex
	perms shared.StringSet
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{perms: shared.NewStringSet()}
}

// Add registers a permission name. Adding an existing name is a no-op.
func (r *Registry) Add(perm string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perms.Add(perm)
}

// AddAll registers every name in perms.
func (r *Registry) AddAll(perms ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range perms {
		r.perms.Add(p)
	}
}

// Has reports whether the permission name has been registered.
func (r *Registry) Has(perm string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.perms.Has(perm)
}

// List returns all registered names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.perms.Sorted()
}
