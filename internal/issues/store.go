// Package issues keeps an append-only audit log of noteworthy failures,
// primarily producer panics recorded before they are re-raised to the
// transport layer.
package issues

import (
	"sync"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// Issue is a single audit record.
type Issue struct {
	ID           int64            `json:"id"`
	Level        string           `json:"level"`
	Message      string           `json:"message"`
	ResourcePath string           `json:"resourcePath"`
	CallStack    string           `json:"callStack"`
	Exception    string           `json:"exception"`
	Timestamp    shared.Timestamp `json:"timestamp"`
}

// Store is an append-only issue log. Ids increase monotonically for the
// lifetime of a database instance and are never reused, even after records
// are loaded from a snapshot.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []Issue
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Add assigns the next id, stamps the record, and appends it.
func (s *Store) Add(issue Issue) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue.ID = s.nextID
	s.nextID++
	if issue.Timestamp.IsZero() {
		issue.Timestamp = shared.Now()
	}
	s.items = append(s.items, issue)
	return issue.ID
}

// List returns a copy of all records in insertion order.
func (s *Store) List() []Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Issue, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot captures the store state for persistence.
type Snapshot struct {
	NextID int64
	Items  []Issue
}

// Snapshot returns a copy of the store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Issue, len(s.items))
	copy(items, s.items)
	return Snapshot{NextID: s.nextID, Items: items}
}

// Restore replaces the store state from a snapshot. The id counter keeps
// counting from the snapshot's high-water mark.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.NextID
	s.items = make([]Issue, len(snap.Items))
	copy(s.items, snap.Items)
}
