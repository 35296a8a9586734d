package shared

import (
	"encoding/json"
	"sort"
)

// StringSet is an unordered set of strings. It serializes to JSON as a
// sorted array, matching the wire contract for role and permission sets.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given members.
func NewStringSet(members ...string) StringSet {
	s := make(StringSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s StringSet) Has(member string) bool {
	_, ok := s[member]
	return ok
}

// Add inserts a member. Adding an existing member is a no-op.
func (s StringSet) Add(member string) {
	s[member] = struct{}{}
}

// AddAll inserts every member of other.
func (s StringSet) AddAll(other StringSet) {
	for m := range other {
		s[m] = struct{}{}
	}
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	c := make(StringSet, len(s))
	for m := range s {
		c[m] = struct{}{}
	}
	return c
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	members := make([]string, 0, len(s))
	for m := range s {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// MarshalJSON encodes the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of strings into the set.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewStringSet(members...)
	return nil
}
