// Package settings holds runtime-tunable configuration variables exposed
// through the admin surface, as opposed to the boot-time configuration in
// internal/app.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ostiary-dev/ostiary/internal/shared"
)

// Kind classifies how a variable is edited and validated.
type Kind string

const (
	KindString   Kind = "string"
	KindPassword Kind = "password"
	KindReadOnly Kind = "read-only"
	KindEnum     Kind = "enum"
)

// Variable is a single named runtime setting.
type Variable struct {
	Name        string   `json:"name"`
	Value       string   `json:"value"`
	Description string   `json:"description"`
	Kind        Kind     `json:"kind"`
	Allowed     []string `json:"allowedValues,omitempty"`
}

// Describe returns the description, falling back to the name.
func (v Variable) Describe() string {
	if v.Description != "" {
		return v.Description
	}
	return v.Name
}

func (v *Variable) setValue(value string) error {
	if v.Kind == KindEnum {
		ok := false
		for _, allowed := range v.Allowed {
			if value == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("settings: %s: %w: %q", v.Name, shared.ErrInvalidValue, value)
		}
	}
	v.Value = value
	return nil
}

// Model is a registry of runtime variables keyed by name.
type Model struct {
	mu   sync.RWMutex
	vars map[string]*Variable
}

// NewModel constructs an empty Model.
func NewModel() *Model {
	return &Model{vars: make(map[string]*Variable)}
}

// AddVariable registers a variable, replacing any previous one of the same name.
func (m *Model) AddVariable(v Variable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[v.Name] = &v
}

// Get returns the value of a variable. Unknown names return an error.
func (m *Model) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	if !ok {
		return "", fmt.Errorf("settings: variable %s: %w", name, shared.ErrNotFound)
	}
	return v.Value, nil
}

// Set updates the value of a variable, enforcing enum membership. Unknown
// names return an error.
func (m *Model) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[name]
	if !ok {
		return fmt.Errorf("settings: variable %s: %w", name, shared.ErrNotFound)
	}
	return v.setValue(value)
}

// Validate checks whether value would be accepted for the named variable
// without applying it.
func (m *Model) Validate(name, value string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	if !ok {
		return fmt.Errorf("settings: variable %s: %w", name, shared.ErrNotFound)
	}
	probe := *v
	return probe.setValue(value)
}

// Has reports whether the named variable exists.
func (m *Model) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vars[name]
	return ok
}

// IsReadOnly reports whether the named variable refuses writes from the
// admin surface.
func (m *Model) IsReadOnly(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	return ok && v.Kind == KindReadOnly
}

// List returns copies of all variables ordered by name.
func (m *Model) List() []Variable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Variable, 0, len(m.vars))
	for _, v := range m.vars {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MarshalJSON encodes the model as a map of name to variable.
func (m *Model) MarshalJSON() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return json.Marshal(m.vars)
}
