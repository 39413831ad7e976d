package shell

import (
	"maps"
	"slices"
)

// ParamStore maps parameter names to values previously evaluated by the database.
// Names are unique; setting an existing name replaces its value.
// ParamStore is not safe for concurrent use.
type ParamStore struct {
	values map[string]any
}

// NewParamStore returns an empty store.
func NewParamStore() *ParamStore {
	return &ParamStore{values: make(map[string]any)}
}

// Put stores value under name, replacing any previous value.
func (s *ParamStore) Put(name string, value any) {
	s.values[name] = value
}

// Get returns the value stored under name.
func (s *ParamStore) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Remove deletes name and returns its previous value, if any.
func (s *ParamStore) Remove(name string) (any, bool) {
	v, ok := s.values[name]
	if ok {
		delete(s.values, name)
	}
	return v, ok
}

// Snapshot returns a copy of all bindings. Changes to the copy do not reach the store.
func (s *ParamStore) Snapshot() map[string]any {
	return maps.Clone(s.values)
}

// Names returns the bound names in sorted order.
func (s *ParamStore) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of bindings.
func (s *ParamStore) Len() int {
	return len(s.values)
}
