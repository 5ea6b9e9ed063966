package pipeline

import (
	"sort"
	"strings"
)

// State is the accumulating set of named text fields threaded through a run.
// Fields are never removed; writing an existing field replaces its value but
// keeps its original position.
type State struct {
	values map[string]string
	order  []string
}

// NewState creates a state seeded with the given fields in name order.
func NewState(seed map[string]string) *State {
	s := &State{values: make(map[string]string, len(seed))}
	names := make([]string, 0, len(seed))
	for name := range seed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Set(name, seed[name])
	}
	return s
}

// Get returns the raw value of a field.
func (s *State) Get(field string) (string, bool) {
	value, ok := s.values[field]
	return value, ok
}

// Has reports whether the field is present with non-blank text.
func (s *State) Has(field string) bool {
	value, ok := s.values[field]
	return ok && strings.TrimSpace(value) != ""
}

// Set writes a field.
func (s *State) Set(field, value string) {
	if _, ok := s.values[field]; !ok {
		s.order = append(s.order, field)
	}
	s.values[field] = value
}

// Fields returns field names in order of first write.
func (s *State) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of fields.
func (s *State) Len() int {
	return len(s.order)
}

// Snapshot returns a copy of all fields.
func (s *State) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
