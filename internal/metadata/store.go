// Package metadata holds the structural model of the Kotlin declarations
// fakes are generated for, plus the cross-declaration store shared between
// the loading and generation phases.
package metadata

import (
	"sort"
	"sync"
)

// Store indexes loaded declarations by qualified name.
//
// Loading and generation may run on different goroutines, so all methods
// are safe for concurrent use. Each key is written by exactly one loader
// pass; a second Put for the same qualified name replaces the previous
// value rather than merging.
type Store struct {
	mu sync.RWMutex

	interfaces map[string]*Interface
	classes    map[string]*Class
	enums      map[string]*Enum
}

// NewStore creates an empty declaration store.
func NewStore() *Store {
	return &Store{
		interfaces: make(map[string]*Interface),
		classes:    make(map[string]*Class),
		enums:      make(map[string]*Enum),
	}
}

// PutInterface registers an interface declaration.
func (s *Store) PutInterface(i *Interface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfaces[i.QualifiedName] = i
}

// PutClass registers a class declaration.
func (s *Store) PutClass(c *Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[c.QualifiedName] = c
}

// PutEnum registers an enum declaration.
func (s *Store) PutEnum(e *Enum) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enums[e.QualifiedName] = e
}

// Interface looks up an interface by qualified name.
func (s *Store) Interface(qualifiedName string) (*Interface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.interfaces[qualifiedName]
	return i, ok
}

// Class looks up a class by qualified name.
func (s *Store) Class(qualifiedName string) (*Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[qualifiedName]
	return c, ok
}

// Enum looks up an enum by qualified name.
func (s *Store) Enum(qualifiedName string) (*Enum, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enums[qualifiedName]
	return e, ok
}

// EnumByName looks up an enum by simple name, preferring a match in the
// given package. Used when a type reference carries no qualifier.
func (s *Store) EnumByName(name, pkg string) (*Enum, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pkg != "" {
		if e, ok := s.enums[pkg+"."+name]; ok {
			return e, true
		}
	}
	for _, e := range s.enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Interfaces returns all interfaces sorted by qualified name.
func (s *Store) Interfaces() []*Interface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Interface, 0, len(s.interfaces))
	for _, i := range s.interfaces {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].QualifiedName < out[b].QualifiedName })
	return out
}

// Classes returns all classes sorted by qualified name.
func (s *Store) Classes() []*Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].QualifiedName < out[b].QualifiedName })
	return out
}

// Enums returns all enums sorted by qualified name.
func (s *Store) Enums() []*Enum {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Enum, 0, len(s.enums))
	for _, e := range s.enums {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].QualifiedName < out[b].QualifiedName })
	return out
}

// Len returns the number of stored declarations of all kinds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.interfaces) + len(s.classes) + len(s.enums)
}
