package orb

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateObserver is returned when two orbs share an observer name
	ErrDuplicateObserver = errors.New("duplicate observer name")
	// ErrObserverNotFound is returned by Get for an unknown observer
	ErrObserverNotFound = errors.New("observer not found")
)

// Registry holds the orbs of a process keyed by observer name
type Registry struct {
	orbs  map[string]*Orb
	names []string
}

// NewRegistry indexes orbs by observer name
func NewRegistry(orbs ...*Orb) (*Registry, error) {
	reg := &Registry{
		orbs:  make(map[string]*Orb, len(orbs)),
		names: make([]string, 0, len(orbs)),
	}

	for _, o := range orbs {
		name := o.Observer().Name()
		if _, exists := reg.orbs[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateObserver, name)
		}

		reg.orbs[name] = o
		reg.names = append(reg.names, name)
	}

	sort.Strings(reg.names)

	return reg, nil
}

// Get returns the orb for the named observer
func (r *Registry) Get(name string) (*Orb, error) {
	o, ok := r.orbs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObserverNotFound, name)
	}

	return o, nil
}

// Names returns the observer names in sorted order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// All returns every orb ordered by observer name
func (r *Registry) All() []*Orb {
	out := make([]*Orb, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.orbs[name])
	}

	return out
}

// Len returns the number of orbs
func (r *Registry) Len() int {
	return len(r.orbs)
}
