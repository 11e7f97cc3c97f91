package floater

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateBody is returned when adding an id that is already tracked.
	ErrDuplicateBody = errors.New("body already registered")
	// ErrUnknownBody is returned for operations on an id that is not tracked.
	ErrUnknownBody = errors.New("body not registered")
)

// Registry tracks bodies by id and keeps insertion order for iteration.
// It is not safe for concurrent use.
type Registry struct {
	index  map[ID]int
	bodies []Body
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[ID]int)}
}

// Len returns the number of tracked bodies.
func (r *Registry) Len() int { return len(r.bodies) }

// Add starts tracking b.
func (r *Registry) Add(b Body) error {
	if _, ok := r.index[b.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBody, b.ID)
	}
	r.index[b.ID] = len(r.bodies)
	r.bodies = append(r.bodies, b)
	return nil
}

// Remove stops tracking id.
func (r *Registry) Remove(id ID) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	copy(r.bodies[i:], r.bodies[i+1:])
	r.bodies = r.bodies[:len(r.bodies)-1]
	delete(r.index, id)
	for j := i; j < len(r.bodies); j++ {
		r.index[r.bodies[j].ID] = j
	}
	return nil
}

// Update replaces the stored state of b.ID.
func (r *Registry) Update(b Body) error {
	i, ok := r.index[b.ID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, b.ID)
	}
	r.bodies[i] = b
	return nil
}

// Get returns the body stored under id.
func (r *Registry) Get(id ID) (Body, bool) {
	i, ok := r.index[id]
	if !ok {
		return Body{}, false
	}
	return r.bodies[i], true
}

// SetSuspended toggles whether the integrator moves id.
func (r *Registry) SetSuspended(id ID, suspended bool) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	r.bodies[i].Suspended = suspended
	return nil
}

// Bodies copies the tracked bodies into dst in insertion order.
func (r *Registry) Bodies(dst []Body) []Body {
	return append(dst[:0], r.bodies...)
}

// Integrate advances every tracked body by one tick.
func (r *Registry) Integrate(in *Integrator, s Sampler) error {
	_, err := in.Integrate(r.bodies, s)
	return err
}
