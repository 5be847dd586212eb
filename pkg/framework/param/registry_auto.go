package param

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when a name is registered twice. Hosts look
// parameters up by name, so names must be unique within a registry.
var ErrDuplicateName = errors.New("param: duplicate parameter name")

// AutoRegistry is a Registry that assigns IDs in registration order and
// finds parameters by name.
type AutoRegistry struct {
	*Registry
	nextID uint32
	byName map[string]uint32
}

// NewAutoRegistry creates an empty registry. The first parameter gets ID 0.
func NewAutoRegistry() *AutoRegistry {
	return &AutoRegistry{
		Registry: NewRegistry(),
		byName:   make(map[string]uint32),
	}
}

// Register adds parameters in order. A parameter with ID 0 gets the next
// free ID; one with an explicit ID keeps it and numbering continues after
// it.
func (r *AutoRegistry) Register(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, dup := r.byName[p.Name]; dup {
			return fmt.Errorf("%w %q", ErrDuplicateName, p.Name)
		}
		if p.ID == 0 {
			p.ID = r.nextID
		}
		if existing, ok := r.params[p.ID]; ok {
			return fmt.Errorf("parameter ID %d already used by '%s'", p.ID, existing.Name)
		}

		r.nextID = max(r.nextID, p.ID+1)
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
		r.byName[p.Name] = p.ID
	}
	return nil
}

// GetByName returns the parameter registered under name, or nil.
func (r *AutoRegistry) GetByName(name string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.params[id]
}

// GetID returns the ID registered for name.
func (r *AutoRegistry) GetID(name string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	return id, ok
}

// Names returns the parameter names in registration order.
func (r *AutoRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	for i, id := range r.order {
		names[i] = r.params[id].Name
	}
	return names
}
