package panels

import "fmt"

// Registry maps panel ids to their definitions and lazily created instances.
// Ids index slices directly, so applications should number panels densely
// from zero.
type Registry struct {
	defs    []*Definition
	panels  []*Panel
	created []*Panel // creation order, used by the tick scheduler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a panel definition. Each id may be registered once.
func (r *Registry) Register(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	for int(def.ID) >= len(r.defs) {
		r.defs = append(r.defs, nil)
		r.panels = append(r.panels, nil)
	}
	if r.defs[def.ID] != nil {
		return fmt.Errorf("%w: %s: id %d already registered as %s",
			ErrInvalidDefinition, def.label(), def.ID, r.defs[def.ID].label())
	}
	r.defs[def.ID] = &def
	return nil
}

// Definition returns the registered definition for id.
func (r *Registry) Definition(id PanelID) (Definition, bool) {
	if !r.known(id) {
		return Definition{}, false
	}
	return *r.defs[id], true
}

// GetOrCreate returns the instance for id, constructing it through the
// definition's factory on first use.
func (r *Registry) GetOrCreate(id PanelID) (*Panel, error) {
	if !r.known(id) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownPanel, id)
	}
	if p := r.panels[id]; p != nil {
		return p, nil
	}
	p := newPanel(r.defs[id])
	r.panels[id] = p
	r.created = append(r.created, p)
	return p, nil
}

// Lookup returns the instance for id without creating it.
func (r *Registry) Lookup(id PanelID) *Panel {
	if !r.known(id) {
		return nil
	}
	return r.panels[id]
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	n := 0
	for _, d := range r.defs {
		if d != nil {
			n++
		}
	}
	return n
}

// Created returns the instantiated panels in creation order. The returned
// slice MUST NOT be mutated.
func (r *Registry) Created() []*Panel {
	return r.created
}

func (r *Registry) known(id PanelID) bool {
	return id >= 0 && int(id) < len(r.defs) && r.defs[id] != nil
}
