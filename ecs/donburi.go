package ecs

import (
	"github.com/phanxgames/panels"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// PanelData is the component carried by the entity of every shown panel.
type PanelData struct {
	ID    panels.PanelID
	Name  string
	Layer panels.LayerKind
}

// PanelComponent marks entities that stand for registered (shown) panels.
var PanelComponent = donburi.NewComponentType[PanelData]()

// PanelEventType is the Donburi event type for panel lifecycle events.
// Subscribe to this in your ECS systems and drain it with ProcessEvents.
var PanelEventType = events.NewEventType[panels.Event]()

// ShownPanels matches every registered panel entity.
var ShownPanels = donburi.NewQuery(filter.Contains(PanelComponent))

// Messenger is a panels.Messenger backed by a Donburi world. Registering a
// panel creates an entity with a PanelComponent; unregistering removes it.
type Messenger struct {
	world    donburi.World
	entities map[panels.PanelID]donburi.Entity
}

// NewMessenger creates a Messenger publishing into world.
func NewMessenger(world donburi.World) *Messenger {
	return &Messenger{
		world:    world,
		entities: make(map[panels.PanelID]donburi.Entity),
	}
}

// Register implements panels.Messenger.
func (m *Messenger) Register(p *panels.Panel) {
	if e, ok := m.entities[p.ID()]; ok && m.world.Valid(e) {
		return
	}
	e := m.world.Create(PanelComponent)
	PanelComponent.SetValue(m.world.Entry(e), PanelData{
		ID:    p.ID(),
		Name:  p.Name(),
		Layer: p.Layer(),
	})
	m.entities[p.ID()] = e
}

// Unregister implements panels.Messenger.
func (m *Messenger) Unregister(id panels.PanelID) {
	e, ok := m.entities[id]
	if !ok {
		return
	}
	delete(m.entities, id)
	if m.world.Valid(e) {
		m.world.Remove(e)
	}
}

// Notify implements panels.Messenger. Events are queued on the world until
// PanelEventType.ProcessEvents runs.
func (m *Messenger) Notify(e panels.Event) {
	PanelEventType.Publish(m.world, e)
}

// Entity returns the entity standing for a registered panel.
func (m *Messenger) Entity(id panels.PanelID) (donburi.Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// Registered reports whether id currently has an entity.
func (m *Messenger) Registered(id panels.PanelID) bool {
	_, ok := m.entities[id]
	return ok
}
