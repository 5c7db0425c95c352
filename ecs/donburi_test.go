package ecs

import (
	"context"
	"testing"

	"github.com/phanxgames/panels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

const (
	inventory panels.PanelID = iota
	toast
)

func newManager(t *testing.T, world donburi.World) *panels.Manager {
	t.Helper()
	loader := panels.LoaderFunc(func(_ context.Context, address string) (*panels.Visual, error) {
		return panels.NewVisual(address, panels.NewContainer(address)), nil
	})
	m := panels.New(panels.Options{Loader: loader, Messenger: NewMessenger(world)})
	newBehavior := func() panels.Behavior { return panels.BaseBehavior{} }
	require.NoError(t, m.Register(panels.Definition{
		ID: inventory, Name: "Inventory", Layer: panels.LayerNormal, Address: "ui/inventory", New: newBehavior,
	}))
	require.NoError(t, m.Register(panels.Definition{
		ID: toast, Name: "Toast", Layer: panels.LayerNotice, Address: "ui/toast", New: newBehavior,
	}))
	require.NoError(t, m.Initialize())
	return m
}

func TestNewMessenger(t *testing.T) {
	world := donburi.NewWorld()
	var m panels.Messenger = NewMessenger(world)
	require.NotNil(t, m)
}

func TestMessenger_ShownPanelsAreEntities(t *testing.T) {
	world := donburi.NewWorld()
	m := newManager(t, world)

	require.NoError(t, m.Open(inventory, nil))
	require.NoError(t, m.Open(toast, nil))
	m.Settle()

	assert.Equal(t, 2, ShownPanels.Count(world))

	var names []string
	ShownPanels.Each(world, func(entry *donburi.Entry) {
		names = append(names, PanelComponent.Get(entry).Name)
	})
	assert.ElementsMatch(t, []string{"Inventory", "Toast"}, names)

	require.NoError(t, m.Close(panels.LayerNotice, nil))
	assert.Equal(t, 1, ShownPanels.Count(world))
	entry, ok := ShownPanels.First(world)
	require.True(t, ok)
	data := PanelComponent.Get(entry)
	assert.Equal(t, inventory, data.ID)
	assert.Equal(t, panels.LayerNormal, data.Layer)
}

func TestMessenger_RegisterIsIdempotent(t *testing.T) {
	world := donburi.NewWorld()
	msgr := NewMessenger(world)
	m := newManager(t, donburi.NewWorld())
	require.NoError(t, m.Open(inventory, nil))
	m.Settle()
	p := m.Panel(inventory)

	msgr.Register(p)
	first, ok := msgr.Entity(inventory)
	require.True(t, ok)
	msgr.Register(p)
	second, _ := msgr.Entity(inventory)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, ShownPanels.Count(world))

	msgr.Unregister(inventory)
	msgr.Unregister(inventory)
	assert.False(t, msgr.Registered(inventory))
	assert.Equal(t, 0, ShownPanels.Count(world))
}

func TestMessenger_PublishesLifecycleEvents(t *testing.T) {
	world := donburi.NewWorld()
	m := newManager(t, world)

	var received []panels.Event
	PanelEventType.Subscribe(world, func(w donburi.World, e panels.Event) {
		received = append(received, e)
	})

	require.NoError(t, m.Open(inventory, nil))
	m.Settle()
	require.NoError(t, m.Close(panels.LayerNormal, nil))

	// Events stay queued until processed.
	assert.Empty(t, received)
	PanelEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, panels.EventShown, received[0].Kind)
	assert.Equal(t, inventory, received[0].Panel)
	assert.Equal(t, panels.EventHidden, received[1].Kind)
	assert.Equal(t, panels.LayerNormal, received[1].Layer)
}

func TestMessenger_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	msgr := NewMessenger(world)

	var count1, count2 int
	PanelEventType.Subscribe(world, func(w donburi.World, e panels.Event) {
		count1++
	})
	PanelEventType.Subscribe(world, func(w donburi.World, e panels.Event) {
		count2++
	})

	msgr.Notify(panels.Event{Kind: panels.EventOpenCancelled, Panel: toast})
	events.ProcessAllEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}
