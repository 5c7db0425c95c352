// Package ecs provides ECS adapters for panels.
//
// The primary adapter is [NewMessenger], a panels.Messenger that mirrors shown
// panels into a [Donburi] world as entities carrying [PanelComponent] and
// publishes lifecycle events as [PanelEventType]. Systems can query
// [ShownPanels] or subscribe to the event type.
//
// Usage:
//
//	world := donburi.NewWorld()
//	m := panels.New(panels.Options{Messenger: ecs.NewMessenger(world)})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
