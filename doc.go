// Package panels manages the UI panels of an [Ebitengine] game: which panels
// are open on which layer, in what order, and which loaded visuals can be
// reused when a panel opens again.
//
// # Quick start
//
// Declare panel ids as constants, register one [Definition] per id, then
// initialize the manager and open panels from your update loop:
//
//	const (
//		Inventory panels.PanelID = iota
//		Toast
//	)
//
//	m := panels.New(panels.Options{Loader: panels.NewFSLoader(assets)})
//	m.Register(panels.Definition{
//		ID: Inventory, Name: "Inventory", Layer: panels.LayerNormal,
//		Address: "ui/inventory", New: func() panels.Behavior { return &inventory{} },
//	})
//	m.Initialize()
//	m.Open(Inventory, nil)
//
// Call [Manager.Update] once per frame from ebiten.Game.Update. Loads run in
// the background; Update applies the opens they were holding up.
//
// # Layers and stacks
//
// Each [LayerKind] has a surface and a LIFO stack. Surfaces sort HUD, Normal,
// Dialogue, Notice from bottom to top. [Manager.Close] pops the top of one
// layer; [Manager.HideSurface] hides a whole layer without closing anything.
//
// # Lifecycle
//
// A panel is created on its first open and lives as long as the manager.
// Its states run Unloaded, Loading, Shown, Hidden, then back to Shown on the
// next open. Initialize runs once; OnShow and OnRefresh on every open; OnHide
// on every close. The [Messenger] sees Register before each OnShow and
// Unregister after each OnHide.
//
// # Visual cache
//
// Loaded visuals are cached by asset address. Closing a panel parks its
// visual under a hidden cache root instead of disposing it, and concurrent
// opens of panels sharing an address trigger a single load.
//
// The [ecs] subpackage provides a [Donburi]-backed [Messenger].
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
// [ecs]: https://pkg.go.dev/github.com/phanxgames/panels/ecs
package panels
