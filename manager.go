package panels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	defaultMaxConcurrentLoads = 4
	defaultLoadTimeout        = 30 * time.Second
)

// currentTPS reports the game's target ticks per second.
var currentTPS = ebiten.TPS

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	// Logger receives lifecycle logs. Defaults to slog.Default().
	Logger *slog.Logger
	// Messenger is told about panel registration and lifecycle events.
	// Defaults to NopMessenger.
	Messenger Messenger
	// Loader produces visuals for cache misses. Required before the first
	// open that misses the cache.
	Loader Loader
	// NewSurface builds the surface for a layer. Defaults to node-backed
	// surfaces parented under Manager.Root.
	NewSurface func(LayerKind) SurfaceLayer
	// Debug makes registration bugs (unknown panels, invalid layers) panic
	// and enables tree consistency checks.
	Debug bool
	// MaxConcurrentLoads bounds loader calls running at once. Default 4.
	MaxConcurrentLoads int
	// LoadTimeout bounds a single loader call. Default 30s.
	LoadTimeout time.Duration
	// OnError is called from the update loop with every *PanelLoadError.
	OnError func(error)
}

// openRequest is an open waiting on its layer: either for its visual or for
// an earlier open on the same layer. A front request raises a panel that is
// already on the stack instead of pushing it.
type openRequest struct {
	panel     *Panel
	msg       any
	prev      PanelState
	visual    *Visual
	err       error
	ready     bool
	cancelled bool
	front     bool
}

// Manager owns the panel registry, the visual cache, one surface and one
// stack per layer, and the cache root holding hidden visuals. All methods
// must be called from the game's update goroutine.
type Manager struct {
	opts      Options
	log       *slog.Logger
	messenger Messenger
	registry  *Registry
	cache     *VisualCache
	dispatch  *dispatcher

	root      *Node
	cacheRoot *Node
	surfaces  [layerCount]SurfaceLayer
	stacks    [layerCount]*LayerStack
	pending   [layerCount][]*openRequest

	shownSeq    uint64
	lastUpdate  time.Time
	initialized bool
}

// New creates a Manager. Call Initialize before opening panels.
func New(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Messenger == nil {
		opts.Messenger = NopMessenger{}
	}
	if opts.MaxConcurrentLoads <= 0 {
		opts.MaxConcurrentLoads = defaultMaxConcurrentLoads
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	m := &Manager{
		opts:      opts,
		log:       opts.Logger,
		messenger: opts.Messenger,
		registry:  NewRegistry(),
		dispatch:  &dispatcher{},
	}
	loader := opts.Loader
	if loader == nil {
		loader = LoaderFunc(func(_ context.Context, address string) (*Visual, error) {
			return nil, fmt.Errorf("%w: %q: no loader configured", ErrLoadFailed, address)
		})
	}
	m.cache = newVisualCache(loader, m.dispatch, opts.MaxConcurrentLoads, opts.LoadTimeout, m.log)
	setDebugMode(opts.Debug, m.log)
	return m
}

// Initialize builds the surfaces in sort order and the cache root. It must be
// called exactly once.
func (m *Manager) Initialize() error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	m.root = NewContainer("UIRoot")
	for _, kind := range Layers {
		var s SurfaceLayer
		if m.opts.NewSurface != nil {
			s = m.opts.NewSurface(kind)
		} else {
			s = newNodeSurface(kind)
		}
		if nb, ok := s.(interface{ Node() *Node }); ok {
			m.root.AddChild(nb.Node())
		}
		m.surfaces[kind] = s
		m.stacks[kind] = &LayerStack{layer: kind}
	}

	m.cacheRoot = NewContainer("UICacheRoot")
	m.cacheRoot.Visible = false
	m.cacheRoot.Interactable = false
	m.cacheRoot.ZIndex = -1
	m.root.AddChild(m.cacheRoot)

	m.initialized = true
	m.log.Debug("panels: manager initialized", "layers", len(Layers))
	return nil
}

// Register adds a panel definition.
func (m *Manager) Register(def Definition) error {
	return m.registry.Register(def)
}

// Registry returns the panel registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Cache returns the visual cache.
func (m *Manager) Cache() *VisualCache { return m.cache }

// Root returns the tree holding every surface and the cache root.
func (m *Manager) Root() *Node { return m.root }

// CacheRoot returns the hidden node that parents closed panels' visuals.
func (m *Manager) CacheRoot() *Node { return m.cacheRoot }

// Panel returns the instance for id, or nil if it was never opened.
func (m *Manager) Panel(id PanelID) *Panel {
	return m.registry.Lookup(id)
}

// StackFor returns the stack for layer.
func (m *Manager) StackFor(layer LayerKind) (*LayerStack, error) {
	if err := m.checkLayer(layer); err != nil {
		return nil, err
	}
	return m.stacks[layer], nil
}

// SurfaceFor returns the surface for layer.
func (m *Manager) SurfaceFor(layer LayerKind) (SurfaceLayer, error) {
	if err := m.checkLayer(layer); err != nil {
		return nil, err
	}
	return m.surfaces[layer], nil
}

// Pending returns the ids of opens queued on layer, oldest first.
func (m *Manager) Pending(layer LayerKind) []PanelID {
	if !layer.Valid() {
		return nil
	}
	ids := make([]PanelID, len(m.pending[layer]))
	for i, req := range m.pending[layer] {
		ids[i] = req.panel.id
	}
	return ids
}

// Open shows panel id on its layer. A cache hit shows it before Open
// returns; a miss queues the open and finishes it from Update once the visual
// has loaded and every earlier open on the layer has been applied.
//
// Opening the panel already on top of its layer returns ErrDuplicatePanel and
// changes nothing. Opening a panel that is open deeper in its stack brings it
// to the front and refreshes it with msg, after any opens already queued on
// the layer.
func (m *Manager) Open(id PanelID, msg any) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	p, err := m.registry.GetOrCreate(id)
	if err != nil {
		return m.structural(err)
	}
	if p.ctx == nil {
		p.ctx = &Context{Panel: p, Manager: m, Messenger: m.messenger, Logger: m.log.With(p.logAttrs()...)}
	}
	layer := p.layer
	stack := m.stacks[layer]

	if m.logicalTop(layer) == p {
		m.log.Warn("panels: panel already open", p.logAttrs()...)
		return fmt.Errorf("%w: %s", ErrDuplicatePanel, p.name)
	}

	if i := m.pendingIndex(p); i >= 0 {
		q := m.pending[layer]
		req := q[i]
		copy(q[i:], q[i+1:])
		q[len(q)-1] = req
		req.msg = msg
		m.log.Debug("panels: moved queued open to front", p.logAttrs()...)
		m.flush(layer)
		return nil
	}

	if stack.Contains(p) {
		if len(m.pending[layer]) == 0 {
			m.bringToFront(p, msg)
			return nil
		}
		req := &openRequest{panel: p, msg: msg, prev: p.state, ready: true, front: true}
		m.pending[layer] = append(m.pending[layer], req)
		m.log.Debug("panels: queued bring to front", p.logAttrs()...)
		m.flush(layer)
		return nil
	}

	req := &openRequest{panel: p, msg: msg, prev: p.state}
	switch p.state {
	case StateHidden:
		req.visual = p.visual
		req.ready = true
	case StateUnloaded:
		v, hit := m.cache.Resolve(p.address, func(v *Visual, err error) {
			m.complete(req, v, err)
		})
		if hit {
			req.visual = v
			req.ready = true
		} else {
			m.log.Debug("panels: loading panel", append(p.logAttrs(), "address", p.address)...)
		}
	default:
		// Shown panels are always on their stack and Loading panels always
		// queued, both handled above.
		return fmt.Errorf("panels: open %s: unexpected state %s", p.name, p.state)
	}
	p.state = StateLoading
	m.pending[layer] = append(m.pending[layer], req)
	m.flush(layer)
	return nil
}

// Close pops the top panel of layer, hides it and parks its visual under the
// cache root. If opens are still queued on layer, the most recent one is
// cancelled instead, since it would have become the top.
func (m *Manager) Close(layer LayerKind, msg any) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if err := m.checkLayer(layer); err != nil {
		return err
	}

	if q := m.pending[layer]; len(q) > 0 {
		req := q[len(q)-1]
		q[len(q)-1] = nil
		m.pending[layer] = q[:len(q)-1]
		m.cancel(req)
		m.flush(layer)
		return nil
	}

	p, ok := m.stacks[layer].Pop()
	if !ok {
		m.log.Warn("panels: close on empty layer", "layer", layer.String())
		return fmt.Errorf("%w: %s", ErrEmptyStack, layer)
	}
	m.hide(p, msg)
	return nil
}

// CloseAllOfLayer closes panels on layer until its stack and queue are empty.
func (m *Manager) CloseAllOfLayer(layer LayerKind) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if err := m.checkLayer(layer); err != nil {
		return err
	}
	for len(m.pending[layer]) > 0 || m.stacks[layer].Len() > 0 {
		if err := m.Close(layer, nil); err != nil {
			return err
		}
	}
	return nil
}

// CloseAllPanels empties every layer, innermost overlay first: notice,
// dialogue, normal, then HUD. Surface visibility is left untouched.
func (m *Manager) CloseAllPanels() error {
	var errs []error
	for _, layer := range closeOrder {
		if err := m.CloseAllOfLayer(layer); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ShowSurface makes a whole layer visible and interactive without touching
// its stack.
func (m *Manager) ShowSurface(layer LayerKind) error {
	return m.setSurface(layer, true)
}

// HideSurface hides a whole layer and blocks its input without closing the
// panels on it, e.g. hiding the HUD during a cut-scene.
func (m *Manager) HideSurface(layer LayerKind) error {
	return m.setSurface(layer, false)
}

func (m *Manager) setSurface(layer LayerKind, on bool) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if err := m.checkLayer(layer); err != nil {
		return err
	}
	s := m.surfaces[layer]
	s.SetVisible(on)
	s.SetInteractable(on)
	m.log.Debug("panels: surface toggled", "layer", layer.String(), "visible", on)
	return nil
}

// Update finishes opens whose loads completed since the last call, then ticks
// every shown panel that asked for per-tick updates. Call it once per frame
// from ebiten.Game.Update.
func (m *Manager) Update() error {
	m.dispatch.drain()
	m.tick(m.frameDelta())
	return nil
}

// frameDelta returns the seconds covered by this update: one tick at the
// target TPS, or the measured time since the last update when the game runs
// with ebiten.SyncWithFPS.
func (m *Manager) frameDelta() float64 {
	now := time.Now()
	last := m.lastUpdate
	m.lastUpdate = now
	if tps := currentTPS(); tps > 0 {
		return 1 / float64(tps)
	}
	if last.IsZero() {
		return 1 / float64(ebiten.DefaultTPS)
	}
	return now.Sub(last).Seconds()
}

// Settle blocks until every in-flight load has finished and its open has
// been applied. Loading screens and tests use it to avoid polling Update.
func (m *Manager) Settle() {
	for {
		m.cache.Wait()
		if m.dispatch.drain() == 0 && m.dispatch.size() == 0 {
			return
		}
	}
}

// Preload warms the cache with the visuals of the given panels.
func (m *Manager) Preload(ctx context.Context, ids ...PanelID) error {
	addresses := make([]string, 0, len(ids))
	for _, id := range ids {
		def, ok := m.registry.Definition(id)
		if !ok {
			return m.structural(fmt.Errorf("%w: id %d", ErrUnknownPanel, id))
		}
		addresses = append(addresses, def.Address)
	}
	return m.cache.Preload(ctx, addresses...)
}

// Purge drops the cached visuals of hidden, non-permanent panels and returns
// those panels to Unloaded. Visuals still used by a shown, queued or
// permanent panel are kept. Initialize does not run again when a purged panel
// is reopened. It returns the number of visuals evicted.
func (m *Manager) Purge() int {
	keep := make(map[string]bool)
	for _, p := range m.registry.Created() {
		if p.permanent || (p.state != StateHidden && p.state != StateUnloaded) {
			keep[p.address] = true
		}
	}
	evicted := 0
	for _, p := range m.registry.Created() {
		if p.state != StateHidden || keep[p.address] {
			continue
		}
		if m.cache.Evict(p.address) {
			evicted++
		}
		p.visual = nil
		p.state = StateUnloaded
		m.log.Debug("panels: purged panel visual", append(p.logAttrs(), "address", p.address)...)
	}
	return evicted
}

// --- transitions ---

// logicalTop is the panel that will be on top of layer once every queued
// open has been applied.
func (m *Manager) logicalTop(layer LayerKind) *Panel {
	if q := m.pending[layer]; len(q) > 0 {
		return q[len(q)-1].panel
	}
	p, _ := m.stacks[layer].Peek()
	return p
}

func (m *Manager) pendingIndex(p *Panel) int {
	for i, req := range m.pending[p.layer] {
		if req.panel == p {
			return i
		}
	}
	return -1
}

// complete runs on the update loop when a queued open's load finishes.
func (m *Manager) complete(req *openRequest, v *Visual, err error) {
	if req.cancelled {
		m.log.Debug("panels: load finished for cancelled open", req.panel.logAttrs()...)
		return
	}
	req.visual, req.err, req.ready = v, err, true
	m.flush(req.panel.layer)
}

// flush applies queued opens on layer in order until one is still waiting.
func (m *Manager) flush(layer LayerKind) {
	for len(m.pending[layer]) > 0 && m.pending[layer][0].ready {
		req := m.pending[layer][0]
		m.pending[layer][0] = nil
		m.pending[layer] = m.pending[layer][1:]
		switch {
		case req.front:
			m.bringToFront(req.panel, req.msg)
		case req.err != nil:
			m.failLoad(req)
		default:
			m.show(req.panel, req.visual, req.msg)
		}
	}
}

func (m *Manager) show(p *Panel, v *Visual, msg any) {
	p.visual = v
	m.attach(p)
	p.state = StateShown
	m.stacks[p.layer].Push(p)

	if !p.initialized {
		p.initialized = true
		p.behavior.Initialize(p.ctx)
	}
	m.messenger.Register(p)
	p.behavior.OnShow(msg)
	p.behavior.OnRefresh(msg)
	m.messenger.Notify(Event{Kind: EventShown, Panel: p.id, Name: p.name, Layer: p.layer})
	m.log.Debug("panels: panel shown", p.logAttrs()...)
}

func (m *Manager) hide(p *Panel, msg any) {
	p.ticking = false
	p.behavior.OnHide(msg)
	m.messenger.Unregister(p.id)

	if v := p.visual; v.owner == p {
		m.surfaces[p.layer].DetachChild(v)
		v.owner = nil
		if next := m.nextHolder(p); next != nil {
			m.attach(next)
			m.restack(next)
			m.log.Debug("panels: shared visual handed back", append(next.logAttrs(), "address", v.Address)...)
		} else {
			v.Root.Visible = false
			m.cacheRoot.AddChild(v.Root)
		}
	}
	p.state = StateHidden
	m.messenger.Notify(Event{Kind: EventHidden, Panel: p.id, Name: p.name, Layer: p.layer})
	m.log.Debug("panels: panel hidden", p.logAttrs()...)
}

func (m *Manager) bringToFront(p *Panel, msg any) {
	if !m.stacks[p.layer].moveToTop(p) {
		return
	}
	m.attach(p)
	m.log.Debug("panels: brought panel to front", p.logAttrs()...)
	p.behavior.OnRefresh(msg)
}

// attach puts p's visual on p's surface and makes p its owner, taking it off
// another layer's surface if a panel there held it last.
func (m *Manager) attach(p *Panel) {
	v := p.visual
	if m.cacheRoot.HasChild(v.Root) {
		m.cacheRoot.RemoveChild(v.Root)
	}
	if prev := v.owner; prev != nil && prev != p && prev.layer != p.layer {
		m.surfaces[prev.layer].DetachChild(v)
	}
	v.owner = p
	m.surfaces[p.layer].AttachChild(v)
	v.Root.Visible = true
	m.shownSeq++
	p.shownSeq = m.shownSeq
}

// nextHolder picks the shown panel that takes over p's visual when p, its
// owner, is hidden: the new top of p's layer if it shares the visual, else
// the shown holder attached most recently. It returns nil if none is left.
func (m *Manager) nextHolder(p *Panel) *Panel {
	v := p.visual
	if top, ok := m.stacks[p.layer].Peek(); ok && top.visual == v {
		return top
	}
	var next *Panel
	for _, q := range m.registry.Created() {
		if q == p || q.visual != v || q.state != StateShown {
			continue
		}
		if next == nil || q.shownSeq > next.shownSeq {
			next = q
		}
	}
	return next
}

// restack raises the visuals of the panels above p on its layer again, so
// the surface keeps stack order after p's visual was re-attached.
func (m *Manager) restack(p *Panel) {
	above := false
	for _, q := range m.stacks[p.layer].Panels() {
		if q == p {
			above = true
			continue
		}
		if above && q.visual.owner == q {
			m.surfaces[p.layer].AttachChild(q.visual)
		}
	}
}

func (m *Manager) cancel(req *openRequest) {
	req.cancelled = true
	p := req.panel
	if !req.front {
		p.state = req.prev
	}
	m.messenger.Notify(Event{Kind: EventOpenCancelled, Panel: p.id, Name: p.name, Layer: p.layer})
	m.log.Info("panels: queued open cancelled by close", p.logAttrs()...)
}

func (m *Manager) failLoad(req *openRequest) {
	p := req.panel
	p.state = StateUnloaded
	err := &PanelLoadError{Panel: p.id, Name: p.name, Address: p.address, Err: req.err}
	m.log.Warn("panels: panel load failed", append(p.logAttrs(), "address", p.address, "err", req.err)...)
	m.messenger.Notify(Event{Kind: EventLoadFailed, Panel: p.id, Name: p.name, Layer: p.layer, Err: err})
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}
}

func (m *Manager) tick(dt float64) {
	for _, p := range m.registry.Created() {
		if !p.ticking || p.state != StateShown {
			continue
		}
		if t, ok := p.behavior.(Ticker); ok {
			t.Tick(dt)
		}
	}
}

// --- errors ---

func (m *Manager) checkLayer(layer LayerKind) error {
	if layer.Valid() {
		return nil
	}
	return m.structural(fmt.Errorf("%w: %s", ErrUnknownLayer, layer))
}

// structural logs registration bugs loudly and panics in debug mode.
func (m *Manager) structural(err error) error {
	m.log.Error("panels: registration error", "err", err)
	if m.opts.Debug {
		panic(err)
	}
	return err
}
