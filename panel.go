package panels

import (
	"fmt"
	"log/slog"
)

// Behavior is implemented by concrete panels. Embed BaseBehavior to pick up
// no-op defaults and override only the hooks a panel needs.
type Behavior interface {
	// Initialize runs once per panel lifetime, right after its visual is
	// attached for the first time.
	Initialize(ctx *Context)
	// OnShow runs on every open, after the panel is registered with the
	// messenger.
	OnShow(msg any)
	// OnHide runs on every close, before the panel is unregistered.
	OnHide(msg any)
	// OnRefresh runs after OnShow on every open, and when an open brings an
	// already-open panel to the front.
	OnRefresh(msg any)
}

// Ticker is implemented by behaviors that want per-tick updates while their
// panel is shown and ticking (see Panel.StartTicking).
type Ticker interface {
	Tick(dt float64)
}

// BaseBehavior provides no-op hooks.
type BaseBehavior struct{}

func (BaseBehavior) Initialize(*Context) {}
func (BaseBehavior) OnShow(any) {}
func (BaseBehavior) OnHide(any) {}
func (BaseBehavior) OnRefresh(any) {}

// Context is handed to Behavior.Initialize. It carries the collaborators a
// panel may need instead of reaching for globals.
type Context struct {
	Panel     *Panel
	Manager   *Manager
	Messenger Messenger
	Logger    *slog.Logger
}

// Visual returns the panel's current visual.
func (c *Context) Visual() *Visual {
	return c.Panel.visual
}

// Definition is the static registration for one panel kind. Layer and
// Address are fixed for the lifetime of the panel built from it.
type Definition struct {
	ID        PanelID
	Name      string
	Layer     LayerKind
	Address   string
	Permanent bool
	New       func() Behavior
}

func (d Definition) validate() error {
	switch {
	case d.ID < 0:
		return fmt.Errorf("%w: negative id %d", ErrInvalidDefinition, d.ID)
	case !d.Layer.Valid():
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.label(), ErrUnknownLayer)
	case d.Address == "":
		return fmt.Errorf("%w: %s: empty asset address", ErrInvalidDefinition, d.label())
	case d.New == nil:
		return fmt.Errorf("%w: %s: nil factory", ErrInvalidDefinition, d.label())
	}
	return nil
}

func (d Definition) label() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("panel %d", d.ID)
}

// Panel is the single runtime instance of a registered panel kind. It is
// created on first open and reused for the manager's lifetime.
type Panel struct {
	id        PanelID
	name      string
	layer     LayerKind
	address   string
	permanent bool

	state       PanelState
	visual      *Visual
	behavior    Behavior
	ctx         *Context
	initialized bool
	ticking     bool
	shownSeq    uint64
}

func newPanel(def *Definition) *Panel {
	return &Panel{
		id:        def.ID,
		name:      def.label(),
		layer:     def.Layer,
		address:   def.Address,
		permanent: def.Permanent,
		behavior:  def.New(),
	}
}

func (p *Panel) ID() PanelID { return p.id }
func (p *Panel) Name() string { return p.name }
func (p *Panel) Layer() LayerKind { return p.layer }
func (p *Panel) Address() string { return p.address }
func (p *Panel) Permanent() bool { return p.permanent }
func (p *Panel) State() PanelState { return p.state }
func (p *Panel) Behavior() Behavior { return p.behavior }

// Visual returns the loaded visual, or nil before the first load completes.
func (p *Panel) Visual() *Visual { return p.visual }

// Initialized reports whether Initialize has run.
func (p *Panel) Initialized() bool { return p.initialized }

// Ticking reports whether the panel receives per-tick updates.
func (p *Panel) Ticking() bool { return p.ticking }

// StartTicking subscribes the panel to Manager.Update ticks. It is ignored
// unless the panel is shown, so OnShow is the usual place to call it; hiding
// always stops ticking.
func (p *Panel) StartTicking() {
	if p.state != StateShown {
		return
	}
	p.ticking = true
}

// StopTicking unsubscribes the panel from per-tick updates.
func (p *Panel) StopTicking() {
	p.ticking = false
}

func (p *Panel) String() string {
	return fmt.Sprintf("%s(%s, %s)", p.name, p.layer, p.state)
}

func (p *Panel) logAttrs() []any {
	return []any{"panel", p.name, "layer", p.layer.String()}
}
