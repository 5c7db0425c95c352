package panels

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Panel ids used across tests ---

const (
	testInventory PanelID = iota
	testToast
	testHealthBar
	testChat
	testBag
	testMap
	testLedger
)

// --- Loader fake ---

type fakeLoader struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
	fail  map[string]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		calls: make(map[string]int),
		gates: make(map[string]chan struct{}),
		fail:  make(map[string]error),
	}
}

// hold makes loads of address block until release.
func (l *fakeLoader) hold(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gates[address] = make(chan struct{})
}

func (l *fakeLoader) release(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g, ok := l.gates[address]; ok {
		close(g)
		delete(l.gates, address)
	}
}

func (l *fakeLoader) failWith(address string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.fail, address)
		return
	}
	l.fail[address] = err
}

func (l *fakeLoader) count(address string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[address]
}

func (l *fakeLoader) Load(ctx context.Context, address string) (*Visual, error) {
	l.mu.Lock()
	l.calls[address]++
	gate := l.gates[address]
	err := l.fail[address]
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return NewVisual(address, NewContainer(address)), nil
}

// --- Behavior fake ---

type recordingBehavior struct {
	BaseBehavior
	calls   []string
	msgs    []any
	ctx     *Context
	ticks   int
	dts     []float64
	tickOn  bool
	onShown func()
}

func (b *recordingBehavior) Initialize(ctx *Context) {
	b.ctx = ctx
	b.calls = append(b.calls, "init")
}

func (b *recordingBehavior) OnShow(msg any) {
	b.calls = append(b.calls, "show")
	b.msgs = append(b.msgs, msg)
	if b.tickOn {
		b.ctx.Panel.StartTicking()
	}
	if b.onShown != nil {
		b.onShown()
	}
}

func (b *recordingBehavior) OnHide(msg any) {
	b.calls = append(b.calls, "hide")
}

func (b *recordingBehavior) OnRefresh(msg any) {
	b.calls = append(b.calls, "refresh")
}

func (b *recordingBehavior) Tick(dt float64) {
	b.ticks++
	b.dts = append(b.dts, dt)
}

func (b *recordingBehavior) count(call string) int {
	n := 0
	for _, c := range b.calls {
		if c == call {
			n++
		}
	}
	return n
}

// --- Messenger fake ---

type recordingMessenger struct {
	log    []string
	events []Event
}

func (m *recordingMessenger) Register(p *Panel) {
	m.log = append(m.log, "register:"+p.Name())
}

func (m *recordingMessenger) Unregister(id PanelID) {
	m.log = append(m.log, "unregister:"+testNames[id])
}

func (m *recordingMessenger) Notify(e Event) {
	m.events = append(m.events, e)
}

func (m *recordingMessenger) kinds() []EventKind {
	kinds := make([]EventKind, len(m.events))
	for i, e := range m.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// --- Fixture ---

var testNames = map[PanelID]string{
	testInventory: "Inventory",
	testToast:     "Toast",
	testHealthBar: "HealthBar",
	testChat:      "Chat",
	testBag:       "Bag",
	testMap:       "Map",
	testLedger:    "Ledger",
}

type fixture struct {
	m         *Manager
	loader    *fakeLoader
	messenger *recordingMessenger
	behaviors map[PanelID]*recordingBehavior
	errs      []error
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture registers:
//
//	Inventory  normal    ui/inventory
//	Toast      notice    ui/toast
//	HealthBar  hud       ui/health   (permanent)
//	Chat       dialogue  ui/chat
//	Bag        normal    ui/inventory (shares Inventory's visual)
//	Map        normal    ui/map
//	Ledger     dialogue  ui/inventory (shares Inventory's visual across layers)
func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		loader:    newFakeLoader(),
		messenger: &recordingMessenger{},
		behaviors: make(map[PanelID]*recordingBehavior),
	}
	opts := Options{
		Logger:    quietLogger(),
		Messenger: f.messenger,
		Loader:    f.loader,
		OnError:   func(err error) { f.errs = append(f.errs, err) },
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	f.m = New(opts)

	defs := []Definition{
		{ID: testInventory, Layer: LayerNormal, Address: "ui/inventory"},
		{ID: testToast, Layer: LayerNotice, Address: "ui/toast"},
		{ID: testHealthBar, Layer: LayerHUD, Address: "ui/health", Permanent: true},
		{ID: testChat, Layer: LayerDialogue, Address: "ui/chat"},
		{ID: testBag, Layer: LayerNormal, Address: "ui/inventory"},
		{ID: testMap, Layer: LayerNormal, Address: "ui/map"},
		{ID: testLedger, Layer: LayerDialogue, Address: "ui/inventory"},
	}
	for _, def := range defs {
		id := def.ID
		def.Name = testNames[id]
		def.New = func() Behavior {
			b := &recordingBehavior{}
			f.behaviors[id] = b
			return b
		}
		require.NoError(t, f.m.Register(def))
	}
	require.NoError(t, f.m.Initialize())
	return f
}

// open opens id and waits for its load.
func (f *fixture) open(t *testing.T, id PanelID, msg any) {
	t.Helper()
	require.NoError(t, f.m.Open(id, msg))
	f.m.Settle()
}

func (f *fixture) stack(t *testing.T, layer LayerKind) []PanelID {
	t.Helper()
	s, err := f.m.StackFor(layer)
	require.NoError(t, err)
	return s.IDs()
}
