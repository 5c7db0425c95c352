package panels

import "fmt"

// EventKind identifies a panel lifecycle announcement.
type EventKind uint8

const (
	EventShown          EventKind = iota + 1 // panel attached and on top of its stack
	EventHidden                              // panel popped and detached
	EventLoadFailed                          // visual load failed; panel stays Unloaded
	EventOpenCancelled                       // queued open dropped by a Close
)

func (k EventKind) String() string {
	switch k {
	case EventShown:
		return "shown"
	case EventHidden:
		return "hidden"
	case EventLoadFailed:
		return "load-failed"
	case EventOpenCancelled:
		return "open-cancelled"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is announced through Messenger.Notify.
type Event struct {
	Kind  EventKind
	Panel PanelID
	Name  string
	Layer LayerKind
	Err   error
}

// Messenger is the pub/sub capability panels register with while shown.
// Register is called right before OnShow and Unregister right after OnHide,
// strictly alternating per panel.
type Messenger interface {
	Register(p *Panel)
	Unregister(id PanelID)
	Notify(e Event)
}

// NopMessenger discards registrations and events.
type NopMessenger struct{}

func (NopMessenger) Register(*Panel) {}
func (NopMessenger) Unregister(PanelID) {}
func (NopMessenger) Notify(Event) {}
