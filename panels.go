package panels

import "fmt"

// Vec2 is a 2D vector used for visual anchors.
type Vec2 struct {
	X, Y float64
}

// PanelID names a panel kind. Applications declare their panels as a closed
// set of constants starting at zero; the value doubles as a registry index.
type PanelID int

// PanelState is a panel's position in its lifecycle.
type PanelState uint8

const (
	StateUnloaded PanelState = iota // no visual attached yet
	StateLoading                    // open requested, waiting for its visual or an earlier open
	StateShown                      // attached to its surface and on its stack
	StateHidden                     // detached to the cache root, kept for reuse
)

func (s PanelState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateShown:
		return "shown"
	case StateHidden:
		return "hidden"
	default:
		return fmt.Sprintf("PanelState(%d)", uint8(s))
	}
}
