package panels

import "fmt"

// LayerKind selects the surface and stack a panel lives on.
type LayerKind uint8

const (
	LayerNone     LayerKind = iota // invalid; zero value of an unset definition
	LayerHUD                       // always-on overlays (health bars, minimap)
	LayerNormal                    // full screens and windows
	LayerNotice                    // toasts and alerts, above everything
	LayerDialogue                  // conversation boxes, above Normal

	layerCount
)

// Layers lists the valid layer kinds from bottom-most to top-most surface.
var Layers = [...]LayerKind{LayerHUD, LayerNormal, LayerDialogue, LayerNotice}

// closeOrder is the order CloseAllPanels empties stacks: innermost overlay
// first, HUD last.
var closeOrder = [...]LayerKind{LayerNotice, LayerDialogue, LayerNormal, LayerHUD}

// Valid reports whether k names a real layer.
func (k LayerKind) Valid() bool {
	return k > LayerNone && k < layerCount
}

// SortOrder returns the surface sort priority for k. Higher values render
// above lower ones. Returns -1 for invalid kinds.
func (k LayerKind) SortOrder() int {
	switch k {
	case LayerHUD:
		return 0
	case LayerNormal:
		return 1
	case LayerDialogue:
		return 2
	case LayerNotice:
		return 3
	default:
		return -1
	}
}

func (k LayerKind) String() string {
	switch k {
	case LayerNone:
		return "none"
	case LayerHUD:
		return "hud"
	case LayerNormal:
		return "normal"
	case LayerNotice:
		return "notice"
	case LayerDialogue:
		return "dialogue"
	default:
		return fmt.Sprintf("LayerKind(%d)", uint8(k))
	}
}

// ParseLayerKind converts a layer name as written in manifests to a LayerKind.
func ParseLayerKind(s string) (LayerKind, error) {
	switch s {
	case "hud", "HUD", "Hud":
		return LayerHUD, nil
	case "normal", "Normal":
		return LayerNormal, nil
	case "notice", "Notice":
		return LayerNotice, nil
	case "dialogue", "Dialogue":
		return LayerDialogue, nil
	}
	return LayerNone, fmt.Errorf("%w: %q", ErrUnknownLayer, s)
}

// UnmarshalText implements encoding.TextUnmarshaler so manifests can name
// layers directly.
func (k *LayerKind) UnmarshalText(text []byte) error {
	parsed, err := ParseLayerKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k LayerKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayer, uint8(k))
	}
	return []byte(k.String()), nil
}
