package panels

// Visual is a loaded, attachable panel visual. The cache keeps one Visual per
// asset address for the manager's lifetime; at most one shown panel holds it
// at a time.
type Visual struct {
	Address string
	Root    *Node
	Anchor  Vec2

	owner *Panel
}

// NewVisual wraps root as the visual for address. The node's current position
// is recorded as its anchor.
func NewVisual(address string, root *Node) *Visual {
	return &Visual{
		Address: address,
		Root:    root,
		Anchor:  Vec2{X: root.X, Y: root.Y},
	}
}

// Owner returns the panel currently holding the visual, or nil.
func (v *Visual) Owner() *Panel {
	return v.owner
}

// resetAnchor restores the root node to its anchor after reparenting.
func (v *Visual) resetAnchor() {
	v.Root.X = v.Anchor.X
	v.Root.Y = v.Anchor.Y
}
