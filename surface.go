package panels

// SurfaceLayer is the rendering target backing one layer. Its visibility and
// interactivity are independent of which panels are stacked on it.
type SurfaceLayer interface {
	Kind() LayerKind
	SortOrder() int
	SetVisible(visible bool)
	Visible() bool
	SetInteractable(interactable bool)
	Interactable() bool
	AttachChild(v *Visual)
	DetachChild(v *Visual)
}

// nodeSurface is a SurfaceLayer backed by a container node in the manager's
// tree. Sort order maps to the container's ZIndex.
type nodeSurface struct {
	kind LayerKind
	node *Node
}

func newNodeSurface(kind LayerKind) *nodeSurface {
	n := NewContainer(kind.String() + "Surface")
	n.ZIndex = kind.SortOrder()
	return &nodeSurface{kind: kind, node: n}
}

func (s *nodeSurface) Kind() LayerKind { return s.kind }
func (s *nodeSurface) SortOrder() int { return s.node.ZIndex }
func (s *nodeSurface) Visible() bool { return s.node.Visible }

func (s *nodeSurface) SetVisible(visible bool) {
	s.node.Visible = visible
	if visible {
		s.node.Alpha = 1
	} else {
		s.node.Alpha = 0
	}
}

func (s *nodeSurface) Interactable() bool { return s.node.Interactable }

func (s *nodeSurface) SetInteractable(interactable bool) {
	s.node.Interactable = interactable
}

// AttachChild reparents the visual under the surface, or moves it in front of
// its siblings when it is already attached.
func (s *nodeSurface) AttachChild(v *Visual) {
	if s.node.HasChild(v.Root) {
		s.node.BringToFront(v.Root)
		return
	}
	s.node.AddChild(v.Root)
	v.resetAnchor()
}

func (s *nodeSurface) DetachChild(v *Visual) {
	if s.node.HasChild(v.Root) {
		s.node.RemoveChild(v.Root)
	}
}

// Node returns the container backing the surface.
func (s *nodeSurface) Node() *Node {
	return s.node
}
