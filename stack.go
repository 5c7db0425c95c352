package panels

// LayerStack is the LIFO of panels open on one layer. The top is the active,
// front-most panel.
type LayerStack struct {
	layer  LayerKind
	panels []*Panel
}

// Layer returns the layer the stack belongs to.
func (s *LayerStack) Layer() LayerKind {
	return s.layer
}

// Push puts p on top.
func (s *LayerStack) Push(p *Panel) {
	s.panels = append(s.panels, p)
}

// Pop removes and returns the top panel.
func (s *LayerStack) Pop() (*Panel, bool) {
	if len(s.panels) == 0 {
		return nil, false
	}
	i := len(s.panels) - 1
	p := s.panels[i]
	s.panels[i] = nil
	s.panels = s.panels[:i]
	return p, true
}

// Peek returns the top panel without removing it.
func (s *LayerStack) Peek() (*Panel, bool) {
	if len(s.panels) == 0 {
		return nil, false
	}
	return s.panels[len(s.panels)-1], true
}

// Len returns the number of open panels.
func (s *LayerStack) Len() int {
	return len(s.panels)
}

// Contains reports whether p is anywhere in the stack.
func (s *LayerStack) Contains(p *Panel) bool {
	return s.index(p) >= 0
}

// Remove takes p out of the stack wherever it is.
func (s *LayerStack) Remove(p *Panel) bool {
	i := s.index(p)
	if i < 0 {
		return false
	}
	copy(s.panels[i:], s.panels[i+1:])
	s.panels[len(s.panels)-1] = nil
	s.panels = s.panels[:len(s.panels)-1]
	return true
}

// moveToTop moves p from its current depth to the top. It reports false when
// p is not in the stack.
func (s *LayerStack) moveToTop(p *Panel) bool {
	i := s.index(p)
	if i < 0 {
		return false
	}
	copy(s.panels[i:], s.panels[i+1:])
	s.panels[len(s.panels)-1] = p
	return true
}

// IDs returns the ids of the open panels, bottom first.
func (s *LayerStack) IDs() []PanelID {
	ids := make([]PanelID, len(s.panels))
	for i, p := range s.panels {
		ids[i] = p.id
	}
	return ids
}

// Panels returns a copy of the open panels, bottom first.
func (s *LayerStack) Panels() []*Panel {
	return append([]*Panel(nil), s.panels...)
}

func (s *LayerStack) index(p *Panel) int {
	for i := len(s.panels) - 1; i >= 0; i-- {
		if s.panels[i] == p {
			return i
		}
	}
	return -1
}
