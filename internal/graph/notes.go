package graph

// StickyNote is a free-floating text annotation.
type StickyNote struct {
	ElementBase

	title    string
	contents string
	rect     Rect
}

// Title returns the note's heading.
func (s *StickyNote) Title() string { return s.title }

// Contents returns the note's body text.
func (s *StickyNote) Contents() string { return s.contents }

// Rect returns the note's bounds.
func (s *StickyNote) Rect() Rect { return s.rect }

// SetRect moves or resizes the note.
func (s *StickyNote) SetRect(r Rect) {
	if s.rect == r {
		return
	}
	s.rect = r
	s.markChanged()
}

// SetContents replaces the body text.
func (s *StickyNote) SetContents(text string) {
	if s.contents == text {
		return
	}
	s.contents = text
	s.markChanged()
}

// Placemat is a colored background region grouping other elements.
type Placemat struct {
	ElementBase

	title     string
	rect      Rect
	color     string
	collapsed bool
}

// Title returns the placemat's heading.
func (p *Placemat) Title() string { return p.title }

// Rect returns the placemat's bounds.
func (p *Placemat) Rect() Rect { return p.rect }

// Color returns the background color as a CSS-like string.
func (p *Placemat) Color() string { return p.color }

// Collapsed reports whether the placemat hides its content.
func (p *Placemat) Collapsed() bool { return p.collapsed }

// SetRect moves or resizes the placemat.
func (p *Placemat) SetRect(r Rect) {
	if p.rect == r {
		return
	}
	p.rect = r
	p.markChanged()
}

// SetCollapsed folds or unfolds the placemat.
func (p *Placemat) SetCollapsed(c bool) {
	if p.collapsed == c {
		return
	}
	p.collapsed = c
	p.markChanged()
}
