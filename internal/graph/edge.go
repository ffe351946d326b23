package graph

import "github.com/specialistvlad/graphtools/internal/elementid"

// ControlPoint is a bezier control point of an edge.
type ControlPoint struct {
	Position  Vector  `json:"position"`
	Tightness float64 `json:"tightness"`
}

// Edge connects an output port to an input port. It is an element of its
// own, not owned by either port, so edges sharing a port keep an order.
type Edge struct {
	ElementBase

	from          PortRef
	to            PortRef
	controlPoints []ControlPoint
	editMode      bool
	label         string

	fromCache *Port
	toCache   *Port
}

// From returns the identity of the output side.
func (e *Edge) From() PortRef { return e.from }

// To returns the identity of the input side.
func (e *Edge) To() PortRef { return e.to }

// FromPort resolves the output port, or nil when it no longer exists.
func (e *Edge) FromPort() *Port {
	if e.fromCache == nil && e.graph != nil {
		e.fromCache = e.graph.ResolvePort(e.from)
	}
	return e.fromCache
}

// ToPort resolves the input port, or nil when it no longer exists.
func (e *Edge) ToPort() *Port {
	if e.toCache == nil && e.graph != nil {
		e.toCache = e.graph.ResolvePort(e.to)
	}
	return e.toCache
}

// ResetPortCache forgets the resolved ports.
func (e *Edge) ResetPortCache() {
	e.fromCache = nil
	e.toCache = nil
}

// Touches reports whether either end of the edge belongs to the node.
func (e *Edge) Touches(nodeID elementid.ID) bool {
	return e.from.NodeID == nodeID || e.to.NodeID == nodeID
}

// ControlPoints returns a copy of the control points.
func (e *Edge) ControlPoints() []ControlPoint {
	return append([]ControlPoint(nil), e.controlPoints...)
}

// InsertControlPoint inserts cp at index i, clamped to the valid range.
func (e *Edge) InsertControlPoint(i int, cp ControlPoint) {
	if i < 0 {
		i = 0
	}
	if i > len(e.controlPoints) {
		i = len(e.controlPoints)
	}
	e.controlPoints = append(e.controlPoints, ControlPoint{})
	copy(e.controlPoints[i+1:], e.controlPoints[i:])
	e.controlPoints[i] = cp
	e.markChanged()
}

// RemoveControlPoint deletes the control point at index i.
func (e *Edge) RemoveControlPoint(i int) {
	if i < 0 || i >= len(e.controlPoints) {
		return
	}
	e.controlPoints = append(e.controlPoints[:i], e.controlPoints[i+1:]...)
	e.markChanged()
}

// EditMode reports whether the edge shows its control points for editing.
func (e *Edge) EditMode() bool { return e.editMode }

// SetEditMode toggles control point editing.
func (e *Edge) SetEditMode(on bool) {
	if e.editMode == on {
		return
	}
	e.editMode = on
	e.markChanged()
}

// Label returns the optional display label.
func (e *Edge) Label() string { return e.label }

// SetLabel changes the display label.
func (e *Edge) SetLabel(label string) {
	if e.label == label {
		return
	}
	e.label = label
	e.markChanged()
}
