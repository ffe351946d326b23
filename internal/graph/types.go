package graph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Vector is a 2D position or size on the canvas.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Position Vector `json:"position"`
	Size     Vector `json:"size"`
}

// Direction tells whether a port receives or produces data.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Capacity is how many edges a port may carry.
type Capacity int

const (
	CapacitySingle Capacity = iota
	CapacityMulti
)

func (c Capacity) String() string {
	switch c {
	case CapacitySingle:
		return "single"
	case CapacityMulti:
		return "multi"
	default:
		return fmt.Sprintf("capacity(%d)", int(c))
	}
}

// ModelState is the enabled/disabled state of a node.
type ModelState int

const (
	ModelStateEnabled ModelState = iota
	ModelStateDisabled
)

// DeleteConnections selects what DeleteNodes does with the edges of a
// deleted node.
type DeleteConnections bool

const (
	// DeleteConnectionsTrue deletes every edge touching the node in the same
	// operation.
	DeleteConnectionsTrue DeleteConnections = true
	// DeleteConnectionsFalse leaves the edges in place. They dangle until the
	// caller deletes them; CheckIntegrity reports them meanwhile.
	DeleteConnectionsFalse DeleteConnections = false
)

// ReorderType moves an edge among the edges sharing its output port.
type ReorderType int

const (
	ReorderFirst ReorderType = iota
	ReorderUp
	ReorderDown
	ReorderLast
)

// normalizeType maps the zero cty.Type to cty.DynamicPseudoType so every
// stored type handle is usable and serializable.
func normalizeType(t cty.Type) cty.Type {
	if t == cty.NilType {
		return cty.DynamicPseudoType
	}
	return t
}
