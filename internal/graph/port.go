package graph

import (
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
)

// PortRef is the identity of a port: the owning node's GUID plus the port's
// unique id within that node. Two ports are the same port when their refs
// are equal, whatever the *Port pointers say.
type PortRef struct {
	NodeID elementid.ID `json:"node"`
	PortID string       `json:"port"`
}

func (r PortRef) String() string {
	return fmt.Sprintf("%s.%s", r.NodeID, r.PortID)
}

// PortSpec declares one port in a node definition.
type PortSpec struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Type     cty.Type `json:"type"`
	Capacity Capacity `json:"capacity"`
}

// Port is a typed connection point of a node. Ports are owned by their node
// and rebuilt by DefineNode.
type Port struct {
	node      *Node
	id        string
	title     string
	direction Direction
	capacity  Capacity
	dataType  cty.Type
	order     int
}

// ID returns the port's unique id within its node.
func (p *Port) ID() string { return p.id }

// Title returns the display title, falling back to the id.
func (p *Port) Title() string {
	if p.title == "" {
		return p.id
	}
	return p.title
}

// Node returns the owning node.
func (p *Port) Node() *Node { return p.node }

// Direction returns whether the port is an input or an output.
func (p *Port) Direction() Direction { return p.direction }

// Capacity returns how many edges the port may carry.
func (p *Port) Capacity() Capacity { return p.capacity }

// Type returns the port's data type handle.
func (p *Port) Type() cty.Type { return p.dataType }

// Order returns the display order of the port among the ports of the same
// direction.
func (p *Port) Order() int { return p.order }

// Ref returns the port's identity.
func (p *Port) Ref() PortRef {
	return PortRef{NodeID: p.node.GUID(), PortID: p.id}
}

// Constant returns the value used when the port is unconnected. Only input
// ports carry one.
func (p *Port) Constant() *Constant {
	if p.direction != DirectionInput {
		return nil
	}
	return p.node.constants[p.id]
}

// Edges returns the edges attached to the port, in graph order.
func (p *Port) Edges() []*Edge {
	g := p.node.Graph()
	if g == nil {
		return nil
	}
	return g.EdgesForPort(p.Ref())
}

// IsConnected reports whether any edge is attached to the port.
func (p *Port) IsConnected() bool {
	return len(p.Edges()) > 0
}
