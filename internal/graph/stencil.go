package graph

import "github.com/zclconf/go-cty/cty"

// Stencil supplies the domain-specific behavior of a graph.
type Stencil interface {
	// EntryPoints returns the nodes graph walks start from.
	EntryPoints(g *Graph) []*Node

	// ClassifyEdgeDependency decides whether an edge makes one node follow
	// another when moved or aligned. It returns the parent (the node that
	// drives) and the dependent; ok is false when the edge is ignored.
	ClassifyEdgeDependency(e *Edge) (parent, dependent *Node, ok bool)

	// LinkedPortals returns every portal linked with the given one,
	// including itself.
	LinkedPortals(portal *Node) []*Node

	// CreateConstant returns the default value for a port or variable of
	// type t.
	CreateConstant(t cty.Type) cty.Value
}

// BaseStencil is the neutral Stencil. Embed it and override what matters.
type BaseStencil struct{}

var _ Stencil = BaseStencil{}

// EntryPoints returns no entry points.
func (BaseStencil) EntryPoints(*Graph) []*Node { return nil }

// ClassifyEdgeDependency rejects every edge.
func (BaseStencil) ClassifyEdgeDependency(*Edge) (*Node, *Node, bool) { return nil, nil, false }

// LinkedPortals returns no portals.
func (BaseStencil) LinkedPortals(*Node) []*Node { return nil }

// CreateConstant returns a typed null.
func (BaseStencil) CreateConstant(t cty.Type) cty.Value { return cty.NullVal(t) }

// Listener is told about structural changes as they happen.
type Listener interface {
	NodeAdded(n *Node)
	NodeRemoved(n *Node)
	EdgeAdded(e *Edge)
	EdgeRemoved(e *Edge)
	// GraphRestored is called after the graph content was replaced
	// wholesale, e.g. by an undo snapshot.
	GraphRestored(g *Graph)
}
