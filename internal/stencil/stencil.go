// Package stencil provides the stock graph.Stencil used by the tools in this
// module: entry nodes start graph walks, outputs drive the nodes they feed,
// portals link by declaration and new constants start at the zero value of
// their type.
package stencil

import (
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Basic is the default stencil.
type Basic struct {
	graph.BaseStencil
}

var _ graph.Stencil = Basic{}

// EntryPoints returns every live node of kind entry, in graph order.
func (Basic) EntryPoints(g *graph.Graph) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes() {
		if n.Kind() == graph.NodeKindEntry {
			out = append(out, n)
		}
	}
	return out
}

// ClassifyEdgeDependency makes the node owning the output port the parent.
// Self loops and edges with a missing end are ignored.
func (Basic) ClassifyEdgeDependency(e *graph.Edge) (*graph.Node, *graph.Node, bool) {
	from, to := e.FromPort(), e.ToPort()
	if from == nil || to == nil {
		return nil, nil, false
	}
	parent, dependent := from.Node(), to.Node()
	if parent == dependent {
		return nil, nil, false
	}
	return parent, dependent, true
}

// LinkedPortals returns the live portals sharing the declaration of portal,
// portal included. A portal without a declaration is linked to nothing but
// itself.
func (Basic) LinkedPortals(portal *graph.Node) []*graph.Node {
	if portal == nil || !portal.Kind().IsPortal() {
		return nil
	}
	decl := portal.DeclarationID()
	g := portal.Graph()
	if decl.IsNil() || g == nil {
		return []*graph.Node{portal}
	}
	var out []*graph.Node
	for _, n := range g.NodesForDeclaration(decl) {
		if n.Kind().IsPortal() {
			out = append(out, n)
		}
	}
	return out
}

// CreateConstant returns the zero value of t. Dynamic and capsule types get
// a typed null.
func (Basic) CreateConstant(t cty.Type) cty.Value {
	return zeroValue(t)
}

func zeroValue(t cty.Type) cty.Value {
	switch {
	case t == cty.NilType || t == cty.DynamicPseudoType:
		return cty.NullVal(cty.DynamicPseudoType)
	case t.IsPrimitiveType():
		var goZero any
		switch t {
		case cty.String:
			goZero = ""
		case cty.Number:
			goZero = 0
		case cty.Bool:
			goZero = false
		}
		v, err := gocty.ToCtyValue(goZero, t)
		if err != nil {
			return cty.NullVal(t)
		}
		return v
	case t.IsListType():
		return cty.ListValEmpty(t.ElementType())
	case t.IsSetType():
		return cty.SetValEmpty(t.ElementType())
	case t.IsMapType():
		return cty.MapValEmpty(t.ElementType())
	case t.IsObjectType():
		attrs := make(map[string]cty.Value, len(t.AttributeTypes()))
		for name, at := range t.AttributeTypes() {
			attrs[name] = zeroValue(at)
		}
		return cty.ObjectVal(attrs)
	case t.IsTupleType():
		elems := make([]cty.Value, 0, len(t.TupleElementTypes()))
		for _, et := range t.TupleElementTypes() {
			elems = append(elems, zeroValue(et))
		}
		if len(elems) == 0 {
			return cty.EmptyTupleVal
		}
		return cty.TupleVal(elems)
	default:
		return cty.NullVal(t)
	}
}
