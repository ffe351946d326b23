package graph

import (
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// NodeKind distinguishes the node flavors the core cares about.
type NodeKind int

const (
	NodeKindFunction NodeKind = iota
	NodeKindConstant
	NodeKindVariable
	NodeKindEntry
	NodeKindPortalEntry
	NodeKindPortalExit
)

var nodeKindNames = map[NodeKind]string{
	NodeKindFunction:    "function",
	NodeKindConstant:    "constant",
	NodeKindVariable:    "variable",
	NodeKindEntry:       "entry",
	NodeKindPortalEntry: "portal_entry",
	NodeKindPortalExit:  "portal_exit",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("node_kind(%d)", int(k))
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, error) {
	for k, name := range nodeKindNames {
		if name == s {
			return k, nil
		}
	}
	return NodeKindFunction, fmt.Errorf("unknown node kind %q", s)
}

// IsPortal reports whether nodes of this kind are portal ends.
func (k NodeKind) IsPortal() bool {
	return k == NodeKindPortalEntry || k == NodeKindPortalExit
}

// NodeDefinition is the configuration DefineNode computes ports from.
type NodeDefinition struct {
	Inputs  []PortSpec `json:"inputs,omitempty"`
	Outputs []PortSpec `json:"outputs,omitempty"`
}

// normalized returns a copy with every unset port type replaced by
// cty.DynamicPseudoType.
func (d NodeDefinition) normalized() NodeDefinition {
	out := NodeDefinition{
		Inputs:  append([]PortSpec(nil), d.Inputs...),
		Outputs: append([]PortSpec(nil), d.Outputs...),
	}
	for i := range out.Inputs {
		out.Inputs[i].Type = normalizeType(out.Inputs[i].Type)
	}
	for i := range out.Outputs {
		out.Outputs[i].Type = normalizeType(out.Outputs[i].Type)
	}
	return out
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	Title         string
	Kind          NodeKind
	Position      Vector
	Size          Vector
	Definition    NodeDefinition
	DeclarationID elementid.ID
}

// Node is a graph element with ordered input and output ports.
type Node struct {
	ElementBase

	title         string
	kind          NodeKind
	position      Vector
	size          Vector
	state         ModelState
	destroyed     bool
	declarationID elementid.ID
	definition    NodeDefinition

	inputs    []*Port
	outputs   []*Port
	portsByID map[string]*Port
	constants map[string]*Constant
}

// Title returns the node's display title.
func (n *Node) Title() string { return n.title }

// Kind returns the node's kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Position returns the node's top-left corner on the canvas.
func (n *Node) Position() Vector { return n.position }

// Size returns the node's extent on the canvas.
func (n *Node) Size() Vector { return n.size }

// State returns whether the node is enabled.
func (n *Node) State() ModelState { return n.state }

// IsDestroyed reports whether the node was soft-deleted.
func (n *Node) IsDestroyed() bool { return n.destroyed }

// DeclarationID returns the variable declaration a variable or portal node
// refers to, or elementid.Nil.
func (n *Node) DeclarationID() elementid.ID { return n.declarationID }

// Definition returns the node's port configuration.
func (n *Node) Definition() NodeDefinition { return n.definition }

// InputPorts returns the input ports in display order.
func (n *Node) InputPorts() []*Port { return append([]*Port(nil), n.inputs...) }

// OutputPorts returns the output ports in display order.
func (n *Node) OutputPorts() []*Port { return append([]*Port(nil), n.outputs...) }

// Port looks a port up by its unique id.
func (n *Node) Port(id string) (*Port, bool) {
	p, ok := n.portsByID[id]
	return p, ok
}

// InputAt returns the input port at the given display order.
func (n *Node) InputAt(i int) *Port {
	if i < 0 || i >= len(n.inputs) {
		return nil
	}
	return n.inputs[i]
}

// OutputAt returns the output port at the given display order.
func (n *Node) OutputAt(i int) *Port {
	if i < 0 || i >= len(n.outputs) {
		return nil
	}
	return n.outputs[i]
}

// SetPosition moves the node.
func (n *Node) SetPosition(p Vector) {
	if n.position == p {
		return
	}
	n.position = p
	n.markChanged()
}

// SetState enables or disables the node.
func (n *Node) SetState(s ModelState) {
	if n.state == s {
		return
	}
	n.state = s
	n.markChanged()
}

// SetTitle renames the node.
func (n *Node) SetTitle(title string) {
	if n.title == title {
		return
	}
	n.title = title
	n.markChanged()
}

// SetDefinition replaces the port configuration and redefines the node.
func (n *Node) SetDefinition(def NodeDefinition) error {
	previous := n.definition
	n.definition = def
	if err := n.OnPortsChanged(); err != nil {
		n.definition = previous
		return err
	}
	n.markChanged()
	return nil
}

// DefineNode (re)computes the node's ports from its definition. Constants of
// input ports survive when the port id and type are unchanged; new inputs get
// the stencil's default for their type.
func (n *Node) DefineNode() error {
	n.definition = n.definition.normalized()
	portsByID := make(map[string]*Port, len(n.definition.Inputs)+len(n.definition.Outputs))
	inputs := make([]*Port, 0, len(n.definition.Inputs))
	outputs := make([]*Port, 0, len(n.definition.Outputs))

	build := func(specs []PortSpec, dir Direction, dst *[]*Port) error {
		for i, spec := range specs {
			if spec.ID == "" {
				return fmt.Errorf("node %q: %s port %d has an empty id", n.title, dir, i)
			}
			if _, dup := portsByID[spec.ID]; dup {
				return fmt.Errorf("node %q: duplicate port id %q", n.title, spec.ID)
			}
			p := &Port{
				node:      n,
				id:        spec.ID,
				title:     spec.Title,
				direction: dir,
				capacity:  spec.Capacity,
				dataType:  normalizeType(spec.Type),
				order:     i,
			}
			portsByID[spec.ID] = p
			*dst = append(*dst, p)
		}
		return nil
	}
	if err := build(n.definition.Inputs, DirectionInput, &inputs); err != nil {
		return err
	}
	if err := build(n.definition.Outputs, DirectionOutput, &outputs); err != nil {
		return err
	}

	constants := make(map[string]*Constant, len(inputs))
	for _, p := range inputs {
		if existing, ok := n.constants[p.id]; ok && existing.Type().Equals(p.dataType) {
			constants[p.id] = existing
			continue
		}
		constants[p.id] = NewConstant(n.defaultConstant(p.dataType))
	}

	n.inputs = inputs
	n.outputs = outputs
	n.portsByID = portsByID
	n.constants = constants
	return nil
}

func (n *Node) defaultConstant(t cty.Type) cty.Value {
	if g := n.Graph(); g != nil && g.stencil != nil {
		if v := g.stencil.CreateConstant(t); v != cty.NilVal {
			return v
		}
	}
	return cty.NullVal(t)
}

// OnPortsChanged re-runs DefineNode and drops the cached port pointers of
// every edge attached to the node. Port objects are not stable across a
// redefine, so anything holding them must re-resolve.
func (n *Node) OnPortsChanged() error {
	if err := n.DefineNode(); err != nil {
		return err
	}
	if g := n.Graph(); g != nil {
		for _, e := range g.EdgesForNode(n.GUID()) {
			e.ResetPortCache()
		}
	}
	return nil
}

// setConstant stores v on the input port id after converting it to the port
// type.
func (n *Node) setConstant(portID string, v cty.Value) error {
	p, ok := n.portsByID[portID]
	if !ok {
		return fmt.Errorf("node %q has no port %q", n.title, portID)
	}
	if p.direction != DirectionInput {
		return fmt.Errorf("port %q of node %q is not an input", portID, n.title)
	}
	converted, err := convert.Convert(v, p.dataType)
	if err != nil {
		return fmt.Errorf("cannot use %s as %s for port %q: %w",
			v.Type().FriendlyName(), p.dataType.FriendlyName(), portID, err)
	}
	n.constants[portID] = NewConstant(converted)
	n.markChanged()
	return nil
}

func (n *Node) spec() NodeSpec {
	def := NodeDefinition{
		Inputs:  append([]PortSpec(nil), n.definition.Inputs...),
		Outputs: append([]PortSpec(nil), n.definition.Outputs...),
	}
	return NodeSpec{
		Title:         n.title,
		Kind:          n.kind,
		Position:      n.position,
		Size:          n.size,
		Definition:    def,
		DeclarationID: n.declarationID,
	}
}
