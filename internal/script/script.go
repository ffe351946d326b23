package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Script is a parsed graph script, in declaration order.
type Script struct {
	Variables []Variable
	Nodes     []Node
	Edges     []Edge
	Notes     []Note
	Placemats []Placemat
}

// Variable declares a graph variable.
type Variable struct {
	Name      string
	Type      cty.Type
	Default   *cty.Value
	Modifiers graph.ModifierFlags
}

// Constant is an input port value set right after the node is created.
type Constant struct {
	Port  string
	Value cty.Value
}

// Node is a node to create. Variable names the declaration a variable or
// portal node refers to.
type Node struct {
	Name      string
	Spec      graph.NodeSpec
	Variable  string
	Constants []Constant
	Disabled  bool
}

// Endpoint is a "node.port" reference.
type Endpoint struct {
	Node string
	Port string
}

func (e Endpoint) String() string { return e.Node + "." + e.Port }

// ParseEndpoint splits a "node.port" reference.
func ParseEndpoint(s string) (Endpoint, error) {
	node, port, ok := strings.Cut(s, ".")
	if !ok || node == "" || port == "" {
		return Endpoint{}, fmt.Errorf("invalid port reference %q, want \"node.port\"", s)
	}
	return Endpoint{Node: node, Port: port}, nil
}

// Edge connects an output port to an input port.
type Edge struct {
	From      Endpoint
	To        Endpoint
	AutoAlign bool
}

type Note struct {
	Title    string
	Contents string
	Rect     graph.Rect
}

type Placemat struct {
	Title string
	Rect  graph.Rect
	Color string
}

// Append adds every element of other after the elements of s.
func (s *Script) Append(other *Script) {
	s.Variables = append(s.Variables, other.Variables...)
	s.Nodes = append(s.Nodes, other.Nodes...)
	s.Edges = append(s.Edges, other.Edges...)
	s.Notes = append(s.Notes, other.Notes...)
	s.Placemats = append(s.Placemats, other.Placemats...)
}

// Len is the number of elements the script creates.
func (s *Script) Len() int {
	return len(s.Variables) + len(s.Nodes) + len(s.Edges) + len(s.Notes) + len(s.Placemats)
}

func findPort(specs []graph.PortSpec, id string) (graph.PortSpec, bool) {
	for _, p := range specs {
		if p.ID == id {
			return p, true
		}
	}
	return graph.PortSpec{}, false
}

// Validate checks the references between elements: unique names, edges
// from an output port to an input port of declared nodes. Nodes may refer
// to variables the script does not declare; those are looked up in the
// target graph when the script runs.
func (s *Script) Validate() error {
	var errs []error

	variables := make(map[string]struct{}, len(s.Variables))
	for _, v := range s.Variables {
		if _, dup := variables[v.Name]; dup {
			errs = append(errs, fmt.Errorf("variable %q declared more than once", v.Name))
		}
		variables[v.Name] = struct{}{}
	}

	nodes := make(map[string]*Node, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if _, dup := nodes[n.Name]; dup {
			errs = append(errs, fmt.Errorf("node %q declared more than once", n.Name))
		}
		nodes[n.Name] = n
		if n.Spec.Kind == graph.NodeKindVariable && n.Variable == "" {
			errs = append(errs, fmt.Errorf("node %q: variable nodes need a variable", n.Name))
		}
	}

	for _, e := range s.Edges {
		if err := checkEndpoint(nodes, e.From, graph.DirectionOutput); err != nil {
			errs = append(errs, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err))
		}
		if err := checkEndpoint(nodes, e.To, graph.DirectionInput); err != nil {
			errs = append(errs, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err))
		}
	}
	return errors.Join(errs...)
}

func checkEndpoint(nodes map[string]*Node, ep Endpoint, dir graph.Direction) error {
	n, ok := nodes[ep.Node]
	if !ok {
		return fmt.Errorf("unknown node %q", ep.Node)
	}
	specs := n.Spec.Definition.Outputs
	if dir == graph.DirectionInput {
		specs = n.Spec.Definition.Inputs
	}
	if _, ok := findPort(specs, ep.Port); !ok {
		return fmt.Errorf("node %q has no %s port %q", ep.Node, dir, ep.Port)
	}
	return nil
}
