package script

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/fsutil"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var defaultNodeSize = graph.Vector{X: 100, Y: 60}

// Load parses every .hcl file under paths and returns the merged, validated
// script.
func Load(ctx context.Context, paths ...string) (*Script, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no script files found in %v", paths)
	}
	logger.Debug("Discovered script files.", "count", len(files))

	parser := hclparse.NewParser()
	out := &Script{}
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse script %s: %w", file, diags)
		}
		s, err := decode(f.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode script %s: %w", file, err)
		}
		out.Append(s)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	logger.Debug("Script loaded.", "variables", len(out.Variables), "nodes", len(out.Nodes), "edges", len(out.Edges))
	return out, nil
}

// Parse parses and validates a single script held in memory.
func Parse(filename string, src []byte) (*Script, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse script %s: %w", filename, diags)
	}
	s, err := decode(f.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode script %s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

func decode(body hcl.Body) (*Script, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	s := &Script{}
	for _, b := range root.Variables {
		v, err := translateVariable(b)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", b.Name, err)
		}
		s.Variables = append(s.Variables, v)
	}
	for _, b := range root.Nodes {
		n, err := translateNode(b)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}
		s.Nodes = append(s.Nodes, n)
	}
	for _, b := range root.Edges {
		from, err := ParseEndpoint(b.From)
		if err != nil {
			return nil, err
		}
		to, err := ParseEndpoint(b.To)
		if err != nil {
			return nil, err
		}
		s.Edges = append(s.Edges, Edge{From: from, To: to, AutoAlign: b.AutoAlign})
	}
	for _, b := range root.Notes {
		rect, err := translateRect(b.Rect)
		if err != nil {
			return nil, fmt.Errorf("sticky note %q: %w", b.Title, err)
		}
		s.Notes = append(s.Notes, Note{Title: b.Title, Contents: b.Contents, Rect: rect})
	}
	for _, b := range root.Placemats {
		rect, err := translateRect(b.Rect)
		if err != nil {
			return nil, fmt.Errorf("placemat %q: %w", b.Title, err)
		}
		s.Placemats = append(s.Placemats, Placemat{Title: b.Title, Rect: rect, Color: b.Color})
	}
	return s, nil
}

// isSet reports whether an optional expression attribute was written.
// gohcl fills missing ones with a static null.
func isSet(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	v, diags := expr.Value(nil)
	return diags.HasErrors() || !v.IsNull()
}

func translateType(expr hcl.Expression) (cty.Type, error) {
	if !isSet(expr) {
		return cty.DynamicPseudoType, nil
	}
	t, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, diags
	}
	return t, nil
}

// translateValue evaluates a literal expression and converts it to t.
func translateValue(expr hcl.Expression, t cty.Type) (*cty.Value, error) {
	if !isSet(expr) {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	converted, err := convert.Convert(v, t)
	if err != nil {
		return nil, fmt.Errorf("value does not fit type %s: %w", t.FriendlyName(), err)
	}
	return &converted, nil
}

var modifierNames = map[string]graph.ModifierFlags{
	"read":    graph.ModifierRead,
	"write":   graph.ModifierWrite,
	"exposed": graph.ModifierExposed,
}

func translateVariable(b *variableBlock) (Variable, error) {
	t, err := translateType(b.Type)
	if err != nil {
		return Variable{}, fmt.Errorf("invalid type: %w", err)
	}
	def, err := translateValue(b.Default, t)
	if err != nil {
		return Variable{}, fmt.Errorf("invalid default: %w", err)
	}

	mods := graph.ModifierReadWrite
	if b.Modifiers != nil {
		mods = 0
		for _, name := range b.Modifiers {
			f, ok := modifierNames[name]
			if !ok {
				return Variable{}, fmt.Errorf("unknown modifier %q", name)
			}
			mods |= f
		}
	}
	return Variable{Name: b.Name, Type: t, Default: def, Modifiers: mods}, nil
}

func translateVector(field string, values []float64, fallback graph.Vector) (graph.Vector, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 2:
		return graph.Vector{X: values[0], Y: values[1]}, nil
	default:
		return graph.Vector{}, fmt.Errorf("%s needs two numbers, got %d", field, len(values))
	}
}

func translateRect(values []float64) (graph.Rect, error) {
	switch len(values) {
	case 0:
		return graph.Rect{Size: graph.Vector{X: 200, Y: 100}}, nil
	case 4:
		return graph.Rect{
			Position: graph.Vector{X: values[0], Y: values[1]},
			Size:     graph.Vector{X: values[2], Y: values[3]},
		}, nil
	default:
		return graph.Rect{}, fmt.Errorf("rect needs four numbers [x, y, width, height], got %d", len(values))
	}
}

func translatePorts(blocks []*portBlock, dir graph.Direction) ([]graph.PortSpec, []Constant, error) {
	var (
		specs     []graph.PortSpec
		constants []Constant
		seen      = make(map[string]struct{}, len(blocks))
	)
	for _, b := range blocks {
		if _, dup := seen[b.ID]; dup {
			return nil, nil, fmt.Errorf("%s port %q declared more than once", dir, b.ID)
		}
		seen[b.ID] = struct{}{}

		t, err := translateType(b.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%s port %q: invalid type: %w", dir, b.ID, err)
		}
		capacity := graph.CapacitySingle
		if dir == graph.DirectionOutput {
			capacity = graph.CapacityMulti
		}
		if b.Multi != nil {
			capacity = graph.CapacitySingle
			if *b.Multi {
				capacity = graph.CapacityMulti
			}
		}
		spec := graph.PortSpec{ID: b.ID, Type: t, Capacity: capacity}
		if b.Title != nil {
			spec.Title = *b.Title
		}
		specs = append(specs, spec)

		if isSet(b.Constant) {
			if dir == graph.DirectionOutput {
				return nil, nil, fmt.Errorf("output port %q cannot hold a constant", b.ID)
			}
			v, err := translateValue(b.Constant, t)
			if err != nil {
				return nil, nil, fmt.Errorf("input port %q: invalid constant: %w", b.ID, err)
			}
			constants = append(constants, Constant{Port: b.ID, Value: *v})
		}
	}
	return specs, constants, nil
}

func translateNode(b *nodeBlock) (Node, error) {
	n := Node{Name: b.Name, Disabled: b.Disabled}
	n.Spec.Title = b.Name
	if b.Title != nil {
		n.Spec.Title = *b.Title
	}
	if b.Kind != nil {
		kind, err := graph.ParseNodeKind(*b.Kind)
		if err != nil {
			return Node{}, err
		}
		n.Spec.Kind = kind
	}
	if b.Variable != nil {
		n.Variable = *b.Variable
		if b.Kind == nil {
			n.Spec.Kind = graph.NodeKindVariable
		}
	}

	var err error
	if n.Spec.Position, err = translateVector("position", b.Position, graph.Vector{}); err != nil {
		return Node{}, err
	}
	if n.Spec.Size, err = translateVector("size", b.Size, defaultNodeSize); err != nil {
		return Node{}, err
	}
	if n.Spec.Definition.Inputs, n.Constants, err = translatePorts(b.Inputs, graph.DirectionInput); err != nil {
		return Node{}, err
	}
	if n.Spec.Definition.Outputs, _, err = translatePorts(b.Outputs, graph.DirectionOutput); err != nil {
		return Node{}, err
	}
	return n, nil
}
