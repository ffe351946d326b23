package testutil

import (
	"testing"

	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// Ports returns number-typed single-capacity port specs named by ids.
func Ports(ids ...string) []graph.PortSpec {
	out := make([]graph.PortSpec, len(ids))
	for i, id := range ids {
		out[i] = graph.PortSpec{ID: id, Type: cty.Number, Capacity: graph.CapacitySingle}
	}
	return out
}

// MultiPorts is Ports with multi capacity.
func MultiPorts(ids ...string) []graph.PortSpec {
	out := Ports(ids...)
	for i := range out {
		out[i].Capacity = graph.CapacityMulti
	}
	return out
}

// MustNode creates a 100x60 node at pos.
func MustNode(t *testing.T, g *graph.Graph, title string, pos graph.Vector, inputs, outputs []graph.PortSpec) *graph.Node {
	t.Helper()
	n, err := g.CreateNode(graph.NodeSpec{
		Title:      title,
		Position:   pos,
		Size:       graph.Vector{X: 100, Y: 60},
		Definition: graph.NodeDefinition{Inputs: inputs, Outputs: outputs},
	})
	require.NoError(t, err)
	return n
}

// MustEdge connects from.fromPort to to.toPort.
func MustEdge(t *testing.T, g *graph.Graph, from *graph.Node, fromPort string, to *graph.Node, toPort string) *graph.Edge {
	t.Helper()
	out, ok := from.Port(fromPort)
	require.True(t, ok, "port %s.%s", from.Title(), fromPort)
	in, ok := to.Port(toPort)
	require.True(t, ok, "port %s.%s", to.Title(), toPort)
	e, err := g.CreateEdge(in, out)
	require.NoError(t, err)
	return e
}
