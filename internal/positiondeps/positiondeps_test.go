package positiondeps

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/stencil"
	"github.com/specialistvlad/graphtools/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	cmds []command.Command
}

func (r *recordingDispatcher) Dispatch(_ context.Context, cmd command.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

type absent map[elementid.ID]bool

func (a absent) IsPresent(n *graph.Node) bool { return !a[n.GUID()] }

func newManager(t *testing.T) (*Manager, *graph.Graph, *recordingDispatcher) {
	t.Helper()
	g := graph.New("test", stencil.Basic{})
	d := &recordingDispatcher{}
	return New(g, d, DefaultOptions(), nil), g, d
}

func linked(t *testing.T, m *Manager, parent, dependent *graph.Node) int {
	t.Helper()
	for _, d := range m.GetDependencies(parent.GUID()) {
		if l, ok := d.(*LinkedNodesDependency); ok && l.DependentID() == dependent.GUID() {
			return l.Count()
		}
	}
	return 0
}

func TestParallelEdgesShareOneDependency(t *testing.T) {
	m, g, _ := newManager(t)
	a := testutil.MustNode(t, g, "a", graph.Vector{}, nil, testutil.Ports("o1", "o2"))
	b := testutil.MustNode(t, g, "b", graph.Vector{X: 300}, testutil.Ports("i1", "i2"), nil)

	e1 := testutil.MustEdge(t, g, a, "o1", b, "i1")
	e2 := testutil.MustEdge(t, g, a, "o2", b, "i2")

	deps := m.GetDependencies(a.GUID())
	require.Len(t, deps, 1)
	assert.Equal(t, 2, linked(t, m, a, b))
	assert.Empty(t, m.GetDependencies(b.GUID()))

	require.NoError(t, g.DeleteEdges([]*graph.Edge{e1}))
	assert.Equal(t, 1, linked(t, m, a, b))

	require.NoError(t, g.DeleteEdges([]*graph.Edge{e2}))
	assert.Empty(t, m.GetDependencies(a.GUID()))
	assert.Empty(t, m.deps, "no empty containers are left behind")
}

func TestRebuildIsIdempotent(t *testing.T) {
	m, g, _ := newManager(t)
	a := testutil.MustNode(t, g, "a", graph.Vector{}, nil, testutil.MultiPorts("out"))
	b := testutil.MustNode(t, g, "b", graph.Vector{}, testutil.Ports("in"), nil)
	c := testutil.MustNode(t, g, "c", graph.Vector{}, testutil.Ports("in"), nil)
	testutil.MustEdge(t, g, a, "out", b, "in")
	testutil.MustEdge(t, g, a, "out", c, "in")

	before := m.GetDependencies(a.GUID())
	m.Rebuild()
	m.Rebuild()
	after := m.GetDependencies(a.GUID())

	opt := cmp.AllowUnexported(LinkedNodesDependency{}, elementid.ID{})
	assert.True(t, cmp.Equal(before, after, opt), cmp.Diff(before, after, opt))
}

func TestRemove_EitherDirection(t *testing.T) {
	m, g, _ := newManager(t)
	a := testutil.MustNode(t, g, "a", graph.Vector{}, nil, testutil.Ports("out"))
	b := testutil.MustNode(t, g, "b", graph.Vector{}, testutil.Ports("in"), nil)
	testutil.MustEdge(t, g, a, "out", b, "in")

	assert.True(t, m.Remove(b.GUID(), a.GUID()))
	assert.False(t, m.Remove(a.GUID(), b.GUID()))
	assert.Empty(t, m.deps)
}

func TestMove_VisitsEachDependentOnce(t *testing.T) {
	m, g, d := newManager(t)
	a := testutil.MustNode(t, g, "a", graph.Vector{}, testutil.Ports("in"), testutil.MultiPorts("out"))
	b := testutil.MustNode(t, g, "b", graph.Vector{}, testutil.Ports("in"), testutil.MultiPorts("out"))
	c := testutil.MustNode(t, g, "c", graph.Vector{}, testutil.Ports("in"), testutil.MultiPorts("out"))
	testutil.MustEdge(t, g, a, "out", b, "in")
	testutil.MustEdge(t, g, b, "out", c, "in")
	testutil.MustEdge(t, g, a, "out", c, "in")
	testutil.MustEdge(t, g, c, "out", a, "in") // cycle back to the seed

	m.StartNotifyMove([]*graph.Node{a})
	counts := make(map[string]int)
	step := graph.Vector{X: 5, Y: 1}
	for i := 0; i < 2; i++ {
		m.ProcessMovedNodes(step, func(n *graph.Node, delta graph.Vector) {
			assert.Equal(t, step, delta)
			counts[n.Title()]++
		})
	}
	assert.Equal(t, map[string]int{"b": 2, "c": 2}, counts)

	require.NoError(t, m.StopNotifyMove(context.Background()))
	require.Len(t, d.cmds, 1)
	move, ok := d.cmds[0].(command.MoveElements)
	require.True(t, ok)
	assert.Equal(t, graph.Vector{X: 10, Y: 2}, move.Delta)
	assert.ElementsMatch(t, []elementid.ID{a.GUID(), b.GUID(), c.GUID()}, move.IDs)

	require.NoError(t, m.StopNotifyMove(context.Background()))
	assert.Len(t, d.cmds, 1, "nothing left to commit")
}

func TestMove_SkipsAbsentNodes(t *testing.T) {
	g := graph.New("test", stencil.Basic{})
	logger, logs := testutil.NewLogger()
	opts := DefaultOptions()
	opts.LogDependencies = true
	m := New(g, nil, opts, logger)

	a := testutil.MustNode(t, g, "a", graph.Vector{}, nil, testutil.MultiPorts("out"))
	b := testutil.MustNode(t, g, "b", graph.Vector{}, testutil.Ports("in"), testutil.MultiPorts("out"))
	c := testutil.MustNode(t, g, "c", graph.Vector{}, testutil.Ports("in"), nil)
	testutil.MustEdge(t, g, a, "out", b, "in")
	testutil.MustEdge(t, g, b, "out", c, "in")
	m.SetPresence(absent{b.GUID(): true})

	assert.Empty(t, m.Followers([]elementid.ID{a.GUID()}))
	assert.Equal(t, 1, logs.Count("Skipping node without a rendered counterpart."))
}

func TestPortalGroups(t *testing.T) {
	m, g, _ := newManager(t)
	decl := elementid.New()
	portal := func(title string) *graph.Node {
		n, err := g.CreateNode(graph.NodeSpec{Title: title, Kind: graph.NodeKindPortalEntry, DeclarationID: decl})
		require.NoError(t, err)
		return n
	}
	p1 := portal("p1")
	assert.Empty(t, m.portalDeps)

	p2 := portal("p2")
	p3 := portal("p3")
	require.Len(t, m.GetDependencies(p1.GUID()), 2)
	require.Len(t, m.GetDependencies(p3.GUID()), 2)

	require.NoError(t, g.DeleteNodes([]*graph.Node{p2}, graph.DeleteConnectionsTrue))
	deps := m.GetDependencies(p1.GUID())
	require.Len(t, deps, 1)
	assert.Equal(t, p3.GUID(), deps[0].DependentID())
	assert.Empty(t, m.GetDependencies(p2.GUID()))

	require.NoError(t, g.DeleteNodes([]*graph.Node{p3}, graph.DeleteConnectionsTrue))
	assert.Empty(t, m.portalDeps)
}

func TestAlignNodes(t *testing.T) {
	setup := func(t *testing.T) (*Manager, *graph.Node, *graph.Node, *graph.Node) {
		m, g, _ := newManager(t)
		a := testutil.MustNode(t, g, "a", graph.Vector{X: 0, Y: 0}, nil, testutil.Ports("o1", "o2"))
		b := testutil.MustNode(t, g, "b", graph.Vector{X: 500, Y: 300}, testutil.Ports("in"), testutil.Ports("out"))
		c := testutil.MustNode(t, g, "c", graph.Vector{X: 900, Y: 900}, testutil.Ports("in"), nil)
		testutil.MustEdge(t, g, a, "o2", b, "in")
		testutil.MustEdge(t, g, b, "out", c, "in")
		return m, a, b, c
	}

	t.Run("output parent places dependent to the right", func(t *testing.T) {
		m, a, b, c := setup(t)
		moved := m.AlignNodes(false, []*graph.Node{a})

		assert.Equal(t, []elementid.ID{b.GUID()}, moved)
		// o2 is one port spacing below in.
		assert.Equal(t, graph.Vector{X: 140, Y: 20}, b.Position())
		assert.Equal(t, graph.Vector{X: 900, Y: 900}, c.Position())
	})

	t.Run("follow moves the dependents along", func(t *testing.T) {
		m, a, b, c := setup(t)
		moved := m.AlignNodes(true, []*graph.Node{a})

		assert.ElementsMatch(t, []elementid.ID{b.GUID(), c.GUID()}, moved)
		assert.Equal(t, graph.Vector{X: 540, Y: 620}, c.Position())
	})

	t.Run("input parent places the feeder to the left", func(t *testing.T) {
		m, a, b, _ := setup(t)
		m.AlignNodes(false, []*graph.Node{b})

		assert.Equal(t, graph.Vector{X: 500 - 40 - 100, Y: 280}, a.Position())
	})

	t.Run("aligned nodes stay put", func(t *testing.T) {
		m, a, _, _ := setup(t)
		m.AlignNodes(false, []*graph.Node{a})
		assert.Empty(t, m.AlignNodes(false, []*graph.Node{a}))
	})
}

func TestGraphRestored_Rebuilds(t *testing.T) {
	m, g, _ := newManager(t)
	a := testutil.MustNode(t, g, "a", graph.Vector{}, nil, testutil.Ports("out"))
	b := testutil.MustNode(t, g, "b", graph.Vector{}, testutil.Ports("in"), nil)
	snapshot, err := json.Marshal(g)
	require.NoError(t, err)

	testutil.MustEdge(t, g, a, "out", b, "in")
	require.Equal(t, 1, linked(t, m, a, b))

	require.NoError(t, g.UnmarshalJSON(snapshot))
	assert.Empty(t, m.deps)
}
