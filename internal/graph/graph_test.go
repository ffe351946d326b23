package graph

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func numberPorts(ids ...string) []PortSpec {
	specs := make([]PortSpec, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, PortSpec{ID: id, Type: cty.Number})
	}
	return specs
}

func mustNode(t *testing.T, g *Graph, title string, inputs, outputs []PortSpec) *Node {
	t.Helper()
	n, err := g.CreateNode(NodeSpec{
		Title:      title,
		Size:       Vector{X: 100, Y: 60},
		Definition: NodeDefinition{Inputs: inputs, Outputs: outputs},
	})
	require.NoError(t, err)
	return n
}

func mustEdge(t *testing.T, g *Graph, to, from *Port) *Edge {
	t.Helper()
	e, err := g.CreateEdge(to, from)
	require.NoError(t, err)
	return e
}

type recordingListener struct {
	events []string
}

func (r *recordingListener) NodeAdded(n *Node) { r.events = append(r.events, "node+"+n.Title()) }
func (r *recordingListener) NodeRemoved(n *Node) { r.events = append(r.events, "node-"+n.Title()) }
func (r *recordingListener) EdgeAdded(*Edge) { r.events = append(r.events, "edge+") }
func (r *recordingListener) EdgeRemoved(*Edge) { r.events = append(r.events, "edge-") }
func (r *recordingListener) GraphRestored(*Graph) { r.events = append(r.events, "restored") }

func TestCreateNode_DefinesPorts(t *testing.T) {
	g := New("asset", nil)
	n := mustNode(t, g, "A", numberPorts("a", "b"), numberPorts("out"))

	require.Len(t, n.InputPorts(), 2)
	require.Len(t, n.OutputPorts(), 1)
	assert.Equal(t, "b", n.InputAt(1).ID())
	assert.Equal(t, 1, n.InputAt(1).Order())
	assert.Nil(t, n.InputAt(2))

	p, ok := n.Port("out")
	require.True(t, ok)
	assert.Equal(t, DirectionOutput, p.Direction())
	assert.Nil(t, p.Constant(), "outputs carry no constant")
	assert.True(t, n.InputAt(0).Constant().Value().IsNull())

	assert.Equal(t, []elementid.ID{n.GUID()}, g.LastChanges().Added())
	assert.Equal(t, "asset", n.AssetKey())
}

func TestCreateNode_RejectsDuplicatePortIDs(t *testing.T) {
	g := New("asset", nil)
	_, err := g.CreateNode(NodeSpec{Definition: NodeDefinition{
		Inputs:  numberPorts("x"),
		Outputs: numberPorts("x"),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate port id")
	assert.Empty(t, g.Nodes())
}

func TestCreateEdge_Direction(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", nil, numberPorts("out"))
	b := mustNode(t, g, "B", numberPorts("in"), nil)

	_, err := g.CreateEdge(a.OutputAt(0), b.InputAt(0))
	assert.ErrorIs(t, err, ErrPortDirection)

	other := New("other", nil)
	c := mustNode(t, other, "C", numberPorts("in"), nil)
	_, err = g.CreateEdge(c.InputAt(0), a.OutputAt(0))
	assert.ErrorIs(t, err, ErrForeignElement)

	e := mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
	assert.Same(t, a.OutputAt(0), e.FromPort())
	assert.Same(t, b.InputAt(0), e.ToPort())
	assert.True(t, a.OutputAt(0).IsConnected())
}

func TestDeleteNodes_Cascade(t *testing.T) {
	testCases := []struct {
		name          string
		mode          DeleteConnections
		wantEdges     int
		wantIntegrity bool
	}{
		{name: "delete connections", mode: DeleteConnectionsTrue, wantEdges: 0, wantIntegrity: true},
		{name: "leave connections dangling", mode: DeleteConnectionsFalse, wantEdges: 1, wantIntegrity: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New("asset", nil)
			a := mustNode(t, g, "A", nil, numberPorts("out"))
			b := mustNode(t, g, "B", numberPorts("in"), nil)
			mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
			g.ResetChangeList()

			require.NoError(t, g.DeleteNodes([]*Node{a}, tc.mode))

			assert.Equal(t, []*Node{b}, g.Nodes())
			assert.Len(t, g.Edges(), tc.wantEdges)
			assert.True(t, a.IsDestroyed())
			_, stillIndexed := g.Element(a.GUID())
			assert.True(t, stillIndexed, "a destroyed node keeps its guid until purged")

			err := g.CheckIntegrity()
			if tc.wantIntegrity {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "dangling output port")
			}
		})
	}
}

func TestChangeList_RecordsEffects(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", nil, numberPorts("out"))
	b := mustNode(t, g, "B", numberPorts("in"), nil)

	g.ResetChangeList()
	assert.True(t, g.LastChanges().IsEmpty())

	e := mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
	changes := g.LastChanges()
	assert.Equal(t, []elementid.ID{e.GUID()}, changes.Added())
	assert.Equal(t, []elementid.ID{a.GUID(), b.GUID()}, changes.Changed())

	g.ResetChangeList()
	require.NoError(t, g.DeleteNodes([]*Node{a}, DeleteConnectionsTrue))
	changes = g.LastChanges()
	assert.Equal(t, []elementid.ID{e.GUID(), a.GUID()}, changes.Deleted())
	assert.Equal(t, 2, changes.DeletedCount())
	require.Len(t, changes.DeletedEdges(), 1)
	assert.Equal(t, e.GUID(), changes.DeletedEdges()[0].GUID())
	assert.Equal(t, []elementid.ID{b.GUID()}, changes.Changed())

	g.ResetChangeList()
	b.SetPosition(b.Position())
	assert.True(t, g.LastChanges().IsEmpty(), "setting the same value records nothing")
}

func TestDefineNode_KeepsConstants(t *testing.T) {
	g := New("asset", nil)
	n := mustNode(t, g, "A", numberPorts("x"), nil)
	require.NoError(t, g.SetPortConstant(n.InputAt(0).Ref(), cty.NumberIntVal(5)))

	require.NoError(t, n.SetDefinition(NodeDefinition{Inputs: []PortSpec{
		{ID: "x", Type: cty.Number},
		{ID: "y", Type: cty.String},
	}}))
	x, _ := n.Port("x")
	assert.True(t, x.Constant().Value().RawEquals(cty.NumberIntVal(5)))
	y, _ := n.Port("y")
	assert.True(t, y.Constant().Value().RawEquals(cty.NullVal(cty.String)))

	require.NoError(t, n.SetDefinition(NodeDefinition{Inputs: []PortSpec{{ID: "x", Type: cty.String}}}))
	x, _ = n.Port("x")
	assert.True(t, x.Constant().Value().RawEquals(cty.NullVal(cty.String)), "type change resets the constant")
}

func TestSetPortConstant_Converts(t *testing.T) {
	g := New("asset", nil)
	n := mustNode(t, g, "A", numberPorts("x"), numberPorts("out"))

	require.NoError(t, g.SetPortConstant(n.InputAt(0).Ref(), cty.StringVal("12")))
	assert.True(t, n.InputAt(0).Constant().Value().RawEquals(cty.NumberIntVal(12)))

	err := g.SetPortConstant(n.InputAt(0).Ref(), cty.StringVal("twelve"))
	assert.Error(t, err)
	err = g.SetPortConstant(n.OutputAt(0).Ref(), cty.NumberIntVal(1))
	assert.Error(t, err)
}

func TestReorderEdge(t *testing.T) {
	testCases := []struct {
		name  string
		move  int
		how   ReorderType
		order []string
	}{
		{name: "first", move: 2, how: ReorderFirst, order: []string{"C", "x", "A", "B"}},
		{name: "up", move: 2, how: ReorderUp, order: []string{"A", "x", "C", "B"}},
		{name: "down", move: 0, how: ReorderDown, order: []string{"B", "x", "A", "C"}},
		{name: "last", move: 0, how: ReorderLast, order: []string{"B", "x", "C", "A"}},
		{name: "first of first is a no-op", move: 0, how: ReorderFirst, order: []string{"A", "x", "B", "C"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New("asset", nil)
			src := mustNode(t, g, "src", nil, numberPorts("out", "other"))
			labels := map[elementid.ID]string{}

			var siblings []*Edge
			for i, title := range []string{"A", "B", "C"} {
				dst := mustNode(t, g, title, numberPorts("in"), nil)
				e := mustEdge(t, g, dst.InputAt(0), src.OutputAt(0))
				labels[e.GUID()] = title
				siblings = append(siblings, e)
				if i == 0 {
					x := mustNode(t, g, "x", numberPorts("in"), nil)
					unrelated := mustEdge(t, g, x.InputAt(0), src.OutputAt(1))
					labels[unrelated.GUID()] = "x"
				}
			}

			require.NoError(t, g.ReorderEdge(siblings[tc.move], tc.how))

			var got []string
			for _, e := range g.Edges() {
				got = append(got, labels[e.GUID()])
			}
			if diff := cmp.Diff(tc.order, got); diff != "" {
				t.Errorf("edge order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteVariableDeclarations(t *testing.T) {
	testCases := []struct {
		name         string
		deleteUsages bool
	}{
		{name: "with usages", deleteUsages: true},
		{name: "orphan usages", deleteUsages: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New("asset", nil)
			decl, err := g.CreateVariableDeclaration("speed", cty.Number, ModifierReadWrite, nil, elementid.Nil)
			require.NoError(t, err)
			usage, err := g.CreateNode(NodeSpec{
				Title:         "speed",
				Kind:          NodeKindVariable,
				DeclarationID: decl.GUID(),
				Definition:    NodeDefinition{Outputs: numberPorts("value")},
			})
			require.NoError(t, err)
			consumer := mustNode(t, g, "consumer", numberPorts("in"), nil)
			mustEdge(t, g, consumer.InputAt(0), usage.OutputAt(0))
			g.ResetChangeList()

			require.NoError(t, g.DeleteVariableDeclarations([]*VariableDeclaration{decl}, tc.deleteUsages))

			assert.Empty(t, g.VariableDeclarations())
			assert.True(t, g.LastChanges().BlackboardChanged())
			if tc.deleteUsages {
				assert.True(t, usage.IsDestroyed())
				assert.Empty(t, g.Edges())
			} else {
				assert.False(t, usage.IsDestroyed())
				assert.True(t, usage.DeclarationID().IsNil())
				assert.Len(t, g.Edges(), 1)
			}
			assert.NoError(t, g.CheckIntegrity())
		})
	}
}

func TestVariableDeclarations_NamesAndOrder(t *testing.T) {
	g := New("asset", nil)
	first, err := g.CreateVariableDeclaration("v", cty.String, ModifierRead, nil, elementid.Nil)
	require.NoError(t, err)
	second, err := g.CreateVariableDeclaration("v", cty.String, ModifierRead, nil, elementid.Nil)
	require.NoError(t, err)
	def := cty.NumberIntVal(3)
	third, err := g.CreateVariableDeclaration("count", cty.Number, ModifierExposed, &def, elementid.Nil)
	require.NoError(t, err)

	assert.Equal(t, "v 1", second.Name())
	assert.True(t, third.Default().Value().RawEquals(def))

	require.NoError(t, g.ReorderVariableDeclaration(third, nil))
	assert.Equal(t, []*VariableDeclaration{third, first, second}, g.VariableDeclarations())

	require.NoError(t, g.ReorderVariableDeclaration(third, second))
	assert.Equal(t, []*VariableDeclaration{first, second, third}, g.VariableDeclarations())

	bad := cty.StringVal("nope")
	_, err = g.CreateVariableDeclaration("bad", cty.Number, ModifierRead, &bad, elementid.Nil)
	assert.Error(t, err)
}

func TestDuplicateNode_AssignsNewGUID(t *testing.T) {
	g := New("asset", nil)
	n := mustNode(t, g, "A", numberPorts("x"), nil)
	require.NoError(t, g.SetPortConstant(n.InputAt(0).Ref(), cty.NumberIntVal(7)))

	dup, err := g.DuplicateNode(n, Vector{X: 10, Y: 20})
	require.NoError(t, err)

	assert.NotEqual(t, n.GUID(), dup.GUID())
	assert.Equal(t, n.Position().Add(Vector{X: 10, Y: 20}), dup.Position())
	assert.True(t, dup.InputAt(0).Constant().Value().RawEquals(cty.NumberIntVal(7)))
	assert.NotSame(t, n.InputAt(0).Constant(), dup.InputAt(0).Constant())
	assert.NoError(t, g.CheckIntegrity())
}

func TestCheckIntegrity_DuplicateGUID(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", nil, nil)
	note := g.CreateStickyNote("note", "", Rect{})
	note.guid = a.guid

	err := g.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate guid")
}

func TestCheckIntegrity_PortKeyMismatch(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", numberPorts("in"), nil)
	a.portsByID["renamed"] = a.portsByID["in"]
	delete(a.portsByID, "in")

	err := g.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stored under "renamed"`)
}

func TestPurgeDestroyed(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", nil, nil)
	b := mustNode(t, g, "B", nil, nil)
	require.NoError(t, g.DeleteNodes([]*Node{a}, DeleteConnectionsTrue))

	assert.Equal(t, 1, g.PurgeDestroyed())
	_, ok := g.Element(a.GUID())
	assert.False(t, ok)
	assert.Equal(t, []*Node{b}, g.Nodes())
	assert.Equal(t, 0, g.PurgeDestroyed())
}

func TestListenerNotifications(t *testing.T) {
	g := New("asset", nil)
	rec := &recordingListener{}
	g.AddListener(rec)

	a := mustNode(t, g, "A", nil, numberPorts("out"))
	b := mustNode(t, g, "B", numberPorts("in"), nil)
	mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
	require.NoError(t, g.DeleteNodes([]*Node{a}, DeleteConnectionsTrue))

	assert.Equal(t, []string{"node+A", "node+B", "edge+", "edge-", "node-A"}, rec.events)

	g.RemoveListener(rec)
	mustNode(t, g, "C", nil, nil)
	assert.Len(t, rec.events, 5)
}

func TestUpdatePortsChanged_ResetsEdgeCaches(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", nil, numberPorts("out"))
	b := mustNode(t, g, "B", numberPorts("in"), nil)
	e := mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
	before := e.ToPort()

	require.NoError(t, g.UpdatePortsChanged())

	after := e.ToPort()
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "ports are rebuilt by DefineNode")
	assert.Equal(t, before.Ref(), after.Ref())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := New("asset", nil)
	a := mustNode(t, g, "A", numberPorts("x"), numberPorts("out"))
	b := mustNode(t, g, "B", numberPorts("in"), nil)
	e := mustEdge(t, g, b.InputAt(0), a.OutputAt(0))
	e.InsertControlPoint(0, ControlPoint{Position: Vector{X: 1, Y: 2}, Tightness: 0.5})
	e.SetLabel("flow")
	require.NoError(t, g.SetPortConstant(a.InputAt(0).Ref(), cty.NumberFloatVal(1.5)))
	b.SetState(ModelStateDisabled)
	g.CreateStickyNote("note", "remember", Rect{Size: Vector{X: 200, Y: 100}})
	g.CreatePlacemat("group", Rect{Size: Vector{X: 400, Y: 300}}, "#ff0000").SetCollapsed(true)
	def := cty.StringVal("hi")
	_, err := g.CreateVariableDeclaration("greeting", cty.String, ModifierExposed, &def, elementid.Nil)
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	rec := &recordingListener{}
	restored := New("", nil)
	restored.AddListener(rec)
	require.NoError(t, json.Unmarshal(data, restored))

	again, err := json.Marshal(restored)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	assert.Equal(t, "asset", restored.AssetKey())
	assert.NoError(t, restored.CheckIntegrity())
	assert.True(t, restored.LastChanges().RequiresRebuild())
	assert.Equal(t, []string{"restored"}, rec.events)

	ra, ok := restored.Node(a.GUID())
	require.True(t, ok)
	assert.Same(t, restored, ra.Graph())
	assert.True(t, ra.InputAt(0).Constant().Value().RawEquals(cty.NumberFloatVal(1.5)))
	re, ok := restored.Edge(e.GUID())
	require.True(t, ok)
	assert.Same(t, ra.OutputAt(0), re.FromPort())
}

func TestSnapshot_RejectsUnknownFormat(t *testing.T) {
	g := New("asset", nil)
	err := json.Unmarshal([]byte(`{"format": 99}`), g)
	assert.ErrorContains(t, err, "unsupported graph snapshot format")
}

func TestGUIDUniqueness(t *testing.T) {
	g := New("asset", nil)
	for i := 0; i < 20; i++ {
		n := mustNode(t, g, "n", numberPorts("in"), numberPorts("out"))
		_, err := g.DuplicateNode(n, Vector{})
		require.NoError(t, err)
	}
	g.CreateStickyNote("s", "", Rect{})
	g.CreatePlacemat("p", Rect{}, "")

	seen := map[elementid.ID]bool{}
	for _, n := range g.Nodes() {
		require.False(t, seen[n.GUID()])
		seen[n.GUID()] = true
	}
	assert.NoError(t, g.CheckIntegrity())
}
