package state

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestUpdateScope_BumpsOncePerScope(t *testing.T) {
	s := NewSelection(elementid.New())
	start := s.Version()

	u := s.Update()
	u.Select(elementid.New(), elementid.New(), elementid.New())
	u.Deselect(s.IDs()[0])
	u.Close()
	assert.Equal(t, start+1, s.Version())

	u.Close()
	assert.Equal(t, start+1, s.Version(), "closing twice is harmless")

	noop := s.Update()
	noop.Deselect(elementid.New())
	noop.Close()
	assert.Equal(t, start+1, s.Version(), "no mutation, no bump")
}

func TestUpdateScope_BumpsOnPanic(t *testing.T) {
	s := NewSelection(elementid.New())
	start := s.Version()

	assert.Panics(t, func() {
		u := s.Update()
		defer u.Close()
		u.Select(elementid.New())
		panic("handler failed")
	})
	assert.Equal(t, start+1, s.Version())
}

func TestUpdateScope_UseAfterClosePanics(t *testing.T) {
	s := NewSelection(elementid.New())
	u := s.Update()
	u.Close()
	assert.Panics(t, func() { u.Select(elementid.New()) })
}

func TestUpdateType(t *testing.T) {
	s := NewSelection(elementid.New())
	a, b := elementid.New(), elementid.New()

	assert.Equal(t, UpdateComplete, s.UpdateType(0), "never seen")
	assert.Equal(t, UpdateNone, s.UpdateType(s.Version()))

	seen := s.Version()
	u := s.Update()
	u.Select(a)
	u.Close()
	u = s.Update()
	u.Select(b)
	u.Close()

	assert.Equal(t, UpdatePartial, s.UpdateType(seen))
	assert.Equal(t, []elementid.ID{a, b}, s.ChangedSince(seen))
	assert.Equal(t, []elementid.ID{b}, s.ChangedSince(seen+1))

	s.PurgeChangesets(seen + 1)
	assert.Equal(t, UpdateComplete, s.UpdateType(seen), "history no longer covers the gap")
	assert.Equal(t, UpdatePartial, s.UpdateType(seen+1))

	u = s.Update()
	u.ForceComplete()
	u.Close()
	assert.Equal(t, UpdateComplete, s.UpdateType(seen+2))
	assert.Empty(t, s.ChangedSince(seen+2))
}

func TestGraphViewUpdater_CollectsGraphChanges(t *testing.T) {
	v := NewGraphView(elementid.New(), "asset", nil)
	start := v.Version()

	u := v.Update()
	n, err := u.Graph().CreateNode(graph.NodeSpec{Title: "A"})
	require.NoError(t, err)
	u.Close()

	assert.Equal(t, start+1, v.Version())
	assert.Equal(t, []elementid.ID{n.GUID()}, v.ChangedSince(start))

	// Opening an updater without touching anything must not bump, even
	// though the change list still holds the previous edit.
	idle := v.Update()
	idle.Close()
	assert.Equal(t, start+1, v.Version())

	u = v.Update()
	n.SetPosition(graph.Vector{X: 5})
	u.Close()
	assert.Equal(t, start+2, v.Version())
}

func TestSnapshotRestore(t *testing.T) {
	view := elementid.New()
	id := elementid.New()

	sel := NewSelection(view)
	su := sel.Update()
	su.Select(id)
	su.Close()

	gv := NewGraphView(view, "asset", nil)
	gu := gv.Update()
	_, err := gu.Graph().CreateNode(graph.NodeSpec{
		Title:      "A",
		Definition: graph.NodeDefinition{Inputs: []graph.PortSpec{{ID: "in", Type: cty.String}}},
	})
	require.NoError(t, err)
	gu.SetViewport(Viewport{Position: graph.Vector{X: 3, Y: 4}, Zoom: 2})
	gu.Close()

	bb := NewBlackboard(view)
	bu := bb.Update()
	bu.SetExpanded(id, true)
	bu.SetSectionCollapsed("exposed", true)
	bu.Close()

	win := NewWindow(view)
	wu := win.Update()
	wu.SetAssetKey("graphs/main")
	wu.PushBreadcrumb("graphs/root")
	wu.Close()

	tr := NewTracing(view)
	tu := tr.Update()
	tu.SetEnabled(true)
	tu.SetFrame(12)
	tu.SetTarget(id)
	tu.Close()

	tool := NewTool(view)
	tlu := tool.Update()
	tlu.SetCompilation(build.StatusFailed, 3)
	tlu.SetAutoProcess(true)
	tlu.Close()

	testCases := []struct {
		name  string
		src   Component
		fresh Component
	}{
		{name: NameSelection, src: sel, fresh: NewSelection(view)},
		{name: NameGraphView, src: gv, fresh: NewGraphView(view, "", nil)},
		{name: NameBlackboard, src: bb, fresh: NewBlackboard(view)},
		{name: NameWindow, src: win, fresh: NewWindow(view)},
		{name: NameTracing, src: tr, fresh: NewTracing(view)},
		{name: NameTool, src: tool, fresh: NewTool(view)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.src.Snapshot()
			require.NoError(t, err)

			before := tc.fresh.Version()
			require.NoError(t, tc.fresh.Restore(data))
			require.NoError(t, tc.fresh.ValidateAfterDeserialize())
			assert.Equal(t, before+1, tc.fresh.Version())
			assert.Equal(t, UpdateComplete, tc.fresh.UpdateType(before))

			again, err := tc.fresh.Snapshot()
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}

	t.Run("wrong component", func(t *testing.T) {
		data, err := sel.Snapshot()
		require.NoError(t, err)
		assert.ErrorContains(t, NewWindow(view).Restore(data), "belongs to")
	})
}

func TestContainer_PersistsPerGraphComponents(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend()
	cache, err := persist.NewCache(ctx, backend)
	require.NoError(t, err)
	view := elementid.New()

	c := NewContainer(view, cache, nil, nil)
	var resolved []string
	c.OnGraphResolved(func(g *graph.Graph) { resolved = append(resolved, g.AssetKey()) })

	wu := c.Window().Update()
	wu.SetAssetKey("graphs/main")
	wu.Close()

	gu := c.GraphView().Update()
	node, err := gu.Graph().CreateNode(graph.NodeSpec{Title: "kept"})
	require.NoError(t, err)
	gu.Close()
	su := c.Selection().Update()
	su.Select(node.GUID())
	su.Close()
	oldVersion := c.GraphView().Version()

	require.NoError(t, c.Reset(ctx))

	restored, ok := c.Graph().Node(node.GUID())
	require.True(t, ok, "graph comes back from the cache")
	assert.Equal(t, "kept", restored.Title())
	assert.Equal(t, []elementid.ID{node.GUID()}, c.Selection().IDs())
	assert.Greater(t, c.GraphView().Version(), oldVersion, "versions keep increasing across a reset")
	if diff := cmp.Diff([]string{"graphs/main", "graphs/main"}, resolved); diff != "" {
		t.Errorf("graph hook calls mismatch (-want +got):\n%s", diff)
	}

	wu = c.Window().Update()
	wu.SetAssetKey("graphs/other")
	wu.Close()
	require.NoError(t, c.Reset(ctx))
	assert.Empty(t, c.Graph().Nodes(), "another asset has its own graph")
	assert.Equal(t, 0, c.Selection().Len())
}

func TestContainer_ValidatePrunesSelection(t *testing.T) {
	c := NewContainer(elementid.New(), nil, nil, nil)
	gu := c.GraphView().Update()
	n, err := gu.Graph().CreateNode(graph.NodeSpec{Title: "A"})
	require.NoError(t, err)
	gu.Close()

	su := c.Selection().Update()
	su.Select(n.GUID(), elementid.New())
	su.Close()

	require.NoError(t, c.ValidateAfterDeserialize())
	assert.Equal(t, []elementid.ID{n.GUID()}, c.Selection().IDs())
}

func TestValueSnapshots(t *testing.T) {
	view := elementid.New()

	t.Run("untargeted tracing", func(t *testing.T) {
		data, err := NewTracing(view).Snapshot()
		require.NoError(t, err)
		fresh := NewTracing(view)
		require.NoError(t, fresh.Restore(data))
		assert.True(t, fresh.Target().IsNil())
	})

	t.Run("mistyped tool field", func(t *testing.T) {
		data := []byte(`{"format":1,"component":"Tool","data":{"last_rebuild":"full","last_status":0,"error_count":0,"auto_process":false}}`)
		assert.ErrorContains(t, NewTool(view).Restore(data), "failed to decode Tool")
	})
}
