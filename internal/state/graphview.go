package state

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// NameGraphView is the component name of GraphView.
const NameGraphView = "GraphView"

// Viewport is the visible part of the canvas.
type Viewport struct {
	Position graph.Vector `json:"position"`
	Zoom     float64      `json:"zoom"`
}

// GraphView holds the graph shown in a view and the view's viewport. Its
// snapshot includes the whole graph, so undoing it restores structure.
type GraphView struct {
	Base
	g        *graph.Graph
	viewport Viewport
}

// NewGraphView returns a view over an empty graph for assetKey.
func NewGraphView(viewKey elementid.ID, assetKey string, stencil graph.Stencil) *GraphView {
	return &GraphView{
		Base:     newBase(NameGraphView, viewKey),
		g:        graph.New(assetKey, stencil),
		viewport: Viewport{Zoom: 1},
	}
}

// Graph returns the graph for reading. Mutate it through an updater.
func (v *GraphView) Graph() *graph.Graph { return v.g }

// Viewport returns the current viewport.
func (v *GraphView) Viewport() Viewport { return v.viewport }

// GraphViewUpdater mutates a GraphView. Structural edits made on the graph
// while the updater is open are picked up from the graph's change list when
// it closes.
type GraphViewUpdater struct {
	scope
	v     *GraphView
	start uint64
}

// Update opens an update scope.
func (v *GraphView) Update() *GraphViewUpdater {
	return &GraphViewUpdater{
		scope: scope{base: &v.Base},
		v:     v,
		start: v.g.LastChanges().Mutations(),
	}
}

// Graph returns the graph for mutation.
func (u *GraphViewUpdater) Graph() *graph.Graph {
	u.mustBeOpen()
	return u.v.g
}

// SetViewport moves or zooms the view.
func (u *GraphViewUpdater) SetViewport(vp Viewport) {
	u.mustBeOpen()
	if u.v.viewport == vp {
		return
	}
	u.v.viewport = vp
	u.touch()
}

// MarkChanged records ids as changed without going through the graph.
func (u *GraphViewUpdater) MarkChanged(ids ...elementid.ID) {
	u.mustBeOpen()
	u.touch(ids...)
}

// Close folds the graph's recorded changes into the changeset and ends the
// update.
func (u *GraphViewUpdater) Close() {
	if u.closed {
		return
	}
	changes := u.v.g.LastChanges()
	if changes.Mutations() != u.start {
		u.touch(changes.Touched()...)
		u.touch(changes.Deleted()...)
		if changes.RequiresRebuild() {
			u.ForceComplete()
		}
	}
	u.scope.Close()
}

type graphViewDoc struct {
	Viewport Viewport        `json:"viewport"`
	Graph    json.RawMessage `json:"graph"`
}

func (v *GraphView) Snapshot() ([]byte, error) {
	raw, err := json.Marshal(v.g)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize graph: %w", err)
	}
	return marshalEnvelope(v.name, graphViewDoc{Viewport: v.viewport, Graph: raw})
}

// Restore replaces the viewport and the graph content in place. The graph
// object, its stencil and its listeners are kept.
func (v *GraphView) Restore(data []byte) error {
	var doc graphViewDoc
	if err := unmarshalEnvelope(v.name, data, &doc); err != nil {
		return err
	}
	u := v.Update()
	defer u.Close()
	u.ForceComplete()
	if len(doc.Graph) > 0 {
		if err := v.g.UnmarshalJSON(doc.Graph); err != nil {
			return err
		}
	}
	v.viewport = doc.Viewport
	if v.viewport.Zoom == 0 {
		v.viewport.Zoom = 1
	}
	return nil
}

// ValidateAfterDeserialize drops the cached ports of every edge. Ports are
// recreated by a restore, so cached pointers would be stale.
func (v *GraphView) ValidateAfterDeserialize() error {
	for _, e := range v.g.Edges() {
		e.ResetPortCache()
	}
	return nil
}
