// Package observers holds the stock state observers.
package observers

import (
	"context"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/observer"
	"github.com/specialistvlad/graphtools/internal/state"
)

// Aligner places nodes next to the entries they are linked to.
type Aligner interface {
	AlignNodes(follow bool, entries []*graph.Node) []elementid.ID
}

// AutoAlign aligns the nodes the last command flagged for auto-alignment.
type AutoAlign struct {
	aligner func() Aligner
	follow  bool
}

var _ observer.Observer = (*AutoAlign)(nil)

// NewAutoAlign returns the observer. aligner is asked for the aligner of
// the shown graph on every run and may return nil.
func NewAutoAlign(aligner func() Aligner, follow bool) *AutoAlign {
	return &AutoAlign{aligner: aligner, follow: follow}
}

func (a *AutoAlign) Name() string       { return "AutoAlign" }
func (a *AutoAlign) Observed() []string { return []string{state.NameGraphView} }
func (a *AutoAlign) Updated() []string  { return []string{state.NameGraphView} }

func (a *AutoAlign) Observe(ctx context.Context, st *state.Container, obs observer.Observation) error {
	if obs.UpdateType(state.NameGraphView) == state.UpdateNone {
		return nil
	}
	g := st.Graph()
	var entries []*graph.Node
	for _, id := range g.LastChanges().ToAutoAlign() {
		if n, ok := g.Node(id); ok {
			entries = append(entries, n)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	aligner := a.aligner()
	if aligner == nil {
		return nil
	}

	u := st.GraphView().Update()
	defer u.Close()
	moved := aligner.AlignNodes(a.follow, entries)
	ctxlog.FromContext(ctx).Debug("Auto-aligned nodes.", "entries", len(entries), "moved", len(moved))
	return nil
}
