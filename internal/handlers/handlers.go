// Package handlers implements the command handlers and registers them with
// a dispatcher.
//
// Every handler mutates state through component updaters only, so each
// component moves by at most one version per command. Handlers that touch
// the graph record on the Tool component how much of the graph needs to
// be rebuilt.
package handlers

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/dispatch"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/state"
)

// Layout is the position-dependency manager of the shown graph.
type Layout interface {
	AlignNodes(follow bool, entries []*graph.Node) []elementid.ID
	Rebuild()
}

// Env is what the handlers need beyond the state container.
type Env struct {
	// Layout returns the layout of the shown graph. Nil, or a nil result,
	// makes alignment a no-op.
	Layout func() Layout
	// Translator compiles the graph for BuildAll. Nil selects
	// build.Validator.
	Translator build.Translator
	// OnGraphSwitch runs after LoadGraph replaced the shown graph.
	OnGraphSwitch func(ctx context.Context)
}

type handlers struct {
	env Env
}

// Register installs a handler for every command kind.
func Register(d *dispatch.Dispatcher, env Env) {
	if env.Translator == nil {
		env.Translator = build.Validator{}
	}
	h := &handlers{env: env}

	dispatch.Register(d, h.createNode)
	dispatch.Register(d, h.deleteElements)
	dispatch.Register(d, h.createEdge)
	dispatch.Register(d, h.deleteEdges)
	dispatch.Register(d, h.reorderEdge)
	dispatch.Register(d, h.createStickyNote)
	dispatch.Register(d, h.createPlacemat)

	dispatch.Register(d, h.createVariableDeclaration)
	dispatch.Register(d, h.reorderVariableDeclaration)
	dispatch.Register(d, h.deleteVariableDeclarations)

	dispatch.Register(d, h.moveElements)
	dispatch.Register(d, h.alignNodes)
	dispatch.Register(d, h.setNodeState)
	dispatch.Register(d, h.setPortConstant)
	dispatch.Register(d, h.duplicateNodes)

	dispatch.Register(d, h.selectElements)
	dispatch.Register(d, h.clearSelection)

	dispatch.Register(d, h.loadGraph)
	dispatch.Register(d, h.setTracing)
	dispatch.Register(d, h.buildAll)
	dispatch.Register(d, h.setAutoProcess)
	dispatch.Register(d, h.undoRedo)
}

// editGraph runs fn inside a graph view update and records the rebuild
// the edit calls for.
func editGraph(st *state.Container, rebuild state.RebuildType, fn func(g *graph.Graph, u *state.GraphViewUpdater) error) error {
	if rebuild != state.RebuildNone {
		defer func() {
			tu := st.Tool().Update()
			defer tu.Close()
			tu.SetRebuild(rebuild)
		}()
	}
	u := st.GraphView().Update()
	defer u.Close()
	return fn(u.Graph(), u)
}

func nodesByID(g *graph.Graph, ids []elementid.ID) ([]*graph.Node, error) {
	out := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("node %s not found", id)
		}
		out = append(out, n)
	}
	return out, nil
}

func (h *handlers) layout() Layout {
	if h.env.Layout == nil {
		return nil
	}
	return h.env.Layout()
}
