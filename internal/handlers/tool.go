package handlers

import (
	"context"

	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/state"
)

func (h *handlers) selectElements(_ context.Context, st *state.Container, cmd command.SelectElements) error {
	g := st.Graph()
	ids := make([]elementid.ID, 0, len(cmd.IDs))
	for _, id := range cmd.IDs {
		if _, ok := g.Element(id); ok {
			ids = append(ids, id)
		}
	}

	sel := st.Selection()
	u := sel.Update()
	defer u.Close()
	switch cmd.Mode {
	case command.SelectReplace:
		u.Clear()
		u.Select(ids...)
	case command.SelectAdd:
		u.Select(ids...)
	case command.SelectRemove:
		u.Deselect(ids...)
	case command.SelectToggle:
		for _, id := range ids {
			if sel.IsSelected(id) {
				u.Deselect(id)
			} else {
				u.Select(id)
			}
		}
	}
	return nil
}

func (h *handlers) clearSelection(_ context.Context, st *state.Container, _ command.ClearSelection) error {
	u := st.Selection().Update()
	defer u.Close()
	u.Clear()
	return nil
}

func (h *handlers) loadGraph(ctx context.Context, st *state.Container, cmd command.LoadGraph) error {
	logger := ctxlog.FromContext(ctx)
	current := st.Window().AssetKey()
	if cmd.AssetKey == current {
		logger.Debug("Graph already shown.", "asset", current)
		return nil
	}
	if err := st.Reset(ctx); err != nil {
		// The cache drops what it cannot write; the switch goes on.
		logger.Warn("Failed to persist the previous graph.", "asset", current, "error", err)
	}

	wu := st.Window().Update()
	defer wu.Close()
	if cmd.PushBreadcrumb && current != "" {
		wu.PushBreadcrumb(current)
	}
	wu.SetAssetKey(cmd.AssetKey)

	tu := st.Tool().Update()
	defer tu.Close()
	tu.SetRebuild(state.RebuildFull)

	g := st.Graph()
	if h.env.OnGraphSwitch != nil {
		h.env.OnGraphSwitch(ctx)
	}
	logger.Info("Graph loaded.", "asset", cmd.AssetKey, "nodes", len(g.Nodes()), "edges", len(g.Edges()))
	return nil
}

func (h *handlers) setTracing(_ context.Context, st *state.Container, cmd command.SetTracing) error {
	u := st.Tracing().Update()
	defer u.Close()
	if cmd.Enabled != nil {
		u.SetEnabled(*cmd.Enabled)
	}
	if cmd.Frame != nil {
		u.SetFrame(*cmd.Frame)
	}
	if cmd.Step != nil {
		u.SetStep(*cmd.Step)
	}
	if cmd.Target != nil {
		u.SetTarget(*cmd.Target)
	}
	return nil
}

func (h *handlers) buildAll(ctx context.Context, st *state.Container, cmd command.BuildAll) error {
	result := build.Compile(ctx, h.env.Translator, st.Graph(), cmd.Options)
	u := st.Tool().Update()
	defer u.Close()
	u.SetCompilation(result.Status, len(result.Errors))
	ctxlog.FromContext(ctx).Info("Build finished.", "status", result.Status.String(), "errors", len(result.Errors))
	return nil
}

func (h *handlers) setAutoProcess(_ context.Context, st *state.Container, cmd command.SetAutoProcess) error {
	u := st.Tool().Update()
	defer u.Close()
	u.SetAutoProcess(cmd.Enabled)
	return nil
}

// undoRedo relinks the restored graph: ports are recomputed from the
// stencil's entry points outward and the dependency maps are rebuilt.
func (h *handlers) undoRedo(ctx context.Context, st *state.Container, cmd command.UndoRedo) error {
	err := editGraph(st, state.RebuildFull, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		g.LastChanges().SetRequiresRebuild()
		return g.UpdatePortsChanged()
	})
	if layout := h.layout(); layout != nil {
		layout.Rebuild()
	}
	ctxlog.FromContext(ctx).Debug("State restored from history.", "redo", cmd.Redo)
	return err
}
