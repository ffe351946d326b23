package handlers

import (
	"context"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/state"
)

func (h *handlers) moveElements(_ context.Context, st *state.Container, cmd command.MoveElements) error {
	if cmd.Delta == (graph.Vector{}) {
		return nil
	}
	return editGraph(st, state.RebuildNone, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		for _, id := range cmd.IDs {
			el, ok := g.Element(id)
			if !ok {
				continue
			}
			switch e := el.(type) {
			case *graph.Node:
				if !e.IsDestroyed() {
					e.SetPosition(e.Position().Add(cmd.Delta))
				}
			case *graph.StickyNote:
				r := e.Rect()
				r.Position = r.Position.Add(cmd.Delta)
				e.SetRect(r)
			case *graph.Placemat:
				r := e.Rect()
				r.Position = r.Position.Add(cmd.Delta)
				e.SetRect(r)
			}
		}
		return nil
	})
}

func (h *handlers) alignNodes(ctx context.Context, st *state.Container, cmd command.AlignNodes) error {
	layout := h.layout()
	if layout == nil {
		ctxlog.FromContext(ctx).Warn("No layout available, alignment skipped.")
		return nil
	}
	return editGraph(st, state.RebuildNone, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		entries, err := nodesByID(g, cmd.IDs)
		if err != nil {
			return err
		}
		moved := layout.AlignNodes(cmd.Follow, entries)
		ctxlog.FromContext(ctx).Debug("Nodes aligned.", "entries", len(entries), "moved", len(moved))
		return nil
	})
}

func (h *handlers) setNodeState(_ context.Context, st *state.Container, cmd command.SetNodeState) error {
	return editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		nodes, err := nodesByID(g, cmd.IDs)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			n.SetState(cmd.State)
		}
		return nil
	})
}

func (h *handlers) setPortConstant(_ context.Context, st *state.Container, cmd command.SetPortConstant) error {
	return editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		return g.SetPortConstant(cmd.Port, cmd.Value)
	})
}

func (h *handlers) duplicateNodes(ctx context.Context, st *state.Container, cmd command.DuplicateNodes) error {
	var copies []elementid.ID
	err := editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		nodes, err := nodesByID(g, cmd.IDs)
		if err != nil {
			return err
		}
		clones := make(map[elementid.ID]*graph.Node, len(nodes))
		for _, n := range nodes {
			clone, err := g.DuplicateNode(n, cmd.Offset)
			if err != nil {
				return err
			}
			clones[n.GUID()] = clone
			copies = append(copies, clone.GUID())
		}
		for _, e := range g.Edges() {
			from, okFrom := clones[e.From().NodeID]
			to, okTo := clones[e.To().NodeID]
			if !okFrom || !okTo {
				continue
			}
			out, okOut := from.Port(e.From().PortID)
			in, okIn := to.Port(e.To().PortID)
			if !okOut || !okIn {
				continue
			}
			if _, err := g.CreateEdge(in, out); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Nodes duplicated.", "count", len(copies))

	u := st.Selection().Update()
	defer u.Close()
	u.Clear()
	u.Select(copies...)
	return nil
}
