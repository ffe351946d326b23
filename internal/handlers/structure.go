package handlers

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/state"
)

func (h *handlers) createNode(ctx context.Context, st *state.Container, cmd command.CreateNode) error {
	var created *graph.Node
	err := editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		n, err := g.CreateNode(cmd.Spec)
		if err != nil {
			return err
		}
		if cmd.AutoAlign {
			g.LastChanges().MarkForAutoAlign(n.GUID())
		}
		created = n
		return nil
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Node created.", "node", created.GUID().String(), "title", created.Title())
	if cmd.Select {
		u := st.Selection().Update()
		defer u.Close()
		u.Clear()
		u.Select(created.GUID())
	}
	return nil
}

func (h *handlers) deleteElements(ctx context.Context, st *state.Container, cmd command.DeleteElements) error {
	var deleted []elementid.ID
	err := editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		var (
			nodes     []*graph.Node
			edges     []*graph.Edge
			notes     []*graph.StickyNote
			placemats []*graph.Placemat
			variables []*graph.VariableDeclaration
		)
		for _, id := range cmd.IDs {
			el, ok := g.Element(id)
			if !ok {
				continue
			}
			switch e := el.(type) {
			case *graph.Node:
				if e.IsDestroyed() {
					continue
				}
				nodes = append(nodes, e)
			case *graph.Edge:
				edges = append(edges, e)
			case *graph.StickyNote:
				notes = append(notes, e)
			case *graph.Placemat:
				placemats = append(placemats, e)
			case *graph.VariableDeclaration:
				variables = append(variables, e)
			default:
				continue
			}
			deleted = append(deleted, id)
		}

		if err := g.DeleteEdges(edges); err != nil {
			return err
		}
		if err := g.DeleteNodes(nodes, cmd.DeleteConnections); err != nil {
			return err
		}
		g.DeleteStickyNotes(notes)
		g.DeletePlacemats(placemats)
		return g.DeleteVariableDeclarations(variables, false)
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Elements deleted.", "count", len(deleted))

	u := st.Selection().Update()
	defer u.Close()
	u.Deselect(deleted...)
	return nil
}

func (h *handlers) createEdge(ctx context.Context, st *state.Container, cmd command.CreateEdge) error {
	return editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		to := g.ResolvePort(cmd.To)
		if to == nil {
			return fmt.Errorf("input port %s not found", cmd.To)
		}
		from := g.ResolvePort(cmd.From)
		if from == nil {
			return fmt.Errorf("output port %s not found", cmd.From)
		}

		var replaced []*graph.Edge
		if to.Capacity() == graph.CapacitySingle {
			replaced = append(replaced, to.Edges()...)
		}
		if from.Capacity() == graph.CapacitySingle {
			replaced = append(replaced, from.Edges()...)
		}
		if err := g.DeleteEdges(replaced); err != nil {
			return err
		}

		e, err := g.CreateEdge(to, from)
		if err != nil {
			return err
		}
		if cmd.AutoAlign {
			g.LastChanges().MarkForAutoAlign(from.Node().GUID())
		}
		ctxlog.FromContext(ctx).Debug("Edge created.", "edge", e.GUID().String(), "from", cmd.From.String(), "to", cmd.To.String(), "replaced", len(replaced))
		return nil
	})
}

func (h *handlers) deleteEdges(_ context.Context, st *state.Container, cmd command.DeleteEdges) error {
	return editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		var edges []*graph.Edge
		for _, id := range cmd.IDs {
			if e, ok := g.Edge(id); ok {
				edges = append(edges, e)
			}
		}
		return g.DeleteEdges(edges)
	})
}

func (h *handlers) reorderEdge(_ context.Context, st *state.Container, cmd command.ReorderEdge) error {
	return editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		e, ok := g.Edge(cmd.ID)
		if !ok {
			return fmt.Errorf("edge %s not found", cmd.ID)
		}
		return g.ReorderEdge(e, cmd.Type)
	})
}

func (h *handlers) createStickyNote(_ context.Context, st *state.Container, cmd command.CreateStickyNote) error {
	return editGraph(st, state.RebuildNone, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		g.CreateStickyNote(cmd.Title, cmd.Contents, cmd.Rect)
		return nil
	})
}

func (h *handlers) createPlacemat(_ context.Context, st *state.Container, cmd command.CreatePlacemat) error {
	return editGraph(st, state.RebuildNone, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		g.CreatePlacemat(cmd.Title, cmd.Rect, cmd.Color)
		return nil
	})
}
