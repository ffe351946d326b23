package handlers

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/state"
)

func (h *handlers) createVariableDeclaration(_ context.Context, st *state.Container, cmd command.CreateVariableDeclaration) error {
	var created *graph.VariableDeclaration
	err := editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		v, err := g.CreateVariableDeclaration(cmd.Name, cmd.Type, cmd.Modifiers, cmd.Default, cmd.Scope)
		created = v
		return err
	})
	if err != nil {
		return err
	}
	u := st.Blackboard().Update()
	defer u.Close()
	u.SetExpanded(created.GUID(), true)
	return nil
}

func (h *handlers) reorderVariableDeclaration(_ context.Context, st *state.Container, cmd command.ReorderVariableDeclaration) error {
	return editGraph(st, state.RebuildNone, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		decl, ok := g.VariableDeclaration(cmd.ID)
		if !ok {
			return fmt.Errorf("variable declaration %s not found", cmd.ID)
		}
		var after *graph.VariableDeclaration
		if !cmd.InsertAfter.IsNil() {
			if after, ok = g.VariableDeclaration(cmd.InsertAfter); !ok {
				return fmt.Errorf("variable declaration %s not found", cmd.InsertAfter)
			}
		}
		return g.ReorderVariableDeclaration(decl, after)
	})
}

func (h *handlers) deleteVariableDeclarations(_ context.Context, st *state.Container, cmd command.DeleteVariableDeclarations) error {
	var removed []*graph.VariableDeclaration
	err := editGraph(st, state.RebuildPartial, func(g *graph.Graph, _ *state.GraphViewUpdater) error {
		for _, id := range cmd.IDs {
			if v, ok := g.VariableDeclaration(id); ok {
				removed = append(removed, v)
			}
		}
		return g.DeleteVariableDeclarations(removed, cmd.DeleteUsages)
	})
	if err != nil {
		return err
	}
	u := st.Blackboard().Update()
	defer u.Close()
	for _, v := range removed {
		u.SetExpanded(v.GUID(), false)
	}
	return nil
}
