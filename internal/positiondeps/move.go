package positiondeps

import (
	"context"
	"slices"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// MoveFunc is applied once per dependent node reached by a walk.
type MoveFunc func(n *graph.Node, delta graph.Vector)

// StartNotifyMove begins a drag of seeds. The seeds themselves are moved
// by the caller; the manager moves what follows them.
func (m *Manager) StartNotifyMove(seeds []*graph.Node) {
	m.seeds.Clear()
	m.moved.Clear()
	m.total = graph.Vector{}
	for _, n := range seeds {
		m.seeds.Add(n.GUID())
	}
}

// ProcessMovedNodes walks the dependents of the seeds and applies fn with
// delta to each of them exactly once. Deltas add up until StopNotifyMove.
func (m *Manager) ProcessMovedNodes(delta graph.Vector, fn MoveFunc) {
	m.total = m.total.Add(delta)
	m.walk(m.seeds.IDs(), func(n *graph.Node) {
		m.moved.Add(n.GUID())
		if fn != nil {
			fn(n, delta)
		}
	})
}

// StopNotifyMove ends the drag. The accumulated offset of the seeds and
// everything that followed them is committed as one MoveElements command,
// so the whole drag is a single undo step.
func (m *Manager) StopNotifyMove(ctx context.Context) error {
	defer func() {
		m.seeds.Clear()
		m.moved.Clear()
		m.total = graph.Vector{}
	}()
	if m.seeds.Len() == 0 || m.total == (graph.Vector{}) || m.dispatcher == nil {
		return nil
	}
	ids := m.seeds.IDs()
	for _, id := range m.moved.IDs() {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return m.dispatcher.Dispatch(ctx, command.MoveElements{IDs: ids, Delta: m.total})
}

// Followers returns every node that moves along with seeds, seeds
// excluded.
func (m *Manager) Followers(seeds []elementid.ID) []elementid.ID {
	var out []elementid.ID
	m.walk(seeds, func(n *graph.Node) { out = append(out, n.GUID()) })
	return out
}

// walk visits the dependents reachable from seeds depth first. Seeds are
// marked visited up front and never passed to visit.
func (m *Manager) walk(seeds []elementid.ID, visit func(n *graph.Node)) {
	var visited elementid.Set
	for _, id := range seeds {
		visited.Add(id)
	}
	var step func(id elementid.ID)
	step = func(id elementid.ID) {
		for _, d := range m.GetDependencies(id) {
			next := d.DependentID()
			if !visited.Add(next) {
				continue
			}
			n, ok := m.g.Node(next)
			if !ok {
				continue
			}
			if !m.present(n) {
				continue
			}
			visit(n)
			step(next)
		}
	}
	for _, id := range seeds {
		step(id)
	}
}

func (m *Manager) present(n *graph.Node) bool {
	if m.presence == nil || m.presence.IsPresent(n) {
		return true
	}
	if m.opts.LogDependencies {
		m.logger.Debug("Skipping node without a rendered counterpart.", "node", n.GUID().String(), "title", n.Title())
	}
	return false
}
