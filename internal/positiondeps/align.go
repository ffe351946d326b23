package positiondeps

import (
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// AlignNodes places the nodes linked to each entry beside it: nodes fed by
// the entry go to its right, nodes feeding it go to its left, vertically
// lined up on the connecting ports. Entries stay where they are. With
// follow set, the dependents of every aligned node move by the same offset
// as that node. It returns the GUIDs of the nodes that moved.
func (m *Manager) AlignNodes(follow bool, entries []*graph.Node) []elementid.ID {
	var anchored elementid.Set
	for _, n := range entries {
		anchored.Add(n.GUID())
	}
	var moved elementid.Set

	for _, entry := range entries {
		for _, e := range m.g.EdgesForNode(entry.GUID()) {
			from, to := e.FromPort(), e.ToPort()
			if from == nil || to == nil || from.Node() == to.Node() {
				continue
			}
			var other *graph.Node
			var target graph.Vector
			if from.Node() == entry {
				other = to.Node()
				target = graph.Vector{
					X: entry.Position().X + entry.Size().X + m.opts.HorizontalGap,
					Y: entry.Position().Y + m.portOffset(from) - m.portOffset(to),
				}
			} else {
				other = from.Node()
				target = graph.Vector{
					X: entry.Position().X - m.opts.HorizontalGap - other.Size().X,
					Y: entry.Position().Y + m.portOffset(to) - m.portOffset(from),
				}
			}
			if anchored.Contains(other.GUID()) || !m.present(other) {
				continue
			}
			anchored.Add(other.GUID())

			delta := target.Sub(other.Position())
			if delta == (graph.Vector{}) {
				continue
			}
			other.SetPosition(target)
			moved.Add(other.GUID())
			if !follow {
				continue
			}
			m.walk([]elementid.ID{other.GUID()}, func(n *graph.Node) {
				if anchored.Contains(n.GUID()) {
					return
				}
				anchored.Add(n.GUID())
				n.SetPosition(n.Position().Add(delta))
				moved.Add(n.GUID())
			})
		}
	}
	if m.opts.LogDependencies {
		m.logger.Debug("Aligned nodes.", "entries", len(entries), "moved", moved.Len())
	}
	return moved.IDs()
}

// portOffset is the vertical distance from the top of the node to p.
func (m *Manager) portOffset(p *graph.Port) float64 {
	return m.opts.HeaderHeight + float64(p.Order())*m.opts.PortSpacing + m.opts.PortSpacing/2
}
