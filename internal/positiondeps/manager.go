package positiondeps

import (
	"context"
	"log/slog"
	"slices"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// Dispatcher is the part of the command dispatcher the manager needs to
// commit a drag.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd command.Command) error
}

// Presence tells whether a node currently has a rendered counterpart.
// Nodes without one are skipped by moves and alignment.
type Presence interface {
	IsPresent(n *graph.Node) bool
}

// Options configures layout and diagnostics.
type Options struct {
	// HorizontalGap separates aligned nodes.
	HorizontalGap float64
	// HeaderHeight is the vertical offset of the first port.
	HeaderHeight float64
	// PortSpacing is the vertical distance between two ports.
	PortSpacing float64
	// LogDependencies logs skipped nodes and dependency changes.
	LogDependencies bool
}

// DefaultOptions matches the stock node layout.
func DefaultOptions() Options {
	return Options{HorizontalGap: 40, HeaderHeight: 24, PortSpacing: 20}
}

// Manager holds the dependency maps of one graph.
type Manager struct {
	g          *graph.Graph
	dispatcher Dispatcher
	presence   Presence
	opts       Options
	logger     *slog.Logger

	// deps[parent][dependent]
	deps       map[elementid.ID]map[elementid.ID]*LinkedNodesDependency
	portalDeps map[elementid.ID]map[elementid.ID]*PortalNodesDependency

	seeds elementid.Set
	moved elementid.Set
	total graph.Vector
}

var _ graph.Listener = (*Manager)(nil)

// New builds the maps from the current content of g and subscribes to its
// structural changes. dispatcher may be nil when drags are never committed.
func New(g *graph.Graph, dispatcher Dispatcher, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = ctxlog.FromContext(context.Background())
	}
	m := &Manager{
		g:          g,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
	m.Rebuild()
	g.AddListener(m)
	return m
}

// Graph returns the graph the manager follows.
func (m *Manager) Graph() *graph.Graph { return m.g }

// SetPresence installs the rendered-counterpart check. Nil disables it.
func (m *Manager) SetPresence(p Presence) { m.presence = p }

// Detach stops following the graph.
func (m *Manager) Detach() { m.g.RemoveListener(m) }

// Rebuild recomputes both maps from scratch.
func (m *Manager) Rebuild() {
	m.deps = make(map[elementid.ID]map[elementid.ID]*LinkedNodesDependency)
	m.portalDeps = make(map[elementid.ID]map[elementid.ID]*PortalNodesDependency)
	for _, e := range m.g.Edges() {
		m.AddPositionDependency(e)
	}
	for _, n := range m.g.Nodes() {
		if n.Kind().IsPortal() {
			m.AddPortalDependency(n)
		}
	}
	if m.opts.LogDependencies {
		m.logger.Debug("Position dependencies rebuilt.", "parents", len(m.deps), "portals", len(m.portalDeps))
	}
}

// AddPositionDependency records the dependency e implies, if the stencil
// accepts it. A pair linked by several edges is counted, not duplicated.
func (m *Manager) AddPositionDependency(e *graph.Edge) {
	parent, dependent, ok := m.g.Stencil().ClassifyEdgeDependency(e)
	if !ok {
		return
	}
	byDependent := m.deps[parent.GUID()]
	if byDependent == nil {
		byDependent = make(map[elementid.ID]*LinkedNodesDependency)
		m.deps[parent.GUID()] = byDependent
	}
	if d, ok := byDependent[dependent.GUID()]; ok {
		d.count++
		return
	}
	byDependent[dependent.GUID()] = &LinkedNodesDependency{dependent: dependent.GUID(), count: 1}
}

// Remove drops one edge's worth of dependency between a and b, whichever
// of them is the parent. It reports whether a dependency was found.
func (m *Manager) Remove(a, b elementid.ID) bool {
	return m.decrement(a, b) || m.decrement(b, a)
}

func (m *Manager) decrement(parent, dependent elementid.ID) bool {
	byDependent, ok := m.deps[parent]
	if !ok {
		return false
	}
	d, ok := byDependent[dependent]
	if !ok {
		return false
	}
	d.count--
	if d.count <= 0 {
		delete(byDependent, dependent)
		if len(byDependent) == 0 {
			delete(m.deps, parent)
		}
	}
	return true
}

// AddPortalDependency rebuilds the portal links of the whole group portal
// belongs to.
func (m *Manager) AddPortalDependency(portal *graph.Node) {
	group := m.g.Stencil().LinkedPortals(portal)
	for _, p := range group {
		delete(m.portalDeps, p.GUID())
	}
	if len(group) < 2 {
		return
	}
	for _, p := range group {
		peers := make(map[elementid.ID]*PortalNodesDependency, len(group)-1)
		for _, other := range group {
			if other != p {
				peers[other.GUID()] = &PortalNodesDependency{dependent: other.GUID()}
			}
		}
		m.portalDeps[p.GUID()] = peers
	}
}

// RemovePortalDependency unlinks node from its portal group and rebuilds
// what is left of the group.
func (m *Manager) RemovePortalDependency(n *graph.Node) {
	peers := m.portalDeps[n.GUID()]
	delete(m.portalDeps, n.GUID())
	var rest []elementid.ID
	for id := range peers {
		rest = append(rest, id)
	}
	for parent, byDependent := range m.portalDeps {
		delete(byDependent, n.GUID())
		if len(byDependent) == 0 {
			delete(m.portalDeps, parent)
		}
	}
	for _, id := range rest {
		if peer, ok := m.g.Node(id); ok {
			m.AddPortalDependency(peer)
			break
		}
	}
}

// GetDependencies returns the dependencies whose parent is id, edge-backed
// ones first, each group ordered by dependent GUID.
func (m *Manager) GetDependencies(id elementid.ID) []Dependency {
	var linked []*LinkedNodesDependency
	for _, d := range m.deps[id] {
		linked = append(linked, d)
	}
	slices.SortFunc(linked, func(a, b *LinkedNodesDependency) int { return compareIDs(a.dependent, b.dependent) })
	var portals []*PortalNodesDependency
	for _, d := range m.portalDeps[id] {
		portals = append(portals, d)
	}
	slices.SortFunc(portals, func(a, b *PortalNodesDependency) int { return compareIDs(a.dependent, b.dependent) })

	out := make([]Dependency, 0, len(linked)+len(portals))
	for _, d := range linked {
		out = append(out, d)
	}
	for _, d := range portals {
		out = append(out, d)
	}
	return out
}

func compareIDs(a, b elementid.ID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// forget drops every dependency involving id.
func (m *Manager) forget(id elementid.ID) {
	delete(m.deps, id)
	for parent, byDependent := range m.deps {
		delete(byDependent, id)
		if len(byDependent) == 0 {
			delete(m.deps, parent)
		}
	}
}

// --- graph.Listener ---

func (m *Manager) NodeAdded(n *graph.Node) {
	if n.Kind().IsPortal() {
		m.AddPortalDependency(n)
	}
}

func (m *Manager) NodeRemoved(n *graph.Node) {
	m.forget(n.GUID())
	if n.Kind().IsPortal() {
		m.RemovePortalDependency(n)
	}
}

func (m *Manager) EdgeAdded(e *graph.Edge) { m.AddPositionDependency(e) }

func (m *Manager) EdgeRemoved(e *graph.Edge) {
	if !m.Remove(e.From().NodeID, e.To().NodeID) && m.opts.LogDependencies {
		m.logger.Debug("Removed edge had no position dependency.", "edge", e.GUID().String())
	}
}

func (m *Manager) GraphRestored(*graph.Graph) { m.Rebuild() }
