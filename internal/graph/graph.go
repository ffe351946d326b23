package graph

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	// ErrForeignElement is returned when an element of another graph is
	// passed to an operation.
	ErrForeignElement = errors.New("element does not belong to this graph")
	// ErrPortDirection is returned when an edge would not go from an output
	// to an input.
	ErrPortDirection = errors.New("edges must connect an output port to an input port")
	// ErrDestroyedNode is returned when an operation targets a deleted node.
	ErrDestroyedNode = errors.New("node is destroyed")
)

// Graph owns every element of one graph asset.
type Graph struct {
	assetKey string
	stencil  Stencil

	nodes       []*Node
	edges       []*Edge
	stickyNotes []*StickyNote
	placemats   []*Placemat
	variables   []*VariableDeclaration

	index     map[elementid.ID]Element
	changes   *ChangeList
	listeners []Listener
}

// New creates an empty graph for the given asset. A nil stencil is replaced
// by BaseStencil.
func New(assetKey string, stencil Stencil) *Graph {
	if stencil == nil {
		stencil = BaseStencil{}
	}
	return &Graph{
		assetKey: assetKey,
		stencil:  stencil,
		index:    make(map[elementid.ID]Element),
		changes:  NewChangeList(),
	}
}

// AssetKey returns the key of the asset the graph is stored in.
func (g *Graph) AssetKey() string { return g.assetKey }

// Stencil returns the graph's strategy object.
func (g *Graph) Stencil() Stencil { return g.stencil }

// LastChanges returns the change list of the command in flight, or of the
// most recent one.
func (g *Graph) LastChanges() *ChangeList { return g.changes }

// ResetChangeList empties the change list. The dispatcher calls it before
// every command.
func (g *Graph) ResetChangeList() { g.changes.Reset() }

// AddListener subscribes l to structural changes.
func (g *Graph) AddListener(l Listener) {
	g.listeners = append(g.listeners, l)
}

// RemoveListener unsubscribes l.
func (g *Graph) RemoveListener(l Listener) {
	for i, existing := range g.listeners {
		if existing == l {
			g.listeners = append(g.listeners[:i], g.listeners[i+1:]...)
			return
		}
	}
}

// --- Queries ---

// Nodes returns the live nodes in creation order. Destroyed nodes are
// filtered out.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !n.destroyed {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns the edges in graph order.
func (g *Graph) Edges() []*Edge { return append([]*Edge(nil), g.edges...) }

// StickyNotes returns the sticky notes.
func (g *Graph) StickyNotes() []*StickyNote { return append([]*StickyNote(nil), g.stickyNotes...) }

// Placemats returns the placemats.
func (g *Graph) Placemats() []*Placemat { return append([]*Placemat(nil), g.placemats...) }

// VariableDeclarations returns the declarations in blackboard order.
func (g *Graph) VariableDeclarations() []*VariableDeclaration {
	return append([]*VariableDeclaration(nil), g.variables...)
}

// Element looks any element up by GUID, destroyed nodes included.
func (g *Graph) Element(id elementid.ID) (Element, bool) {
	e, ok := g.index[id]
	return e, ok
}

// Node returns the live node with the given GUID.
func (g *Graph) Node(id elementid.ID) (*Node, bool) {
	n, ok := g.index[id].(*Node)
	if !ok || n.destroyed {
		return nil, false
	}
	return n, true
}

// Edge returns the edge with the given GUID.
func (g *Graph) Edge(id elementid.ID) (*Edge, bool) {
	e, ok := g.index[id].(*Edge)
	return e, ok
}

// VariableDeclaration returns the declaration with the given GUID.
func (g *Graph) VariableDeclaration(id elementid.ID) (*VariableDeclaration, bool) {
	v, ok := g.index[id].(*VariableDeclaration)
	return v, ok
}

// VariableDeclarationByName returns the declaration with the given name.
func (g *Graph) VariableDeclarationByName(name string) (*VariableDeclaration, bool) {
	for _, v := range g.variables {
		if v.name == name {
			return v, true
		}
	}
	return nil, false
}

// ResolvePort returns the port a ref designates, or nil when the node is
// gone or no longer has the port.
func (g *Graph) ResolvePort(ref PortRef) *Port {
	n, ok := g.Node(ref.NodeID)
	if !ok {
		return nil
	}
	p, ok := n.portsByID[ref.PortID]
	if !ok {
		return nil
	}
	return p
}

// EdgesForPort returns the edges attached to the port, in graph order.
func (g *Graph) EdgesForPort(ref PortRef) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.from == ref || e.to == ref {
			out = append(out, e)
		}
	}
	return out
}

// EdgesForNode returns the edges touching the node.
func (g *Graph) EdgesForNode(id elementid.ID) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// NodesForDeclaration returns the live nodes referencing the declaration.
func (g *Graph) NodesForDeclaration(id elementid.ID) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if !n.destroyed && n.declarationID == id {
			out = append(out, n)
		}
	}
	return out
}

// --- Nodes ---

// CreateNode adds a node built from spec and defines its ports.
func (g *Graph) CreateNode(spec NodeSpec) (*Node, error) {
	n := &Node{
		ElementBase:   ElementBase{guid: elementid.New(), graph: g},
		title:         spec.Title,
		kind:          spec.Kind,
		position:      spec.Position,
		size:          spec.Size,
		declarationID: spec.DeclarationID,
		definition:    spec.Definition,
	}
	if err := n.DefineNode(); err != nil {
		return nil, fmt.Errorf("failed to define node: %w", err)
	}
	g.insertNode(n)
	return n, nil
}

func (g *Graph) insertNode(n *Node) {
	g.nodes = append(g.nodes, n)
	g.index[n.guid] = n
	g.changes.MarkAdded(n.guid)
	for _, l := range g.listeners {
		l.NodeAdded(n)
	}
}

// DuplicateNode clones n, embedded constants included, under a fresh GUID
// and offsets the copy.
func (g *Graph) DuplicateNode(n *Node, offset Vector) (*Node, error) {
	if n.graph != g {
		return nil, ErrForeignElement
	}
	spec := n.spec()
	clone := &Node{
		ElementBase:   ElementBase{guid: n.guid, graph: g},
		title:         spec.Title,
		kind:          spec.Kind,
		position:      spec.Position.Add(offset),
		size:          spec.Size,
		state:         n.state,
		declarationID: spec.DeclarationID,
		definition:    spec.Definition,
		constants:     make(map[string]*Constant, len(n.constants)),
	}
	for id, c := range n.constants {
		clone.constants[id] = NewConstant(c.Value())
	}
	clone.AssignNewGUID()
	if err := clone.DefineNode(); err != nil {
		return nil, fmt.Errorf("failed to define duplicate: %w", err)
	}
	g.insertNode(clone)
	return clone, nil
}

// DeleteNodes soft-deletes the nodes. mode decides whether their edges go
// with them.
func (g *Graph) DeleteNodes(nodes []*Node, mode DeleteConnections) error {
	for _, n := range nodes {
		if n.graph != g {
			return ErrForeignElement
		}
	}
	for _, n := range nodes {
		if n.destroyed {
			continue
		}
		if mode == DeleteConnectionsTrue {
			if err := g.DeleteEdges(g.EdgesForNode(n.guid)); err != nil {
				return err
			}
		}
		n.destroyed = true
		g.changes.MarkDeleted(n.guid)
		for _, l := range g.listeners {
			l.NodeRemoved(n)
		}
	}
	return nil
}

// PurgeDestroyed physically removes soft-deleted nodes and returns how many
// were dropped.
func (g *Graph) PurgeDestroyed() int {
	kept := g.nodes[:0]
	purged := 0
	for _, n := range g.nodes {
		if n.destroyed {
			delete(g.index, n.guid)
			purged++
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(g.nodes); i++ {
		g.nodes[i] = nil
	}
	g.nodes = kept
	return purged
}

// SetNodePosition moves a node. It exists so callers holding only a GUID
// do not need a lookup first.
func (g *Graph) SetNodePosition(id elementid.ID, pos Vector) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("node %s not found", id)
	}
	n.SetPosition(pos)
	return nil
}

// SetPortConstant stores the constant used when an input port is
// unconnected. The value is converted to the port type.
func (g *Graph) SetPortConstant(ref PortRef, v cty.Value) error {
	n, ok := g.Node(ref.NodeID)
	if !ok {
		return fmt.Errorf("node %s not found", ref.NodeID)
	}
	return n.setConstant(ref.PortID, v)
}

// --- Edges ---

// CreateEdge connects from (an output) to to (an input).
func (g *Graph) CreateEdge(to, from *Port) (*Edge, error) {
	if to == nil || from == nil {
		return nil, errors.New("both ports are required")
	}
	if from.node.graph != g || to.node.graph != g {
		return nil, ErrForeignElement
	}
	if from.node.destroyed || to.node.destroyed {
		return nil, ErrDestroyedNode
	}
	if from.direction != DirectionOutput || to.direction != DirectionInput {
		return nil, ErrPortDirection
	}
	e := &Edge{
		ElementBase: ElementBase{guid: elementid.New(), graph: g},
		from:        from.Ref(),
		to:          to.Ref(),
	}
	g.edges = append(g.edges, e)
	g.index[e.guid] = e
	g.changes.MarkAdded(e.guid)
	g.changes.MarkChanged(from.node.guid)
	g.changes.MarkChanged(to.node.guid)
	for _, l := range g.listeners {
		l.EdgeAdded(e)
	}
	return e, nil
}

// DeleteEdges removes the edges from the graph.
func (g *Graph) DeleteEdges(edges []*Edge) error {
	for _, e := range edges {
		if e.graph != g {
			return ErrForeignElement
		}
	}
	for _, e := range edges {
		if _, ok := g.index[e.guid]; !ok {
			continue
		}
		g.edges = removeElement(g.edges, e)
		delete(g.index, e.guid)
		g.changes.AddDeletedEdge(e)
		if n, ok := g.Node(e.from.NodeID); ok {
			g.changes.MarkChanged(n.guid)
		}
		if n, ok := g.Node(e.to.NodeID); ok {
			g.changes.MarkChanged(n.guid)
		}
		for _, l := range g.listeners {
			l.EdgeRemoved(e)
		}
	}
	return nil
}

// ReorderEdge moves e among the edges sharing its output port. The order of
// those edges is meaningful, e.g. for execution order.
func (g *Graph) ReorderEdge(e *Edge, how ReorderType) error {
	if e.graph != g {
		return ErrForeignElement
	}
	var slots []int
	var siblings []*Edge
	pos := -1
	for i, other := range g.edges {
		if other.from != e.from {
			continue
		}
		if other == e {
			pos = len(siblings)
		}
		slots = append(slots, i)
		siblings = append(siblings, other)
	}
	if pos < 0 {
		return fmt.Errorf("edge %s not found", e.guid)
	}

	target := pos
	switch how {
	case ReorderFirst:
		target = 0
	case ReorderUp:
		target = max(pos-1, 0)
	case ReorderDown:
		target = min(pos+1, len(siblings)-1)
	case ReorderLast:
		target = len(siblings) - 1
	default:
		return fmt.Errorf("unknown reorder type %d", how)
	}
	if target == pos {
		return nil
	}

	siblings = append(siblings[:pos], siblings[pos+1:]...)
	siblings = append(siblings[:target], append([]*Edge{e}, siblings[target:]...)...)
	for i, slot := range slots {
		g.edges[slot] = siblings[i]
		g.changes.MarkChanged(siblings[i].guid)
	}
	return nil
}

// --- Sticky notes and placemats ---

// CreateStickyNote adds a sticky note.
func (g *Graph) CreateStickyNote(title, contents string, rect Rect) *StickyNote {
	s := &StickyNote{
		ElementBase: ElementBase{guid: elementid.New(), graph: g},
		title:       title,
		contents:    contents,
		rect:        rect,
	}
	g.stickyNotes = append(g.stickyNotes, s)
	g.index[s.guid] = s
	g.changes.MarkAdded(s.guid)
	return s
}

// DeleteStickyNotes removes sticky notes.
func (g *Graph) DeleteStickyNotes(notes []*StickyNote) {
	for _, s := range notes {
		if _, ok := g.index[s.guid]; !ok || s.graph != g {
			continue
		}
		g.stickyNotes = removeElement(g.stickyNotes, s)
		delete(g.index, s.guid)
		g.changes.MarkDeleted(s.guid)
	}
}

// CreatePlacemat adds a placemat.
func (g *Graph) CreatePlacemat(title string, rect Rect, color string) *Placemat {
	p := &Placemat{
		ElementBase: ElementBase{guid: elementid.New(), graph: g},
		title:       title,
		rect:        rect,
		color:       color,
	}
	g.placemats = append(g.placemats, p)
	g.index[p.guid] = p
	g.changes.MarkAdded(p.guid)
	return p
}

// DeletePlacemats removes placemats.
func (g *Graph) DeletePlacemats(placemats []*Placemat) {
	for _, p := range placemats {
		if _, ok := g.index[p.guid]; !ok || p.graph != g {
			continue
		}
		g.placemats = removeElement(g.placemats, p)
		delete(g.index, p.guid)
		g.changes.MarkDeleted(p.guid)
	}
}

// --- Variable declarations ---

// CreateVariableDeclaration adds a declaration. A name already in use gets a
// numeric suffix. A nil defaultValue uses the stencil's default for t.
func (g *Graph) CreateVariableDeclaration(name string, t cty.Type, modifiers ModifierFlags, defaultValue *cty.Value, scopeID elementid.ID) (*VariableDeclaration, error) {
	t = normalizeType(t)
	var initial cty.Value
	if defaultValue != nil {
		converted, err := convert.Convert(*defaultValue, t)
		if err != nil {
			return nil, fmt.Errorf("default of variable %q: %w", name, err)
		}
		initial = converted
	} else {
		initial = g.stencil.CreateConstant(t)
		if initial == cty.NilVal {
			initial = cty.NullVal(t)
		}
	}
	v := &VariableDeclaration{
		ElementBase:  ElementBase{guid: elementid.New(), graph: g},
		name:         g.uniqueVariableName(name),
		dataType:     t,
		modifiers:    modifiers,
		defaultValue: NewConstant(initial),
		scopeID:      scopeID,
	}
	g.variables = append(g.variables, v)
	g.index[v.guid] = v
	g.changes.MarkAdded(v.guid)
	g.changes.SetBlackboardChanged()
	return v, nil
}

func (g *Graph) uniqueVariableName(name string) string {
	if name == "" {
		name = "variable"
	}
	if _, taken := g.VariableDeclarationByName(name); !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s %d", name, i)
		if _, taken := g.VariableDeclarationByName(candidate); !taken {
			return candidate
		}
	}
}

// ReorderVariableDeclaration moves decl right after insertAfter, or to the
// front when insertAfter is nil.
func (g *Graph) ReorderVariableDeclaration(decl, insertAfter *VariableDeclaration) error {
	if decl.graph != g || (insertAfter != nil && insertAfter.graph != g) {
		return ErrForeignElement
	}
	if decl == insertAfter {
		return nil
	}
	rest := removeElement(g.variables, decl)
	at := 0
	if insertAfter != nil {
		at = -1
		for i, v := range rest {
			if v == insertAfter {
				at = i + 1
				break
			}
		}
		if at < 0 {
			return fmt.Errorf("declaration %s not found", insertAfter.guid)
		}
	}
	reordered := make([]*VariableDeclaration, 0, len(g.variables))
	reordered = append(reordered, rest[:at]...)
	reordered = append(reordered, decl)
	reordered = append(reordered, rest[at:]...)
	g.variables = reordered
	g.changes.MarkChanged(decl.guid)
	g.changes.SetBlackboardChanged()
	return nil
}

// DeleteVariableDeclarations removes declarations. With deleteUsages the
// nodes referencing them are deleted together with their edges; without it
// those nodes are orphaned (their declaration reference is cleared).
func (g *Graph) DeleteVariableDeclarations(decls []*VariableDeclaration, deleteUsages bool) error {
	for _, v := range decls {
		if v.graph != g {
			return ErrForeignElement
		}
	}
	for _, v := range decls {
		if _, ok := g.index[v.guid]; !ok {
			continue
		}
		usages := g.NodesForDeclaration(v.guid)
		if deleteUsages {
			if err := g.DeleteNodes(usages, DeleteConnectionsTrue); err != nil {
				return err
			}
		} else {
			for _, n := range usages {
				n.declarationID = elementid.Nil
				n.markChanged()
			}
		}
		g.variables = removeElement(g.variables, v)
		delete(g.index, v.guid)
		g.changes.MarkDeleted(v.guid)
		g.changes.SetBlackboardChanged()
	}
	return nil
}

// --- Undo support ---

// UpdatePortsChanged walks the graph from the stencil's entry points
// outward, then every node not reached, calling OnPortsChanged on each node
// once and resetting every edge's port cache.
func (g *Graph) UpdatePortsChanged() error {
	visited := make(map[elementid.ID]struct{}, len(g.nodes))
	var errs []error

	var visit func(n *Node)
	visit = func(n *Node) {
		if _, seen := visited[n.guid]; seen || n.destroyed {
			return
		}
		visited[n.guid] = struct{}{}
		if err := n.OnPortsChanged(); err != nil {
			errs = append(errs, err)
			return
		}
		for _, e := range g.EdgesForNode(n.guid) {
			next := e.to.NodeID
			if next == n.guid {
				next = e.from.NodeID
			}
			if other, ok := g.Node(next); ok {
				visit(other)
			}
		}
	}

	for _, entry := range g.stencil.EntryPoints(g) {
		visit(entry)
	}
	for _, n := range g.nodes {
		visit(n)
	}
	for _, e := range g.edges {
		e.ResetPortCache()
	}
	return errors.Join(errs...)
}

func removeElement[T comparable](list []T, item T) []T {
	for i, existing := range list {
		if existing == item {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
