package graph

import "github.com/specialistvlad/graphtools/internal/elementid"

// ChangeList records what the command in flight did to a graph. It is reset
// at the start of every dispatch and only meaningful until the next one.
type ChangeList struct {
	added   elementid.Set
	changed elementid.Set
	deleted elementid.Set

	deletedEdges   []*Edge
	deletedEdgeIDs elementid.Set
	toAutoAlign    elementid.Set

	deletedCount      int
	blackboardChanged bool
	requiresRebuild   bool

	// mutations counts every recording call and survives Reset.
	mutations uint64
}

// NewChangeList returns an empty change list.
func NewChangeList() *ChangeList {
	return &ChangeList{}
}

// Reset empties the list.
func (c *ChangeList) Reset() {
	*c = ChangeList{mutations: c.mutations}
}

// Mutations returns a counter bumped by every recording call. Comparing two
// readings tells whether anything was recorded in between.
func (c *ChangeList) Mutations() uint64 { return c.mutations }

// MarkAdded records a new element.
func (c *ChangeList) MarkAdded(id elementid.ID) {
	c.mutations++
	c.added.Add(id)
}

// MarkChanged records a modified element. Elements added by the same
// command are already covered by MarkAdded.
func (c *ChangeList) MarkChanged(id elementid.ID) {
	c.mutations++
	if c.added.Contains(id) || c.deleted.Contains(id) {
		return
	}
	c.changed.Add(id)
}

// MarkDeleted records a deleted element.
func (c *ChangeList) MarkDeleted(id elementid.ID) {
	c.mutations++
	c.added.Remove(id)
	c.changed.Remove(id)
	if c.deleted.Add(id) {
		c.deletedCount++
	}
}

// AddDeletedEdge records a deleted edge. The edge is kept so observers can
// still read its endpoints.
func (c *ChangeList) AddDeletedEdge(e *Edge) {
	if c.deletedEdgeIDs.Add(e.GUID()) {
		c.deletedEdges = append(c.deletedEdges, e)
	}
	c.MarkDeleted(e.GUID())
}

// MarkForAutoAlign flags an element for the auto-align observer.
func (c *ChangeList) MarkForAutoAlign(id elementid.ID) {
	c.mutations++
	c.toAutoAlign.Add(id)
}

// SetBlackboardChanged flags a change to the variable declarations.
func (c *ChangeList) SetBlackboardChanged() {
	c.mutations++
	c.blackboardChanged = true
}

// SetRequiresRebuild asks consumers to rebuild everything.
func (c *ChangeList) SetRequiresRebuild() {
	c.mutations++
	c.requiresRebuild = true
}

func (c *ChangeList) Added() []elementid.ID { return c.added.IDs() }
func (c *ChangeList) Changed() []elementid.ID { return c.changed.IDs() }
func (c *ChangeList) Deleted() []elementid.ID { return c.deleted.IDs() }
func (c *ChangeList) ToAutoAlign() []elementid.ID { return c.toAutoAlign.IDs() }
func (c *ChangeList) DeletedEdges() []*Edge { return append([]*Edge(nil), c.deletedEdges...) }
func (c *ChangeList) DeletedCount() int { return c.deletedCount }
func (c *ChangeList) BlackboardChanged() bool { return c.blackboardChanged }
func (c *ChangeList) RequiresRebuild() bool { return c.requiresRebuild }
func (c *ChangeList) IsAdded(id elementid.ID) bool { return c.added.Contains(id) }
func (c *ChangeList) IsDeleted(id elementid.ID) bool { return c.deleted.Contains(id) }

// Touched returns added and changed ids, in that order.
func (c *ChangeList) Touched() []elementid.ID {
	return append(c.added.IDs(), c.changed.IDs()...)
}

// IsEmpty reports whether nothing was recorded.
func (c *ChangeList) IsEmpty() bool {
	return c.added.Len() == 0 &&
		c.changed.Len() == 0 &&
		c.deleted.Len() == 0 &&
		c.toAutoAlign.Len() == 0 &&
		!c.blackboardChanged &&
		!c.requiresRebuild
}
