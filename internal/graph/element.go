package graph

import "github.com/specialistvlad/graphtools/internal/elementid"

// Element is anything identifiable owned by a Graph.
type Element interface {
	GUID() elementid.ID
	Graph() *Graph
}

// ElementBase carries the identity and owner back-reference shared by every
// element.
type ElementBase struct {
	guid  elementid.ID
	graph *Graph
}

// GUID returns the element's identifier.
func (e *ElementBase) GUID() elementid.ID {
	return e.guid
}

// Graph returns the owning graph, or nil for a detached element.
func (e *ElementBase) Graph() *Graph {
	return e.graph
}

// AssetKey returns the key of the asset the element belongs to.
func (e *ElementBase) AssetKey() string {
	if e.graph == nil {
		return ""
	}
	return e.graph.assetKey
}

// AssignNewGUID gives the element a fresh identifier. It is only valid on an
// element that has not been inserted into a graph yet, i.e. a clone.
func (e *ElementBase) AssignNewGUID() {
	e.guid = elementid.New()
}

func (e *ElementBase) markChanged() {
	if e.graph != nil {
		e.graph.changes.MarkChanged(e.guid)
	}
}
