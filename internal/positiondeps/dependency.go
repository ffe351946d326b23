// Package positiondeps tracks which nodes follow which when nodes move or
// get aligned.
//
// # Purpose
//
// Two nodes become position dependent when an edge links them and the
// graph's stencil classifies the edge as parent and dependent. The manager
// keeps one LinkedNodesDependency per parent and dependent pair, counting
// the edges that back it, so a pair linked twice stays linked until both
// edges are gone. Portals sharing a declaration follow each other through a
// separate map that is rebuilt for the whole group on every change.
//
// Moves are walks over those maps from a set of seed nodes. Every walk
// keeps a visited set, so cyclic wiring (A feeds B feeds A) terminates and
// a node reached through two paths moves once.
package positiondeps

import (
	"github.com/specialistvlad/graphtools/internal/elementid"
)

// Dependency is one edge of the dependency graph, seen from the parent.
type Dependency interface {
	DependentID() elementid.ID
}

// LinkedNodesDependency is backed by one or more graph edges.
type LinkedNodesDependency struct {
	dependent elementid.ID
	count     int
}

func (d *LinkedNodesDependency) DependentID() elementid.ID { return d.dependent }

// Count returns the number of edges backing the dependency.
func (d *LinkedNodesDependency) Count() int { return d.count }

// PortalNodesDependency links two portals of the same declaration.
type PortalNodesDependency struct {
	dependent elementid.ID
}

func (d *PortalNodesDependency) DependentID() elementid.ID { return d.dependent }
