package graph

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
)

// CheckIntegrity verifies the structural invariants of the graph and
// returns every violation joined into one error. It is a verification tool
// for tests and the CLI; no mutation path calls it.
func (g *Graph) CheckIntegrity() error {
	var errs []error

	for i, e := range g.edges {
		if g.ResolvePort(e.from) == nil {
			errs = append(errs, fmt.Errorf("edge %d (%s) has a dangling output port %s", i, e.guid, e.from))
		}
		if g.ResolvePort(e.to) == nil {
			errs = append(errs, fmt.Errorf("edge %d (%s) has a dangling input port %s", i, e.guid, e.to))
		}
	}

	seen := make(map[elementid.ID]string)
	check := func(kind string, id elementid.ID) {
		if id.IsNil() {
			errs = append(errs, fmt.Errorf("%s has a nil guid", kind))
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("duplicate guid %s shared by %s and %s", id, prev, kind))
			return
		}
		seen[id] = kind
	}
	for _, n := range g.nodes {
		check("node", n.guid)
	}
	for _, e := range g.edges {
		check("edge", e.guid)
	}
	for _, s := range g.stickyNotes {
		check("sticky note", s.guid)
	}
	for _, p := range g.placemats {
		check("placemat", p.guid)
	}
	for _, v := range g.variables {
		check("variable declaration", v.guid)
	}

	for _, n := range g.nodes {
		if n.destroyed {
			continue
		}
		for key, p := range n.portsByID {
			if p.id != key {
				errs = append(errs, fmt.Errorf("node %s: port stored under %q has id %q", n.guid, key, p.id))
			}
			if p.node != n {
				errs = append(errs, fmt.Errorf("node %s: port %q belongs to another node", n.guid, key))
			}
		}
		if len(n.portsByID) != len(n.inputs)+len(n.outputs) {
			errs = append(errs, fmt.Errorf("node %s: port index holds %d ports, lists hold %d",
				n.guid, len(n.portsByID), len(n.inputs)+len(n.outputs)))
		}
	}

	return errors.Join(errs...)
}
