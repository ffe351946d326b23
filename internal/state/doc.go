// Package state holds the versioned state components of an editor view.
//
// Every component is mutated only through an updater obtained from its
// Update method. Closing the updater bumps the component's version exactly
// once when anything was mutated, however many mutations happened:
//
//	u := container.Selection().Update()
//	defer u.Close()
//	u.Select(a, b)
//	u.Deselect(c)
//
// Observers compare the version they last saw with the current one and ask
// UpdateType whether the changesets kept by the component cover the gap
// (Partial) or whether they must start over (Complete).
package state
