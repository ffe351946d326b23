// Package observer runs state observers to a fixed point after each frame
// in which a command changed state.
//
// # Purpose
//
// An Observer declares the components it reads and the components it
// writes. The Scheduler remembers, per observer, the last version of each
// observed component the observer has seen. An observer runs only when one
// of those versions moved. Because observers may write components other
// observers read, the scheduler makes repeated passes until a pass runs
// nobody. A chain that keeps retriggering itself is cut off after
// MaxPasses and reported as ErrObserverCycle.
package observer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/state"
)

var (
	// ErrDuplicateObserver is returned when an observer name is registered twice.
	ErrDuplicateObserver = errors.New("observer already registered")
	// ErrObserverCycle is returned when observers keep retriggering each
	// other past the pass limit.
	ErrObserverCycle = errors.New("observers did not settle")
)

// DefaultMaxPasses bounds Run when the scheduler was built with a
// non-positive limit.
const DefaultMaxPasses = 16

// Observer reacts to component changes.
type Observer interface {
	Name() string
	// Observed lists the component names the observer reads.
	Observed() []string
	// Updated lists the component names the observer may write.
	Updated() []string
	Observe(ctx context.Context, st *state.Container, obs Observation) error
}

// Observation tells an observer what changed since its previous run.
type Observation struct {
	st   *state.Container
	seen map[string]uint64
}

// LastSeen returns the version of component name the observer saw last,
// zero if never.
func (o Observation) LastSeen(name string) uint64 { return o.seen[name] }

// UpdateType classifies the change of component name since the last run.
func (o Observation) UpdateType(name string) state.UpdateType {
	c, ok := o.st.Component(name)
	if !ok {
		return state.UpdateNone
	}
	return c.UpdateType(o.seen[name])
}

// ChangedIDs returns the element ids recorded by partial updates of
// component name since the last run.
func (o Observation) ChangedIDs(name string) []elementid.ID {
	c, ok := o.st.Component(name)
	if !ok {
		return nil
	}
	return c.ChangedSince(o.seen[name])
}

type registration struct {
	obs  Observer
	seen map[string]uint64
}

// Scheduler owns the registered observers.
type Scheduler struct {
	maxPasses int
	regs      []*registration
}

// NewScheduler returns an empty scheduler. maxPasses <= 0 selects
// DefaultMaxPasses.
func NewScheduler(maxPasses int) *Scheduler {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Scheduler{maxPasses: maxPasses}
}

// Register adds o. Observers run in registration order within a pass.
func (s *Scheduler) Register(o Observer) error {
	for _, r := range s.regs {
		if r.obs.Name() == o.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateObserver, o.Name())
		}
	}
	s.regs = append(s.regs, &registration{obs: o, seen: make(map[string]uint64)})
	return nil
}

// Unregister removes the observer called name and reports whether it was
// registered.
func (s *Scheduler) Unregister(name string) bool {
	for i, r := range s.regs {
		if r.obs.Name() == name {
			s.regs = append(s.regs[:i], s.regs[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the registered observer names in run order.
func (s *Scheduler) Names() []string {
	out := make([]string, 0, len(s.regs))
	for _, r := range s.regs {
		out = append(out, r.obs.Name())
	}
	return out
}

func (r *registration) stale(st *state.Container) bool {
	for _, name := range r.obs.Observed() {
		c, ok := st.Component(name)
		if !ok {
			continue
		}
		if c.Version() != r.seen[name] {
			return true
		}
	}
	return false
}

func (r *registration) record(st *state.Container) {
	for _, name := range r.obs.Observed() {
		if c, ok := st.Component(name); ok {
			r.seen[name] = c.Version()
		}
	}
}

// Run executes observers until none of them has unseen input. Observer
// errors are logged and returned joined; they do not stop the other
// observers.
func (s *Scheduler) Run(ctx context.Context, st *state.Container) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for pass := 0; pass < s.maxPasses; pass++ {
		ran := 0
		for _, r := range s.regs {
			if !r.stale(st) {
				continue
			}
			seen := make(map[string]uint64, len(r.seen))
			for k, v := range r.seen {
				seen[k] = v
			}
			name := r.obs.Name()
			logger.Debug("Running observer.", "observer", name, "pass", pass)
			err := r.obs.Observe(ctx, st, Observation{st: st, seen: seen})
			r.record(st)
			ran++
			if err != nil {
				logger.Error("Observer failed.", "observer", name, "error", err)
				errs = append(errs, fmt.Errorf("observer %s: %w", name, err))
			}
		}
		if ran == 0 {
			return errors.Join(errs...)
		}
	}

	logger.Error("Observers did not reach a fixed point.", "max_passes", s.maxPasses)
	errs = append(errs, fmt.Errorf("%w after %d passes", ErrObserverCycle, s.maxPasses))
	return errors.Join(errs...)
}

// OldestSeen returns the lowest version of component name any observer
// still has to catch up from. Changesets up to it can be purged. When no
// observer reads the component every changeset can go.
func (s *Scheduler) OldestSeen(name string) uint64 {
	oldest := uint64(math.MaxUint64)
	for _, r := range s.regs {
		for _, o := range r.obs.Observed() {
			if o == name && r.seen[name] < oldest {
				oldest = r.seen[name]
			}
		}
	}
	return oldest
}
