// Package undo keeps serialized before/after snapshots of state components
// so a command can be undone and redone as a whole.
package undo

import (
	"errors"
	"fmt"
)

// Snapshotter is anything the undo host can capture and put back.
type Snapshotter interface {
	Name() string
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Event is delivered to OnUndoRedo callbacks after a replay.
type Event struct {
	Label   string
	Redo    bool
	Objects []Snapshotter
}

// Host is the undo system the dispatcher talks to.
type Host interface {
	// BeginGroup makes the following registrations with the same group
	// collapse into one entry. An empty name ends grouping.
	BeginGroup(name string)
	// RegisterSnapshot captures the current content of objects as the
	// "before" state of a new entry labeled label.
	RegisterSnapshot(objects []Snapshotter, label string) error
	// Undo replays the newest entry's before state. It reports false when
	// there is nothing to undo.
	Undo() (bool, error)
	// Redo replays the newest undone entry's after state.
	Redo() (bool, error)
	// OnUndoRedo registers a callback run after every replay.
	OnUndoRedo(fn func(Event))
	// Discard takes back the latest RegisterSnapshot when nothing was
	// undone or redone since, restoring the redo entries it cleared. It
	// reports false when there is nothing to take back.
	Discard() bool
}

type entry struct {
	label   string
	group   string
	objects []Snapshotter
	before  [][]byte
	after   [][]byte
}

// registration remembers what the latest RegisterSnapshot changed.
type registration struct {
	pushed  bool
	redo    []*entry
	dropped []*entry
}

// Stack is the in-process Host.
type Stack struct {
	maxDepth  int
	undo      []*entry
	redo      []*entry
	group     string
	listeners []func(Event)
	last      *registration
}

var _ Host = (*Stack)(nil)

// NewStack returns a stack keeping at most maxDepth entries. Zero or less
// means unbounded.
func NewStack(maxDepth int) *Stack {
	return &Stack{maxDepth: maxDepth}
}

func (s *Stack) BeginGroup(name string) { s.group = name }

func (s *Stack) OnUndoRedo(fn func(Event)) { s.listeners = append(s.listeners, fn) }

func capture(objects []Snapshotter) ([][]byte, error) {
	out := make([][]byte, len(objects))
	for i, o := range objects {
		data, err := o.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", o.Name(), err)
		}
		out[i] = data
	}
	return out, nil
}

func sameObjects(a, b []Snapshotter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Stack) RegisterSnapshot(objects []Snapshotter, label string) error {
	s.last = nil
	if s.group != "" && len(s.undo) > 0 {
		top := s.undo[len(s.undo)-1]
		if top.group == s.group && sameObjects(top.objects, objects) {
			// The group's first before state is the one to go back to.
			s.last = &registration{redo: s.redo}
			s.redo = nil
			return nil
		}
	}
	before, err := capture(objects)
	if err != nil {
		return err
	}
	reg := &registration{pushed: true, redo: s.redo}
	s.redo = nil
	s.undo = append(s.undo, &entry{
		label:   label,
		group:   s.group,
		objects: append([]Snapshotter(nil), objects...),
		before:  before,
	})
	if s.maxDepth > 0 && len(s.undo) > s.maxDepth {
		cut := len(s.undo) - s.maxDepth
		reg.dropped = append([]*entry(nil), s.undo[:cut]...)
		s.undo = append([]*entry(nil), s.undo[cut:]...)
	}
	s.last = reg
	return nil
}

func (s *Stack) Discard() bool {
	reg := s.last
	if reg == nil {
		return false
	}
	s.last = nil
	if reg.pushed && len(s.undo) > 0 {
		s.undo = append(reg.dropped, s.undo[:len(s.undo)-1]...)
	}
	s.redo = reg.redo
	return true
}

func restore(objects []Snapshotter, states [][]byte) error {
	var errs []error
	for i, o := range objects {
		if err := o.Restore(states[i]); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", o.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Stack) Undo() (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	e := s.undo[len(s.undo)-1]
	after, err := capture(e.objects)
	if err != nil {
		return false, err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.last = nil
	e.after = after
	s.redo = append(s.redo, e)
	s.group = ""

	err = restore(e.objects, e.before)
	s.notify(Event{Label: e.label, Objects: e.objects})
	return true, err
}

func (s *Stack) Redo() (bool, error) {
	if len(s.redo) == 0 {
		return false, nil
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.last = nil
	s.undo = append(s.undo, e)
	s.group = ""

	err := restore(e.objects, e.after)
	s.notify(Event{Label: e.label, Redo: true, Objects: e.objects})
	return true, err
}

func (s *Stack) notify(ev Event) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// CanUndo reports whether Undo would do anything.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Labels returns the undo labels, oldest first.
func (s *Stack) Labels() []string {
	out := make([]string, 0, len(s.undo))
	for _, e := range s.undo {
		out = append(out, e.label)
	}
	return out
}

// Clear forgets every entry.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
	s.group = ""
	s.last = nil
}
