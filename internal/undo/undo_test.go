package undo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	name  string
	value string
	fail  bool
}

func (c *counter) Name() string { return c.name }

func (c *counter) Snapshot() ([]byte, error) { return []byte(c.value), nil }

func (c *counter) Restore(data []byte) error {
	if c.fail {
		return errors.New("restore refused")
	}
	c.value = string(data)
	return nil
}

func TestStack_UndoRedoRoundTrip(t *testing.T) {
	obj := &counter{name: "obj", value: "0"}
	s := NewStack(0)
	var events []Event
	s.OnUndoRedo(func(ev Event) { events = append(events, ev) })

	for _, next := range []string{"1", "2", "3"} {
		require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "set "+next))
		obj.value = next
	}
	assert.Equal(t, []string{"set 1", "set 2", "set 3"}, s.Labels())

	for i := 0; i < 3; i++ {
		ok, err := s.Undo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, "0", obj.value)
	ok, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		ok, err := s.Redo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, "3", obj.value)
	assert.False(t, s.CanRedo())

	require.Len(t, events, 6)
	assert.Equal(t, "set 3", events[0].Label)
	assert.False(t, events[0].Redo)
	assert.True(t, events[5].Redo)
}

func TestStack_NewEntryClearsRedo(t *testing.T) {
	obj := &counter{name: "obj", value: "a"}
	s := NewStack(0)
	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "to b"))
	obj.value = "b"
	_, err := s.Undo()
	require.NoError(t, err)
	require.True(t, s.CanRedo())

	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "to c"))
	assert.False(t, s.CanRedo())
}

func TestStack_MaxDepth(t *testing.T) {
	obj := &counter{name: "obj", value: "0"}
	s := NewStack(2)
	for _, label := range []string{"a", "b", "c"} {
		require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, label))
	}
	assert.Equal(t, []string{"b", "c"}, s.Labels())
}

func TestStack_GroupCollapsesEntries(t *testing.T) {
	obj := &counter{name: "obj", value: "start"}
	s := NewStack(0)

	s.BeginGroup("drag")
	for _, v := range []string{"x1", "x2", "x3"} {
		require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "Move"))
		obj.value = v
	}
	s.BeginGroup("")

	assert.Equal(t, []string{"Move"}, s.Labels())
	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, "start", obj.value)
}

func TestStack_RestoreErrorIsReported(t *testing.T) {
	obj := &counter{name: "obj", value: "0"}
	s := NewStack(0)
	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "x"))
	obj.fail = true

	ok, err := s.Undo()
	assert.True(t, ok)
	assert.ErrorContains(t, err, "failed to restore obj")
}

func TestStack_DiscardRestoresRedo(t *testing.T) {
	obj := &counter{name: "obj", value: "a"}
	s := NewStack(0)
	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "to b"))
	obj.value = "b"
	_, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, s.Discard(), "an undo ends the registration")

	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "to c"))
	require.False(t, s.CanRedo())
	assert.True(t, s.Discard())

	assert.Empty(t, s.Labels())
	assert.True(t, s.CanRedo())
	assert.False(t, s.Discard())

	ok, err := s.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", obj.value)
}

func TestStack_DiscardBringsBackTrimmedEntry(t *testing.T) {
	obj := &counter{name: "obj", value: "0"}
	s := NewStack(2)
	for _, label := range []string{"a", "b", "c"} {
		require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, label))
	}
	require.True(t, s.Discard())
	assert.Equal(t, []string{"a", "b"}, s.Labels())
}

func TestStack_DiscardInsideGroupKeepsEntry(t *testing.T) {
	obj := &counter{name: "obj", value: "start"}
	s := NewStack(0)
	s.BeginGroup("drag")
	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "Move"))
	obj.value = "x1"
	require.NoError(t, s.RegisterSnapshot([]Snapshotter{obj}, "Move"))

	require.True(t, s.Discard())
	assert.Equal(t, []string{"Move"}, s.Labels())
}
