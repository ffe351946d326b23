package dispatch

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
)

// Update is called once per host frame. When a command ran since the
// previous call it runs the observers to a fixed point, notifies the
// subscribers and purges changesets every observer has seen.
func (d *Dispatcher) Update(ctx context.Context) error {
	d.frame++
	d.frameDispatches = 0
	if !d.dirty {
		return nil
	}
	defer func() { d.dirty = false }()

	if _, ok := ctxlog.Lookup(ctx); !ok {
		ctx = ctxlog.WithLogger(ctx, d.logger)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("State changed, updating.", "frame", d.frame)

	var err error
	if d.observers != nil {
		err = d.observers.Run(ctx, d.st)
	}
	for _, fn := range d.subscribers {
		fn(ctx)
	}
	d.purge()
	return err
}

func (d *Dispatcher) purge() {
	for _, c := range d.st.Components() {
		upTo := c.Version()
		if d.observers != nil {
			if oldest := d.observers.OldestSeen(c.Name()); oldest < upTo {
				upTo = oldest
			}
		}
		c.PurgeChangesets(upTo)
	}
}

// Undo puts the undoable components back to their state before the newest
// undo entry and dispatches UndoRedo. It reports false when there was
// nothing to undo.
func (d *Dispatcher) Undo(ctx context.Context) (bool, error) {
	return d.replay(ctx, false)
}

// Redo re-applies the newest undone entry.
func (d *Dispatcher) Redo(ctx context.Context) (bool, error) {
	return d.replay(ctx, true)
}

func (d *Dispatcher) replay(ctx context.Context, redo bool) (bool, error) {
	if d.undo == nil {
		return false, nil
	}
	op := d.undo.Undo
	if redo {
		op = d.undo.Redo
	}
	ok, err := op()
	if err != nil {
		return false, fmt.Errorf("failed to replay undo history: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := d.st.ValidateAfterDeserialize(); err != nil {
		ctxlog.FromContext(ctx).Warn("Restored state needed repairs.", "error", err)
	}
	return true, d.Dispatch(ctx, command.UndoRedo{Redo: redo})
}
