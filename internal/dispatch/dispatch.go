package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/observer"
	"github.com/specialistvlad/graphtools/internal/state"
	"github.com/specialistvlad/graphtools/internal/undo"
)

var (
	// ErrNoHandler is returned when a command kind has no handler.
	ErrNoHandler = errors.New("no handler registered for command")
	// ErrRecursiveDispatch is returned when a handler dispatches and the
	// recursive check is in error mode.
	ErrRecursiveDispatch = errors.New("recursive dispatch")
	// ErrMultipleDispatch is returned for a second dispatch in one frame
	// when the multiple check is in error mode.
	ErrMultipleDispatch = errors.New("multiple dispatches in one frame")
)

// Handler carries out one command kind.
type Handler[C command.Command] func(ctx context.Context, st *state.Container, cmd C) error

type handlerFunc func(ctx context.Context, st *state.Container, cmd command.Command) error

// PreDispatchObserver sees every command before it is handled. It must not
// change state.
type PreDispatchObserver func(ctx context.Context, cmd command.Command)

// Dispatcher routes commands to handlers.
type Dispatcher struct {
	st        *state.Container
	undo      undo.Host
	observers *observer.Scheduler
	opts      Options
	logger    *slog.Logger

	handlers     map[command.Kind]handlerFunc
	preObservers []PreDispatchObserver
	subscribers  []func(ctx context.Context)

	depth           int
	frame           uint64
	frameDispatches int
	dirty           bool
}

// New returns a dispatcher over st. host and observers may be nil, which
// disables undo recording and observers respectively.
func New(st *state.Container, host undo.Host, observers *observer.Scheduler, opts Options, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = ctxlog.FromContext(context.Background())
	}
	return &Dispatcher{
		st:        st,
		undo:      host,
		observers: observers,
		opts:      opts,
		logger:    logger,
		handlers:  make(map[command.Kind]handlerFunc),
	}
}

// Register installs fn as the handler of command type C. The kind is taken
// from the zero value of C. Registering a kind twice panics.
func Register[C command.Command](d *Dispatcher, fn Handler[C]) {
	var zero C
	kind := zero.Kind()
	if _, exists := d.handlers[kind]; exists {
		panic(fmt.Sprintf("handler for command '%s' already registered", kind))
	}
	d.logger.Debug("Registering command handler.", "command", kind.String())
	d.handlers[kind] = func(ctx context.Context, st *state.Container, cmd command.Command) error {
		c, ok := cmd.(C)
		if !ok {
			return fmt.Errorf("handler for %s got %T", kind, cmd)
		}
		return fn(ctx, st, c)
	}
}

// Validate reports every command kind without a handler.
func (d *Dispatcher) Validate() error {
	var errs []error
	for _, k := range command.Kinds() {
		if _, ok := d.handlers[k]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoHandler, k))
		}
	}
	return errors.Join(errs...)
}

// State returns the container the dispatcher mutates.
func (d *Dispatcher) State() *state.Container { return d.st }

// AddPreDispatchObserver registers fn to see every command first.
func (d *Dispatcher) AddPreDispatchObserver(fn PreDispatchObserver) {
	d.preObservers = append(d.preObservers, fn)
}

// Subscribe registers fn to run on every Update that follows a change.
func (d *Dispatcher) Subscribe(fn func(ctx context.Context)) {
	d.subscribers = append(d.subscribers, fn)
}

// Dirty reports whether a command ran since the last Update.
func (d *Dispatcher) Dirty() bool { return d.dirty }

// Frame returns the number of Update calls so far.
func (d *Dispatcher) Frame() uint64 { return d.frame }

// Dispatch runs cmd. Handler errors are returned as is; a handler panic is
// re-raised after the optional rollback.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command) error {
	kind := cmd.Kind()
	logger, ok := ctxlog.Lookup(ctx)
	if !ok {
		logger = d.logger
	}
	logger = logger.With("command", kind.String())
	ctx = ctxlog.WithLogger(ctx, logger)

	if d.depth > 0 {
		if err := d.check(logger, d.opts.RecursiveDispatch, ErrRecursiveDispatch); err != nil {
			return err
		}
	}
	if d.frameDispatches > 0 && d.depth == 0 {
		if err := d.check(logger, d.opts.MultipleDispatch, ErrMultipleDispatch); err != nil {
			return err
		}
	}

	for _, fn := range d.preObservers {
		fn(ctx, cmd)
	}

	// Looked up before anything is touched so an unhandled command leaves
	// every component version as it was.
	h, found := d.handlers[kind]
	if !found {
		err := fmt.Errorf("%w: %s", ErrNoHandler, kind)
		logger.Error("Command dropped.", "error", err)
		return err
	}

	d.preDispatchAction()

	registered := false
	if label := cmd.UndoLabel(); label != "" && d.undo != nil {
		if err := d.undo.RegisterSnapshot(snapshotters(d.st.Undoable()), label); err != nil {
			return fmt.Errorf("failed to record undo for %s: %w", kind, err)
		}
		registered = true
	}

	var rollback [][]byte
	if d.opts.RollbackOnError {
		var err error
		if rollback, err = d.capture(); err != nil {
			if registered {
				d.undo.Discard()
			}
			return fmt.Errorf("failed to capture rollback state for %s: %w", kind, err)
		}
	}

	if d.depth == 0 {
		d.frameDispatches++
	}
	before := undoableVersions(d.st)
	succeeded := false
	defer func() {
		d.dirty = true
		if !registered || succeeded {
			return
		}
		// A failed command that left the undoable state as it was gets
		// no undo entry and keeps the redo history.
		if rollback != nil || slices.Equal(before, undoableVersions(d.st)) {
			if d.undo.Discard() {
				logger.Debug("Undo entry discarded.")
			}
		}
	}()

	logger.Debug("Dispatching command.")
	if err := d.run(ctx, h, cmd, rollback); err != nil {
		return fmt.Errorf("command %s failed: %w", kind, err)
	}
	succeeded = true
	return nil
}

func undoableVersions(st *state.Container) []uint64 {
	comps := st.Undoable()
	out := make([]uint64, len(comps))
	for i, c := range comps {
		out[i] = c.Version()
	}
	return out
}

// preDispatchAction starts a fresh change list on the shown graph and
// forgets the previous command's rebuild request.
func (d *Dispatcher) preDispatchAction() {
	d.st.Graph().ResetChangeList()
	u := d.st.Tool().Update()
	defer u.Close()
	u.ClearRebuildMarker()
}

func (d *Dispatcher) run(ctx context.Context, h handlerFunc, cmd command.Command, rollback [][]byte) (err error) {
	d.depth++
	defer func() {
		d.depth--
		if r := recover(); r != nil {
			if rollback != nil {
				d.restore(ctx, rollback)
			}
			panic(r)
		}
	}()
	err = h(ctx, d.st, cmd)
	if err != nil && rollback != nil {
		d.restore(ctx, rollback)
	}
	return err
}

func (d *Dispatcher) check(logger *slog.Logger, mode CheckMode, violation error) error {
	switch mode {
	case CheckLog:
		logger.Warn("Dispatch rule violated.", "violation", violation.Error(), "frame", d.frame)
	case CheckError:
		logger.Error("Dispatch rule violated.", "violation", violation.Error(), "frame", d.frame)
		return violation
	}
	return nil
}

func snapshotters(components []state.Component) []undo.Snapshotter {
	out := make([]undo.Snapshotter, len(components))
	for i, c := range components {
		out[i] = c
	}
	return out
}

func (d *Dispatcher) capture() ([][]byte, error) {
	comps := d.st.Undoable()
	out := make([][]byte, len(comps))
	for i, c := range comps {
		data, err := c.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		out[i] = data
	}
	return out, nil
}

func (d *Dispatcher) restore(ctx context.Context, saved [][]byte) {
	logger := ctxlog.FromContext(ctx)
	for i, c := range d.st.Undoable() {
		if i >= len(saved) {
			break
		}
		if err := c.Restore(saved[i]); err != nil {
			logger.Error("Failed to roll back component.", "component", c.Name(), "error", err)
		}
	}
	if err := d.st.ValidateAfterDeserialize(); err != nil {
		logger.Error("Rolled back state failed validation.", "error", err)
	}
	logger.Warn("Command rolled back.")
}
