package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/config"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/dispatch"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/handlers"
	"github.com/specialistvlad/graphtools/internal/idletimer"
	"github.com/specialistvlad/graphtools/internal/observer"
	"github.com/specialistvlad/graphtools/internal/observers"
	"github.com/specialistvlad/graphtools/internal/persist"
	"github.com/specialistvlad/graphtools/internal/positiondeps"
	"github.com/specialistvlad/graphtools/internal/relay"
	"github.com/specialistvlad/graphtools/internal/state"
	"github.com/specialistvlad/graphtools/internal/stencil"
	"github.com/specialistvlad/graphtools/internal/undo"
)

// DefaultViewID is the view used when the configuration names none. A fixed
// id lets the persisted state of one run be found by the next.
var DefaultViewID = elementid.MustParse("6f1c2a3e-8d4b-4c7a-9e15-2b7d0c9a4f10")

// Option customizes NewApp.
type Option func(*options)

type options struct {
	translator build.Translator
	publisher  observers.Publisher
	stencil    graph.Stencil
}

// WithTranslator replaces the bundled build.Validator.
func WithTranslator(t build.Translator) Option {
	return func(o *options) { o.translator = t }
}

// WithPublisher relays state changes to p instead of dialing the
// configured relay.
func WithPublisher(p observers.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithStencil replaces stencil.Basic.
func WithStencil(s graph.Stencil) Option {
	return func(o *options) { o.stencil = s }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	appConfig *Config
	config    *config.Model

	closers    []io.Closer
	cache      *persist.Cache
	state      *state.Container
	undo       *undo.Stack
	scheduler  *observer.Scheduler
	dispatcher *dispatch.Dispatcher
	deps       *positiondeps.Manager
	idle       *idletimer.Timer
	badge      *observers.ErrorBadge
}

// NewApp is the constructor for the main application. It loads the editor
// configuration through loader and returns a fully wired App showing
// appConfig.AssetKey.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.stencil == nil {
		o.stencil = stencil.Basic{}
	}

	bootLogger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	cfgModel, err := loader.Load(ctxlog.WithLogger(ctx, bootLogger), appConfig.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(
		firstNonEmpty(appConfig.LogLevel, cfgModel.Log.Level),
		firstNonEmpty(appConfig.LogFormat, cfgModel.Log.Format),
		outW,
	)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:      outW,
		logger:    logger,
		appConfig: appConfig,
		config:    cfgModel,
		undo:      undo.NewStack(cfgModel.Undo.MaxDepth),
		idle:      idletimer.New(cfgModel.Idle.Delay),
	}
	if err := a.wire(ctx, o); err != nil {
		return nil, errors.Join(err, a.closeResources())
	}
	logger.Debug("App wired.", "view", a.state.ViewID().String(), "observers", a.scheduler.Names())

	if appConfig.AssetKey != "" {
		if err := a.LoadGraph(ctx, appConfig.AssetKey, false); err != nil {
			return nil, errors.Join(err, a.closeResources())
		}
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, o options) error {
	cfg := a.config

	backend, err := a.openBackend(cfg.Persistence)
	if err != nil {
		return err
	}
	if a.cache, err = persist.NewCache(ctx, backend); err != nil {
		return fmt.Errorf("failed to open state cache: %w", err)
	}
	a.logger.Debug("State cache opened.", "backend", cfg.Persistence.Backend, "path", cfg.Persistence.Path)

	viewID := DefaultViewID
	if a.appConfig.ViewID != "" {
		if viewID, err = elementid.Parse(a.appConfig.ViewID); err != nil {
			return err
		}
	}
	a.state = state.NewContainer(viewID, a.cache, o.stencil, a.logger)

	dispatchOpts, err := dispatchOptions(cfg.Dispatch)
	if err != nil {
		return err
	}
	a.scheduler = observer.NewScheduler(cfg.Observers.MaxPasses)
	a.dispatcher = dispatch.New(a.state, a.undo, a.scheduler, dispatchOpts, a.logger)

	layoutOpts := positiondeps.Options{
		HorizontalGap:   cfg.Layout.HorizontalGap,
		HeaderHeight:    cfg.Layout.HeaderHeight,
		PortSpacing:     cfg.Layout.PortSpacing,
		LogDependencies: cfg.Layout.LogDependencies,
	}
	a.state.OnGraphResolved(func(g *graph.Graph) {
		if a.deps != nil {
			a.deps.Detach()
		}
		a.deps = positiondeps.New(g, a.dispatcher, layoutOpts, a.logger)
	})

	handlers.Register(a.dispatcher, handlers.Env{
		Layout: func() handlers.Layout {
			if a.deps == nil {
				return nil
			}
			return a.deps
		},
		Translator: o.translator,
		OnGraphSwitch: func(context.Context) {
			a.undo.Clear()
			a.idle.Stop()
		},
	})
	if err := a.dispatcher.Validate(); err != nil {
		// A command kind without a handler is a programmer error.
		panic(err)
	}

	return a.registerObservers(ctx, o.publisher)
}

func (a *App) openBackend(cfg config.Persistence) (persist.Backend, error) {
	switch cfg.Backend {
	case "file":
		return persist.NewFileBackend(cfg.Path), nil
	case "sqlite":
		b, err := persist.NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b)
		return b, nil
	case "memory":
		return persist.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.Backend)
	}
}

func dispatchOptions(cfg config.Dispatch) (dispatch.Options, error) {
	recursive, err := dispatch.ParseCheckMode(cfg.Recursive)
	if err != nil {
		return dispatch.Options{}, fmt.Errorf("dispatch.recursive: %w", err)
	}
	multiple, err := dispatch.ParseCheckMode(cfg.Multiple)
	if err != nil {
		return dispatch.Options{}, fmt.Errorf("dispatch.multiple: %w", err)
	}
	return dispatch.Options{
		RecursiveDispatch: recursive,
		MultipleDispatch:  multiple,
		RollbackOnError:   cfg.RollbackOnError,
	}, nil
}

func (a *App) registerObservers(ctx context.Context, pub observers.Publisher) error {
	cfg := a.config.Observers
	if cfg.AutoAlign {
		aligner := func() observers.Aligner {
			if a.deps == nil {
				return nil
			}
			return a.deps
		}
		if err := a.scheduler.Register(observers.NewAutoAlign(aligner, cfg.AutoAlignFollow)); err != nil {
			return err
		}
	}
	if cfg.ErrorBadge {
		a.badge = observers.NewErrorBadge()
		if err := a.scheduler.Register(a.badge); err != nil {
			return err
		}
	}

	var components []string
	if r := a.config.Relay; r != nil {
		components = r.Components
		if pub == nil {
			client, err := relay.Dial(ctx, relay.Config{
				URL:                r.URL,
				Namespace:          r.Namespace,
				InsecureSkipVerify: r.InsecureSkipVerify,
				ConnectTimeout:     r.ConnectTimeout,
			})
			if err != nil {
				return fmt.Errorf("failed to connect relay: %w", err)
			}
			a.closers = append(a.closers, client)
			pub = client
		}
	}
	if pub != nil {
		return a.scheduler.Register(observers.NewRelay(pub, components...))
	}
	return nil
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Config returns the loaded editor configuration.
func (a *App) Config() *config.Model { return a.config }

// State returns the state container of the editor view.
func (a *App) State() *state.Container { return a.state }

// Graph returns the graph currently shown.
func (a *App) Graph() *graph.Graph { return a.state.Graph() }

// Layout returns the position-dependency manager of the shown graph.
func (a *App) Layout() *positiondeps.Manager {
	a.state.Graph()
	return a.deps
}

// UndoLabels returns the undo history, oldest first.
func (a *App) UndoLabels() []string { return a.undo.Labels() }

// Idle returns the idle timer.
func (a *App) Idle() *idletimer.Timer { return a.idle }

func (a *App) context(ctx context.Context) context.Context {
	if _, ok := ctxlog.Lookup(ctx); ok {
		return ctx
	}
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) closeResources() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Close flushes the persisted state and releases the cache backend and the
// relay connection.
func (a *App) Close(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Closing app...")

	var errs []error
	if a.cache != nil {
		if err := a.cache.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush state: %w", err))
		}
	}
	if a.deps != nil {
		a.deps.Detach()
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}
	logger.Debug("App closed.")
	return errors.Join(errs...)
}
