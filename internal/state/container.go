package state

import (
	"context"
	"errors"
	"log/slog"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/persist"
)

// Container is the state of one editor view. Window, Tracing and Tool live
// as long as the container. GraphView, Selection and Blackboard belong to
// the shown graph: they are resolved lazily through the persisted cache and
// dropped by Reset.
type Container struct {
	viewID  elementid.ID
	cache   *persist.Cache
	stencil graph.Stencil
	logger  *slog.Logger

	window  *Window
	tracing *Tracing
	tool    *Tool

	graphView  *GraphView
	selection  *Selection
	blackboard *Blackboard

	onGraph []func(*graph.Graph)
	// floors holds the last version of each dropped per-graph component.
	floors map[string]uint64
}

// NewContainer returns the state of view viewID. A nil cache keeps the
// per-graph components in memory only.
func NewContainer(viewID elementid.ID, cache *persist.Cache, stencil graph.Stencil, logger *slog.Logger) *Container {
	if logger == nil {
		logger = ctxlog.FromContext(context.Background())
	}
	return &Container{
		viewID:  viewID,
		cache:   cache,
		stencil: stencil,
		logger:  logger,
		window:  NewWindow(viewID),
		tracing: NewTracing(viewID),
		tool:    NewTool(viewID),
		floors:  make(map[string]uint64),
	}
}

// ViewID returns the id of the view the container belongs to.
func (c *Container) ViewID() elementid.ID { return c.viewID }

func (c *Container) Window() *Window   { return c.window }
func (c *Container) Tracing() *Tracing { return c.tracing }
func (c *Container) Tool() *Tool       { return c.tool }

// OnGraphResolved registers fn to run every time a GraphView is resolved,
// with the graph it holds. It is how listeners get attached to graphs that
// come out of the cache.
func (c *Container) OnGraphResolved(fn func(*graph.Graph)) {
	c.onGraph = append(c.onGraph, fn)
}

func (c *Container) key(name string) persist.Key {
	return persist.Key{TypeName: name, ViewID: c.viewID, AssetKey: c.window.AssetKey()}
}

func resolve[T persist.Persistable](c *Container, name string, create func() T) T {
	if c.cache == nil {
		return create()
	}
	ctx := ctxlog.WithLogger(context.Background(), c.logger)
	return persist.GetOrCreate(ctx, c.cache, c.key(name), create)
}

// GraphView returns the view of the shown graph.
func (c *Container) GraphView() *GraphView {
	if c.graphView == nil {
		assetKey := c.window.AssetKey()
		c.graphView = resolve(c, NameGraphView, func() *GraphView {
			return NewGraphView(c.viewID, assetKey, c.stencil)
		})
		c.graphView.continueFrom(c.floors[NameGraphView])
		c.logger.Debug("Resolved graph view.", "asset", assetKey, "nodes", len(c.graphView.Graph().Nodes()))
		for _, fn := range c.onGraph {
			fn(c.graphView.Graph())
		}
	}
	return c.graphView
}

// Graph is a shortcut for GraphView().Graph().
func (c *Container) Graph() *graph.Graph { return c.GraphView().Graph() }

// Selection returns the selection of the shown graph.
func (c *Container) Selection() *Selection {
	if c.selection == nil {
		c.selection = resolve(c, NameSelection, func() *Selection { return NewSelection(c.viewID) })
		c.selection.continueFrom(c.floors[NameSelection])
	}
	return c.selection
}

// Blackboard returns the blackboard state of the shown graph.
func (c *Container) Blackboard() *Blackboard {
	if c.blackboard == nil {
		c.blackboard = resolve(c, NameBlackboard, func() *Blackboard { return NewBlackboard(c.viewID) })
		c.blackboard.continueFrom(c.floors[NameBlackboard])
	}
	return c.blackboard
}

// Components returns every component, resolving the lazy ones.
func (c *Container) Components() []Component {
	return []Component{c.Window(), c.GraphView(), c.Selection(), c.Blackboard(), c.Tracing(), c.Tool()}
}

// Undoable returns the components an undo entry captures.
func (c *Container) Undoable() []Component {
	return []Component{c.Selection(), c.GraphView(), c.Blackboard(), c.Window()}
}

// Component looks a component up by name.
func (c *Container) Component(name string) (Component, bool) {
	switch name {
	case NameWindow:
		return c.Window(), true
	case NameGraphView:
		return c.GraphView(), true
	case NameSelection:
		return c.Selection(), true
	case NameBlackboard:
		return c.Blackboard(), true
	case NameTracing:
		return c.Tracing(), true
	case NameTool:
		return c.Tool(), true
	default:
		return nil, false
	}
}

// ValidateAfterDeserialize repairs every undoable component after a
// restore and drops selected ids the restored graph no longer has.
func (c *Container) ValidateAfterDeserialize() error {
	var errs []error
	for _, comp := range c.Undoable() {
		if err := comp.ValidateAfterDeserialize(); err != nil {
			errs = append(errs, err)
		}
	}
	g := c.Graph()
	u := c.Selection().Update()
	defer u.Close()
	u.Prune(func(id elementid.ID) bool {
		if n, ok := g.Element(id); ok {
			if node, isNode := n.(*graph.Node); isNode {
				return !node.IsDestroyed()
			}
			return true
		}
		return false
	})
	return errors.Join(errs...)
}

// Reset flushes the per-graph components to the cache and drops them from
// memory. The next access resolves them again for the current asset key.
func (c *Container) Reset(ctx context.Context) error {
	var err error
	if c.cache != nil {
		err = c.cache.Flush(ctx)
	}
	if c.graphView != nil {
		c.floors[NameGraphView] = c.graphView.Version()
	}
	if c.selection != nil {
		c.floors[NameSelection] = c.selection.Version()
	}
	if c.blackboard != nil {
		c.floors[NameBlackboard] = c.blackboard.Version()
	}
	c.graphView = nil
	c.selection = nil
	c.blackboard = nil
	ctxlog.FromContext(ctx).Debug("State container reset.", "view", c.viewID.String())
	return err
}
