package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
)

const (
	indexPath   = "index.json"
	indexFormat = 1
)

// Persistable is what the cache can store.
type Persistable interface {
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

type entry struct {
	key   Key
	value Persistable
}

type indexDoc struct {
	Format int                       `json:"format"`
	Views  map[elementid.ID][]string `json:"views"`
}

// Cache holds the component instances resolved since the last Flush.
type Cache struct {
	mu      sync.Mutex
	backend Backend
	entries map[string]*entry
	views   map[elementid.ID]map[string]struct{}
}

// NewCache returns a cache over backend and loads its view index. A corrupt
// index is logged and discarded.
func NewCache(ctx context.Context, backend Backend) (*Cache, error) {
	if backend == nil {
		return nil, errors.New("persist: backend is required")
	}
	c := &Cache{
		backend: backend,
		entries: make(map[string]*entry),
		views:   make(map[elementid.ID]map[string]struct{}),
	}
	if err := c.loadIndex(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) loadIndex(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	data, err := c.backend.Read(indexPath)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state index: %w", err)
	}
	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil || doc.Format != indexFormat {
		logger.Warn("Discarding unreadable state index.", "path", indexPath, "error", err, "format", doc.Format)
		return c.backend.Delete(indexPath)
	}
	for view, paths := range doc.Views {
		set := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			set[p] = struct{}{}
		}
		c.views[view] = set
	}
	logger.Debug("Loaded state index.", "views", len(c.views))
	return nil
}

func (c *Cache) writeIndex() error {
	doc := indexDoc{Format: indexFormat, Views: make(map[elementid.ID][]string, len(c.views))}
	for view, set := range c.views {
		paths := make([]string, 0, len(set))
		for p := range set {
			paths = append(paths, p)
		}
		slices.Sort(paths)
		doc.Views[view] = paths
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.backend.Write(indexPath, data)
}

// GetOrCreate returns the instance cached under key. On a miss it builds one
// with create and restores it from the backend when an entry exists there.
// Corrupt or unreadable entries are logged, deleted and replaced by the
// fresh instance.
func GetOrCreate[T Persistable](ctx context.Context, c *Cache, key Key, create func() T) T {
	logger := ctxlog.FromContext(ctx).With("key", key.String())
	p := key.Path()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[p]; ok {
		if v, ok := e.value.(T); ok {
			return v
		}
		logger.Warn("Cached state has an unexpected type; replacing it.", "type", fmt.Sprintf("%T", e.value))
	}

	v := create()
	data, err := c.backend.Read(p)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Debug("No persisted state; using default.")
	case err != nil:
		logger.Warn("Persisted state is unreadable; using default.", "path", p, "error", err)
		c.discard(logger, p)
	default:
		if err := v.Restore(data); err != nil {
			logger.Warn("Persisted state is corrupt; using default.", "path", p, "error", err)
			c.discard(logger, p)
			v = create()
		} else {
			logger.Debug("Restored persisted state.", "path", p, "bytes", len(data))
		}
	}

	c.entries[p] = &entry{key: key, value: v}
	c.track(key.ViewID, p)
	return v
}

func (c *Cache) discard(logger *slog.Logger, p string) {
	if err := c.backend.Delete(p); err != nil {
		logger.Warn("Failed to delete corrupt state.", "path", p, "error", err)
	}
}

func (c *Cache) track(view elementid.ID, p string) {
	set, ok := c.views[view]
	if !ok {
		set = make(map[string]struct{})
		c.views[view] = set
	}
	set[p] = struct{}{}
}

// Len returns the number of instances held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush writes every cached instance to the backend and empties the
// in-memory cache, so the next access reads back from the backend. Failed
// entries are reported together; the others are still written.
func (c *Cache) Flush(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for p, e := range c.entries {
		data, err := e.value.Snapshot()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to serialize %s: %w", e.key, err))
			continue
		}
		if err := c.backend.Write(p, data); err != nil {
			errs = append(errs, fmt.Errorf("failed to persist %s: %w", e.key, err))
			continue
		}
		logger.Debug("Persisted state.", "key", e.key.String(), "path", p, "bytes", len(data))
	}
	if err := c.writeIndex(); err != nil {
		errs = append(errs, fmt.Errorf("failed to write state index: %w", err))
	}
	flushed := len(c.entries)
	c.entries = make(map[string]*entry)
	logger.Debug("State cache flushed.", "entries", flushed, "errors", len(errs))
	return errors.Join(errs...)
}

// RemoveState deletes every entry written for the view and forgets the
// view. It is used when a view is closed for good.
func (c *Cache) RemoveState(ctx context.Context, viewID elementid.ID) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for p := range c.views[viewID] {
		delete(c.entries, p)
		if err := c.backend.Delete(p); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", p, err))
		}
	}
	delete(c.views, viewID)
	if err := c.writeIndex(); err != nil {
		errs = append(errs, fmt.Errorf("failed to write state index: %w", err))
	}
	logger.Debug("Removed view state.", "view", viewID.String(), "errors", len(errs))
	return errors.Join(errs...)
}
