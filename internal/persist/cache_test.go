package persist

import (
	"context"
	"encoding/json"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewport struct {
	Zoom    float64  `json:"zoom"`
	Pinned  []string `json:"pinned"`
	Visible bool     `json:"visible"`
}

func (v *viewport) Snapshot() ([]byte, error) { return json.Marshal(v) }
func (v *viewport) Restore(data []byte) error { return json.Unmarshal(data, v) }

func newViewport() *viewport { return &viewport{Zoom: 1} }

func TestKeyPath(t *testing.T) {
	k := Key{TypeName: "Selection", ViewID: elementid.New(), AssetKey: "graphs/main"}
	p := k.Path()

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{2}/[0-9a-f]{64}\.json$`), p)
	assert.Equal(t, p[:2], k.Hash()[:2])
	assert.Equal(t, p, k.Path(), "paths are stable")

	other := k
	other.AssetKey = "graphs/other"
	assert.NotEqual(t, p, other.Path())
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sqlite, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"file":   NewFileBackend(t.TempDir()),
		"sqlite": sqlite,
		"memory": NewMemoryBackend(),
	}
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := Key{TypeName: "viewport", ViewID: elementid.New(), AssetKey: "a"}

			c, err := NewCache(ctx, backend)
			require.NoError(t, err)
			v := GetOrCreate(ctx, c, key, newViewport)
			assert.Equal(t, 1.0, v.Zoom, "default on first access")
			v.Zoom = 2.5
			v.Pinned = []string{"x", "y"}
			v.Visible = true

			assert.Same(t, v, GetOrCreate(ctx, c, key, newViewport), "memory hit")
			require.NoError(t, c.Flush(ctx))
			assert.Equal(t, 0, c.Len())

			fresh, err := NewCache(ctx, backend)
			require.NoError(t, err)
			got := GetOrCreate(ctx, fresh, key, newViewport)
			if diff := cmp.Diff(v, got); diff != "" {
				t.Errorf("restored state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCache_CorruptEntryFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	key := Key{TypeName: "viewport", ViewID: elementid.New()}
	require.NoError(t, backend.Write(key.Path(), []byte("{not json")))

	c, err := NewCache(ctx, backend)
	require.NoError(t, err)
	v := GetOrCreate(ctx, c, key, newViewport)

	assert.Equal(t, newViewport(), v)
	exists, err := backend.Exists(key.Path())
	require.NoError(t, err)
	assert.False(t, exists, "corrupt entry is deleted")
}

func TestCache_CorruptIndexIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(indexPath, []byte("garbage")))

	_, err := NewCache(ctx, backend)
	require.NoError(t, err)
	exists, _ := backend.Exists(indexPath)
	assert.False(t, exists)
}

func TestCache_RemoveState(t *testing.T) {
	ctx := context.Background()
	backend := NewFileBackend(t.TempDir())
	closing := elementid.New()
	staying := elementid.New()

	c, err := NewCache(ctx, backend)
	require.NoError(t, err)
	GetOrCreate(ctx, c, Key{TypeName: "viewport", ViewID: closing, AssetKey: "a"}, newViewport)
	GetOrCreate(ctx, c, Key{TypeName: "viewport", ViewID: closing, AssetKey: "b"}, newViewport)
	keep := Key{TypeName: "viewport", ViewID: staying, AssetKey: "a"}
	GetOrCreate(ctx, c, keep, newViewport)
	require.NoError(t, c.Flush(ctx))

	// A fresh cache must find the view's files through the persisted index.
	reopened, err := NewCache(ctx, backend)
	require.NoError(t, err)
	require.NoError(t, reopened.RemoveState(ctx, closing))

	for _, asset := range []string{"a", "b"} {
		exists, err := backend.Exists(Key{TypeName: "viewport", ViewID: closing, AssetKey: asset}.Path())
		require.NoError(t, err)
		assert.False(t, exists)
	}
	exists, err := backend.Exists(keep.Path())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileBackend_Basics(t *testing.T) {
	b := NewFileBackend(t.TempDir())

	_, err := b.Read("ab/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, b.Delete("ab/missing.json"), "deleting a missing file is fine")

	require.NoError(t, b.Write("ab/entry.json", []byte("one")))
	require.NoError(t, b.Write("ab/entry.json", []byte("two")))
	data, err := b.Read("ab/entry.json")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, b.MkdirAll("cd"))
	require.NoError(t, b.Delete("ab/entry.json"))
	exists, err := b.Exists("ab/entry.json")
	require.NoError(t, err)
	assert.False(t, exists)
}
