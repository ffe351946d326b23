package persist

import "sync"

// MemoryBackend is an ephemeral, thread-safe Backend.
type MemoryBackend struct {
	entries sync.Map // Key: path, Value: []byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Write(p string, data []byte) error {
	b.entries.Store(p, append([]byte(nil), data...))
	return nil
}

func (b *MemoryBackend) Read(p string) ([]byte, error) {
	v, ok := b.entries.Load(p)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.([]byte)...), nil
}

func (b *MemoryBackend) Exists(p string) (bool, error) {
	_, ok := b.entries.Load(p)
	return ok, nil
}

func (b *MemoryBackend) Delete(p string) error {
	b.entries.Delete(p)
	return nil
}

// MkdirAll is a no-op; the memory backend has no directories.
func (b *MemoryBackend) MkdirAll(string) error { return nil }

// Paths returns every stored path. Order is unspecified.
func (b *MemoryBackend) Paths() []string {
	var out []string
	b.entries.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	return out
}
