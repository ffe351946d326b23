package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores entries as files under Root.
type FileBackend struct {
	Root string
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a backend rooted at root. The directory is created
// on first write.
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{Root: root}
}

func (b *FileBackend) abs(p string) string {
	return filepath.Join(b.Root, filepath.FromSlash(p))
}

// Write replaces the file at p. The data goes to a temporary file first and
// is renamed into place.
func (b *FileBackend) Write(p string, data []byte) error {
	target := b.abs(p)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", p, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", p, err)
	}
	return nil
}

func (b *FileBackend) Read(p string) ([]byte, error) {
	data, err := os.ReadFile(b.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *FileBackend) Exists(p string) (bool, error) {
	_, err := os.Stat(b.abs(p))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Delete removes the file at p. A missing file is not an error.
func (b *FileBackend) Delete(p string) error {
	err := os.Remove(b.abs(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) MkdirAll(dir string) error {
	return os.MkdirAll(b.abs(dir), 0o755)
}
