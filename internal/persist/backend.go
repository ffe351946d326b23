package persist

import "errors"

// ErrNotFound is returned by Backend.Read for a path that was never written.
var ErrNotFound = errors.New("persisted entry not found")

// Backend is a synchronous path to bytes store. Paths are slash separated
// and relative to the backend's root.
type Backend interface {
	Write(path string, data []byte) error
	Read(path string) ([]byte, error)
	Exists(path string) (bool, error)
	Delete(path string) error
	MkdirAll(dir string) error
}
