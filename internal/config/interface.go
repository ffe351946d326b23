package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, files or directories,
	// and returns the merged model. Settings left out keep their defaults.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
