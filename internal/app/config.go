package app

import (
	"errors"

	"github.com/specialistvlad/graphtools/internal/elementid"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // editor hcl files or directories
	ScriptPaths []string // graph script hcl files or directories

	// AssetKey is the graph shown at startup. Empty shows an unnamed graph.
	AssetKey string
	// ViewID identifies the editor view in the persisted cache. Empty uses
	// the default view.
	ViewID string
	// Build compiles the graph after the scripts ran.
	Build bool

	// LogFormat and LogLevel override the configured ones when set.
	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ScriptPaths) == 0 {
		return nil, errors.New("at least one script path is required")
	}
	if cfg.ViewID != "" {
		if _, err := elementid.Parse(cfg.ViewID); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
