package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Model is the unified, format-agnostic representation of the editor
// configuration.
type Model struct {
	Log         Log
	Dispatch    Dispatch
	Observers   Observers
	Persistence Persistence
	Layout      Layout
	Idle        Idle
	Undo        Undo
	// Relay is nil when no relay is configured.
	Relay *Relay
}

// Log selects the logger level and output format.
type Log struct {
	Level  string
	Format string
}

// Dispatch holds the dispatcher checks. Modes are "off", "log" or "error".
type Dispatch struct {
	Recursive       string
	Multiple        string
	RollbackOnError bool
}

// Observers tunes the observer scheduler and the stock observers.
type Observers struct {
	MaxPasses       int
	AutoAlign       bool
	AutoAlignFollow bool
	ErrorBadge      bool
}

// Persistence selects where per-graph state is cached between sessions.
type Persistence struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string
	// Path is the cache directory for "file" and the database file for
	// "sqlite".
	Path string
}

// Layout holds the node alignment metrics.
type Layout struct {
	HorizontalGap   float64
	HeaderHeight    float64
	PortSpacing     float64
	LogDependencies bool
}

// Idle configures the idle timer that triggers automatic builds.
type Idle struct {
	Delay       time.Duration
	AutoProcess bool
}

// Undo bounds the undo history.
type Undo struct {
	MaxDepth int
}

// Relay points at a socket.io endpoint receiving state notifications.
type Relay struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
	// Components limits the relayed components; empty relays all.
	Components []string
}

// Default returns the configuration used when nothing is set.
func Default() *Model {
	return &Model{
		Log:      Log{Level: "info", Format: "text"},
		Dispatch: Dispatch{Recursive: "error", Multiple: "log"},
		Observers: Observers{
			MaxPasses:  16,
			AutoAlign:  true,
			ErrorBadge: true,
		},
		Persistence: Persistence{Backend: "memory"},
		Layout:      Layout{HorizontalGap: 40, HeaderHeight: 24, PortSpacing: 20},
		Idle:        Idle{Delay: 500 * time.Millisecond},
		Undo:        Undo{MaxDepth: 100},
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	checkModes = []string{"off", "log", "error"}
	backends   = []string{"file", "sqlite", "memory"}
)

// Validate reports every setting outside its allowed values.
func (m *Model) Validate() error {
	var errs []error
	oneOf := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %v", field, value, allowed))
		}
	}
	oneOf("log.level", m.Log.Level, logLevels)
	oneOf("log.format", m.Log.Format, logFormats)
	oneOf("dispatch.recursive", m.Dispatch.Recursive, checkModes)
	oneOf("dispatch.multiple", m.Dispatch.Multiple, checkModes)
	oneOf("persistence.backend", m.Persistence.Backend, backends)

	if m.Persistence.Backend != "memory" && m.Persistence.Path == "" {
		errs = append(errs, fmt.Errorf("persistence.path is required for the %s backend", m.Persistence.Backend))
	}
	if m.Observers.MaxPasses < 1 {
		errs = append(errs, errors.New("observers.max_passes must be at least 1"))
	}
	if m.Idle.Delay < 0 {
		errs = append(errs, errors.New("idle.delay must not be negative"))
	}
	if m.Undo.MaxDepth < 0 {
		errs = append(errs, errors.New("undo.max_depth must not be negative"))
	}
	if m.Relay != nil && m.Relay.URL == "" {
		errs = append(errs, errors.New("relay.url is required"))
	}
	return errors.Join(errs...)
}
