package hcl_adapter

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/graphtools/internal/config"
)

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Every attribute is optional so that files only override what they
// set.
type fileRoot struct {
	Log         *logBlock         `hcl:"log,block"`
	Dispatch    *dispatchBlock    `hcl:"dispatch,block"`
	Observers   *observersBlock   `hcl:"observers,block"`
	Persistence *persistenceBlock `hcl:"persistence,block"`
	Layout      *layoutBlock      `hcl:"layout,block"`
	Idle        *idleBlock        `hcl:"idle,block"`
	Undo        *undoBlock        `hcl:"undo,block"`
	Relay       *relayBlock       `hcl:"relay,block"`
	Remain      hcl.Body          `hcl:",remain"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type dispatchBlock struct {
	Recursive       *string `hcl:"recursive,optional"`
	Multiple        *string `hcl:"multiple,optional"`
	RollbackOnError *bool   `hcl:"rollback_on_error,optional"`
}

type observersBlock struct {
	MaxPasses       *int  `hcl:"max_passes,optional"`
	AutoAlign       *bool `hcl:"auto_align,optional"`
	AutoAlignFollow *bool `hcl:"auto_align_follow,optional"`
	ErrorBadge      *bool `hcl:"error_badge,optional"`
}

type persistenceBlock struct {
	Backend *string `hcl:"backend,optional"`
	Path    *string `hcl:"path,optional"`
}

type layoutBlock struct {
	HorizontalGap   *float64 `hcl:"horizontal_gap,optional"`
	HeaderHeight    *float64 `hcl:"header_height,optional"`
	PortSpacing     *float64 `hcl:"port_spacing,optional"`
	LogDependencies *bool    `hcl:"log_dependencies,optional"`
}

type idleBlock struct {
	Delay       *string `hcl:"delay,optional"`
	AutoProcess *bool   `hcl:"auto_process,optional"`
}

type undoBlock struct {
	MaxDepth *int `hcl:"max_depth,optional"`
}

type relayBlock struct {
	URL                string   `hcl:"url"`
	Namespace          *string  `hcl:"namespace,optional"`
	InsecureSkipVerify *bool    `hcl:"insecure_skip_verify,optional"`
	ConnectTimeout     *string  `hcl:"connect_timeout,optional"`
	Components         []string `hcl:"components,optional"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(field string, dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}

// mergeInto overlays the attributes set in root onto m.
func (root *fileRoot) mergeInto(m *config.Model) error {
	if b := root.Log; b != nil {
		set(&m.Log.Level, b.Level)
		set(&m.Log.Format, b.Format)
	}
	if b := root.Dispatch; b != nil {
		set(&m.Dispatch.Recursive, b.Recursive)
		set(&m.Dispatch.Multiple, b.Multiple)
		set(&m.Dispatch.RollbackOnError, b.RollbackOnError)
	}
	if b := root.Observers; b != nil {
		set(&m.Observers.MaxPasses, b.MaxPasses)
		set(&m.Observers.AutoAlign, b.AutoAlign)
		set(&m.Observers.AutoAlignFollow, b.AutoAlignFollow)
		set(&m.Observers.ErrorBadge, b.ErrorBadge)
	}
	if b := root.Persistence; b != nil {
		set(&m.Persistence.Backend, b.Backend)
		set(&m.Persistence.Path, b.Path)
	}
	if b := root.Layout; b != nil {
		set(&m.Layout.HorizontalGap, b.HorizontalGap)
		set(&m.Layout.HeaderHeight, b.HeaderHeight)
		set(&m.Layout.PortSpacing, b.PortSpacing)
		set(&m.Layout.LogDependencies, b.LogDependencies)
	}
	if b := root.Idle; b != nil {
		if err := setDuration("idle.delay", &m.Idle.Delay, b.Delay); err != nil {
			return err
		}
		set(&m.Idle.AutoProcess, b.AutoProcess)
	}
	if b := root.Undo; b != nil {
		set(&m.Undo.MaxDepth, b.MaxDepth)
	}
	if b := root.Relay; b != nil {
		r := m.Relay
		if r == nil {
			r = &config.Relay{Namespace: "/"}
		}
		r.URL = b.URL
		set(&r.Namespace, b.Namespace)
		set(&r.InsecureSkipVerify, b.InsecureSkipVerify)
		if err := setDuration("relay.connect_timeout", &r.ConnectTimeout, b.ConnectTimeout); err != nil {
			return err
		}
		if b.Components != nil {
			r.Components = b.Components
		}
		m.Relay = r
	}
	return nil
}
