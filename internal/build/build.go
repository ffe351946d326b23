// Package build runs a Translator over a graph and turns every failure mode,
// panics included, into a CompilationResult.
package build

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// Status is the outcome of a compilation.
type Status int

const (
	StatusUnknown Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tune a translation.
type Options struct {
	// Tracing asks the translator to emit tracing hooks.
	Tracing bool
}

// CompilationError is one problem reported by a translator. NodeID is Nil
// when the problem is not tied to a node.
type CompilationError struct {
	Message string
	NodeID  elementid.ID
}

func (e CompilationError) Error() string {
	if e.NodeID.IsNil() {
		return e.Message
	}
	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}

// CompilationResult is what a translation produced.
type CompilationResult struct {
	Status Status
	Errors []CompilationError
}

// Translator compiles a graph into something executable.
type Translator interface {
	Translate(ctx context.Context, g *graph.Graph, opts Options) (CompilationResult, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, g *graph.Graph, opts Options) (CompilationResult, error)

func (f TranslatorFunc) Translate(ctx context.Context, g *graph.Graph, opts Options) (CompilationResult, error) {
	return f(ctx, g, opts)
}

// Compile runs t over g. A returned error or a panic becomes a failed result
// carrying the message; neither escapes.
func Compile(ctx context.Context, t Translator, g *graph.Graph, opts Options) (result CompilationResult) {
	logger := ctxlog.FromContext(ctx).With("asset", g.AssetKey())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Translator panicked.", "panic", r, "stack", string(debug.Stack()))
			result = CompilationResult{
				Status: StatusFailed,
				Errors: []CompilationError{{Message: fmt.Sprintf("translator panicked: %v", r)}},
			}
		}
	}()

	logger.Debug("Compiling graph.", "tracing", opts.Tracing)
	result, err := t.Translate(ctx, g, opts)
	if err != nil {
		logger.Error("Translator failed.", "error", err)
		result.Status = StatusFailed
		result.Errors = append(result.Errors, CompilationError{Message: err.Error()})
		return result
	}
	if len(result.Errors) > 0 {
		result.Status = StatusFailed
	} else if result.Status == StatusUnknown {
		result.Status = StatusSucceeded
	}
	logger.Debug("Compilation finished.", "status", result.Status.String(), "errors", len(result.Errors))
	return result
}
