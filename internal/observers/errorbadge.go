package observers

import (
	"context"

	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/observer"
	"github.com/specialistvlad/graphtools/internal/state"
)

// ErrorBadge logs whenever the number of compilation errors changes.
type ErrorBadge struct {
	last int
}

var _ observer.Observer = (*ErrorBadge)(nil)

func NewErrorBadge() *ErrorBadge { return &ErrorBadge{} }

func (b *ErrorBadge) Name() string       { return "ErrorBadge" }
func (b *ErrorBadge) Observed() []string { return []string{state.NameTool} }
func (b *ErrorBadge) Updated() []string  { return nil }

// Count returns the error count seen last.
func (b *ErrorBadge) Count() int { return b.last }

func (b *ErrorBadge) Observe(ctx context.Context, st *state.Container, _ observer.Observation) error {
	tool := st.Tool()
	if tool.ErrorCount() == b.last {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	if tool.ErrorCount() > 0 {
		logger.Warn("Compilation errors changed.", "errors", tool.ErrorCount(), "previous", b.last, "status", tool.LastStatus().String())
	} else {
		logger.Info("Compilation errors cleared.", "previous", b.last)
	}
	b.last = tool.ErrorCount()
	return nil
}
