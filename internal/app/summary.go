package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/graphtools/internal/build"
)

// Summary describes the shown graph and the last build.
type Summary struct {
	AssetKey    string
	Nodes       int
	Edges       int
	Variables   int
	StickyNotes int
	Placemats   int
	Integrity   error
	BuildStatus build.Status
	BuildErrors int
	UndoDepth   int
}

// Summary inspects the shown graph.
func (a *App) Summary() Summary {
	g := a.state.Graph()
	tool := a.state.Tool()
	return Summary{
		AssetKey:    a.state.Window().AssetKey(),
		Nodes:       len(g.Nodes()),
		Edges:       len(g.Edges()),
		Variables:   len(g.VariableDeclarations()),
		StickyNotes: len(g.StickyNotes()),
		Placemats:   len(g.Placemats()),
		Integrity:   g.CheckIntegrity(),
		BuildStatus: tool.LastStatus(),
		BuildErrors: tool.ErrorCount(),
		UndoDepth:   len(a.undo.Labels()),
	}
}

// WriteTo prints the summary as aligned "key: value" lines.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	asset := s.AssetKey
	if asset == "" {
		asset = "(unnamed)"
	}
	integrity := "ok"
	if s.Integrity != nil {
		integrity = strings.ReplaceAll(s.Integrity.Error(), "\n", "; ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "graph:        %s\n", asset)
	fmt.Fprintf(&b, "nodes:        %d\n", s.Nodes)
	fmt.Fprintf(&b, "edges:        %d\n", s.Edges)
	fmt.Fprintf(&b, "variables:    %d\n", s.Variables)
	fmt.Fprintf(&b, "sticky notes: %d\n", s.StickyNotes)
	fmt.Fprintf(&b, "placemats:    %d\n", s.Placemats)
	fmt.Fprintf(&b, "integrity:    %s\n", integrity)
	fmt.Fprintf(&b, "build:        %s (%d errors)\n", s.BuildStatus, s.BuildErrors)
	fmt.Fprintf(&b, "undo depth:   %d\n", s.UndoDepth)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ErrorBadge returns the compilation error count shown on the badge, or
// zero when the badge observer is disabled.
func (a *App) ErrorBadge() int {
	if a.badge == nil {
		return 0
	}
	return a.badge.Count()
}
