package build

import (
	"context"

	"github.com/specialistvlad/graphtools/internal/graph"
)

// Validator is a Translator that produces nothing and only checks that the
// graph could be compiled: the structure is intact and every single-capacity
// input is either connected or carries a non-null constant. Disabled nodes
// are skipped.
type Validator struct{}

var _ Translator = Validator{}

func (Validator) Translate(_ context.Context, g *graph.Graph, _ Options) (CompilationResult, error) {
	var result CompilationResult

	if err := g.CheckIntegrity(); err != nil {
		for _, e := range unwrapJoined(err) {
			result.Errors = append(result.Errors, CompilationError{Message: e.Error()})
		}
	}

	for _, n := range g.Nodes() {
		if n.State() == graph.ModelStateDisabled {
			continue
		}
		for _, p := range n.InputPorts() {
			if p.Capacity() != graph.CapacitySingle || p.IsConnected() {
				continue
			}
			if c := p.Constant(); c == nil || c.Value().IsNull() {
				result.Errors = append(result.Errors, CompilationError{
					Message: "input " + p.ID() + " is not connected and has no value",
					NodeID:  n.GUID(),
				})
			}
		}
	}

	if len(result.Errors) > 0 {
		result.Status = StatusFailed
	} else {
		result.Status = StatusSucceeded
	}
	return result, nil
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
