package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/script"
)

var _ script.Runner = (*App)(nil)

// Dispatch runs cmd. Commands that land in the undo history count as input
// activity for the idle timer.
func (a *App) Dispatch(ctx context.Context, cmd command.Command) error {
	if cmd.UndoLabel() != "" {
		a.NotifyInput()
	}
	return a.dispatcher.Dispatch(a.context(ctx), cmd)
}

// Update ends the current frame without advancing the idle timer.
func (a *App) Update(ctx context.Context) error {
	return a.dispatcher.Update(a.context(ctx))
}

// NotifyInput records input activity.
func (a *App) NotifyInput() { a.idle.Reset() }

// Tick ends the current frame and advances the idle timer by dt. When the
// timer fires and auto-processing is on, the graph is built in a frame of
// its own.
func (a *App) Tick(ctx context.Context, dt time.Duration) error {
	ctx = a.context(ctx)
	if err := a.dispatcher.Update(ctx); err != nil {
		return err
	}
	if !a.idle.Advance(dt) || !a.state.Tool().AutoProcess() {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Idle delay passed, building graph.", "delay", a.idle.Delay())
	if err := a.dispatcher.Dispatch(ctx, command.BuildAll{}); err != nil {
		return err
	}
	return a.dispatcher.Update(ctx)
}

// step dispatches cmd and closes its frame.
func (a *App) step(ctx context.Context, cmd command.Command) error {
	if err := a.Dispatch(ctx, cmd); err != nil {
		return err
	}
	return a.Update(ctx)
}

// LoadGraph shows the graph stored under assetKey.
func (a *App) LoadGraph(ctx context.Context, assetKey string, pushBreadcrumb bool) error {
	return a.step(ctx, command.LoadGraph{AssetKey: assetKey, PushBreadcrumb: pushBreadcrumb})
}

// Undo reverts the newest undo entry. It reports false when the history is
// empty.
func (a *App) Undo(ctx context.Context) (bool, error) {
	ctx = a.context(ctx)
	ok, err := a.dispatcher.Undo(ctx)
	if err != nil || !ok {
		return ok, err
	}
	return true, a.dispatcher.Update(ctx)
}

// Redo re-applies the newest undone entry.
func (a *App) Redo(ctx context.Context) (bool, error) {
	ctx = a.context(ctx)
	ok, err := a.dispatcher.Redo(ctx)
	if err != nil || !ok {
		return ok, err
	}
	return true, a.dispatcher.Update(ctx)
}

// Build compiles the shown graph and returns the stored outcome.
func (a *App) Build(ctx context.Context, opts build.Options) (build.Status, int, error) {
	if err := a.step(ctx, command.BuildAll{Options: opts}); err != nil {
		return build.StatusFailed, 0, err
	}
	tool := a.state.Tool()
	return tool.LastStatus(), tool.ErrorCount(), nil
}

// RunScript loads the graph scripts under paths and replays them into the
// shown graph.
func (a *App) RunScript(ctx context.Context, paths ...string) (*script.Result, error) {
	ctx = a.context(ctx)
	s, err := script.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	res, err := s.Run(ctx, a)
	if err != nil {
		return res, fmt.Errorf("failed to run script: %w", err)
	}
	return res, nil
}

// Run executes the configured scripts and, when asked, builds the result.
func (a *App) Run(ctx context.Context) (Summary, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.", "scripts", a.appConfig.ScriptPaths)

	if _, err := a.RunScript(ctx, a.appConfig.ScriptPaths...); err != nil {
		return a.Summary(), err
	}
	if a.appConfig.Build {
		status, errCount, err := a.Build(ctx, build.Options{})
		if err != nil {
			return a.Summary(), err
		}
		logger.Info("Graph built.", "status", status.String(), "errors", errCount)
	}

	logger.Debug("App.Run method finished.")
	return a.Summary(), nil
}
