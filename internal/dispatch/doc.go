// Package dispatch is the single entry point for state changes.
//
// Callers never mutate state components directly. They build a command
// value and hand it to Dispatcher.Dispatch, which looks up the handler
// registered for the command's kind, records an undo entry when the
// command is undoable and runs the handler. Once per host frame the host
// calls Dispatcher.Update, which lets observers catch up with what the
// frame's commands changed, notifies subscribers and purges changesets no
// observer needs anymore.
//
// Handlers are registered once at startup through the generic Register
// function. The table is then checked with Validate, which reports every
// command kind nobody handles, the same parity check the configuration
// registry does between manifests and Go code.
package dispatch
