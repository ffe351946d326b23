// Package app contains the core application logic. It wires the editor
// core together (state, dispatcher, handlers, observers, persistence,
// layout, idle timer and relay) from a loaded configuration and exposes the
// per-frame lifecycle, decoupled from any specific entrypoint like a CLI.
package app
