// Package config defines the format-agnostic configuration model of the
// editor core, along with the Loader interface format-specific readers
// implement.
//
// The config.Model is the single source of truth for the app package when
// it wires the dispatcher, observers, persistence, layout, idle timer, undo
// history and relay. Concrete loaders, such as the HCL one, live in separate
// packages and only translate into this model.
package config
