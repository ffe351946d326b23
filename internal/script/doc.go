// Package script loads graph scripts and replays them through the command
// dispatcher.
//
// # Purpose
//
// A graph script is a set of HCL files describing variables, nodes with
// typed ports, edges between "node.port" references, sticky notes and
// placemats. Load parses and cross-checks the files into a Script; Run turns
// it into commands and dispatches them one per frame, the way an interactive
// session would, so undo history, observers and position dependencies all
// see a normal editing session.
//
// Port and variable types use HCL type constraint syntax (string, number,
// list(string), object({...}), any).
package script
