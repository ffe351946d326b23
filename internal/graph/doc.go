// Package graph provides the data model edited by the tool: nodes with typed
// ports, the edges connecting them, variable declarations, sticky notes and
// placemats, all owned by a single Graph.
//
// # Identity
//
// Every element carries a GUID (elementid.ID) unique within its graph. Ports
// are not elements: they are recreated each time their node's DefineNode
// runs, so nothing holds on to a *Port across mutations. Edges name their
// endpoints with PortRef values (node GUID + port id) and resolve the actual
// *Port through the graph on demand.
//
// # Change tracking
//
// Each structural mutation records what it touched in the graph's
// ChangeList. The dispatcher resets the list at the start of every command,
// so after a dispatch returns the list reflects exactly that command.
//
// # Stencil and listeners
//
// Domain-specific behavior (entry points, which edges drive layout
// dependencies, portal linkage, constant defaults) is delegated to the
// graph's Stencil. Layout bookkeeping subscribes to structural changes
// through the Listener interface; the model itself knows nothing about
// layout.
package graph
