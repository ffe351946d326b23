/*
Package elementid provides the process-unique identifier carried by every
element of a graph: nodes, edges, variable declarations, sticky notes and
placemats, and the views that state is persisted for.

An ID is a 128-bit GUID. IDs are assigned at creation and never reused;
a cloned element receives a fresh ID so that it never aliases its source.
*/
package elementid
