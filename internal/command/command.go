// Package command defines the closed set of commands the dispatcher
// accepts. A command is a plain value describing an intent; the code that
// carries it out lives in package handlers.
package command

import "fmt"

// Kind identifies a command type. The set is closed: every kind has a
// constant below and a handler is expected for each.
type Kind int

const (
	KindCreateNode Kind = iota + 1
	KindDeleteElements
	KindCreateEdge
	KindDeleteEdges
	KindReorderEdge
	KindCreateStickyNote
	KindCreatePlacemat
	KindCreateVariableDeclaration
	KindReorderVariableDeclaration
	KindDeleteVariableDeclarations
	KindMoveElements
	KindAlignNodes
	KindSetNodeState
	KindSetPortConstant
	KindDuplicateNodes
	KindSelectElements
	KindClearSelection
	KindLoadGraph
	KindSetTracing
	KindBuildAll
	KindSetAutoProcess
	KindUndoRedo

	kindEnd
)

var kindNames = map[Kind]string{
	KindCreateNode:                 "CreateNode",
	KindDeleteElements:             "DeleteElements",
	KindCreateEdge:                 "CreateEdge",
	KindDeleteEdges:                "DeleteEdges",
	KindReorderEdge:                "ReorderEdge",
	KindCreateStickyNote:           "CreateStickyNote",
	KindCreatePlacemat:             "CreatePlacemat",
	KindCreateVariableDeclaration:  "CreateVariableDeclaration",
	KindReorderVariableDeclaration: "ReorderVariableDeclaration",
	KindDeleteVariableDeclarations: "DeleteVariableDeclarations",
	KindMoveElements:               "MoveElements",
	KindAlignNodes:                 "AlignNodes",
	KindSetNodeState:               "SetNodeState",
	KindSetPortConstant:            "SetPortConstant",
	KindDuplicateNodes:             "DuplicateNodes",
	KindSelectElements:             "SelectElements",
	KindClearSelection:             "ClearSelection",
	KindLoadGraph:                  "LoadGraph",
	KindSetTracing:                 "SetTracing",
	KindBuildAll:                   "BuildAll",
	KindSetAutoProcess:             "SetAutoProcess",
	KindUndoRedo:                   "UndoRedo",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, int(kindEnd)-1)
	for k := KindCreateNode; k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// Command is implemented by every command struct.
type Command interface {
	Kind() Kind
	// UndoLabel names the undo entry the command creates. An empty label
	// means the command is not undoable.
	UndoLabel() string
}
