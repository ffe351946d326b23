package command

import (
	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// --- Graph structure ---

// CreateNode adds a node. AutoAlign flags it for the auto-align observer;
// Select replaces the selection with the new node.
type CreateNode struct {
	Spec      graph.NodeSpec
	AutoAlign bool
	Select    bool
}

func (CreateNode) Kind() Kind        { return KindCreateNode }
func (CreateNode) UndoLabel() string { return "Create Node" }

// DeleteElements deletes nodes, edges, sticky notes, placemats and
// variable declarations by GUID. Unknown GUIDs are skipped.
type DeleteElements struct {
	IDs               []elementid.ID
	DeleteConnections graph.DeleteConnections
}

func (DeleteElements) Kind() Kind        { return KindDeleteElements }
func (DeleteElements) UndoLabel() string { return "Delete Elements" }

// CreateEdge connects From (an output port) to To (an input port). Existing
// edges on a single-capacity end are replaced.
type CreateEdge struct {
	To        graph.PortRef
	From      graph.PortRef
	AutoAlign bool
}

func (CreateEdge) Kind() Kind        { return KindCreateEdge }
func (CreateEdge) UndoLabel() string { return "Create Edge" }

type DeleteEdges struct {
	IDs []elementid.ID
}

func (DeleteEdges) Kind() Kind        { return KindDeleteEdges }
func (DeleteEdges) UndoLabel() string { return "Delete Edges" }

type ReorderEdge struct {
	ID   elementid.ID
	Type graph.ReorderType
}

func (ReorderEdge) Kind() Kind        { return KindReorderEdge }
func (ReorderEdge) UndoLabel() string { return "Reorder Edge" }

type CreateStickyNote struct {
	Title    string
	Contents string
	Rect     graph.Rect
}

func (CreateStickyNote) Kind() Kind        { return KindCreateStickyNote }
func (CreateStickyNote) UndoLabel() string { return "Create Sticky Note" }

type CreatePlacemat struct {
	Title string
	Rect  graph.Rect
	Color string
}

func (CreatePlacemat) Kind() Kind        { return KindCreatePlacemat }
func (CreatePlacemat) UndoLabel() string { return "Create Placemat" }

// --- Variables ---

// CreateVariableDeclaration adds a declaration and expands it in the
// blackboard. A nil Default uses the stencil's constant for Type.
type CreateVariableDeclaration struct {
	Name      string
	Type      cty.Type
	Modifiers graph.ModifierFlags
	Default   *cty.Value
	Scope     elementid.ID
}

func (CreateVariableDeclaration) Kind() Kind { return KindCreateVariableDeclaration }
func (CreateVariableDeclaration) UndoLabel() string {
	return "Create Variable"
}

// ReorderVariableDeclaration moves ID right after InsertAfter, or to the
// front when InsertAfter is nil.
type ReorderVariableDeclaration struct {
	ID          elementid.ID
	InsertAfter elementid.ID
}

func (ReorderVariableDeclaration) Kind() Kind { return KindReorderVariableDeclaration }
func (ReorderVariableDeclaration) UndoLabel() string {
	return "Reorder Variable"
}

type DeleteVariableDeclarations struct {
	IDs          []elementid.ID
	DeleteUsages bool
}

func (DeleteVariableDeclarations) Kind() Kind { return KindDeleteVariableDeclarations }
func (DeleteVariableDeclarations) UndoLabel() string {
	return "Delete Variables"
}

// --- Layout and values ---

// MoveElements offsets nodes, sticky notes and placemats by Delta. Only
// the listed elements move; callers that want followers include them.
type MoveElements struct {
	IDs   []elementid.ID
	Delta graph.Vector
}

func (MoveElements) Kind() Kind        { return KindMoveElements }
func (MoveElements) UndoLabel() string { return "Move Elements" }

// AlignNodes lines up the nodes connected to IDs beside them. Follow
// propagates the resulting moves through the dependency graph.
type AlignNodes struct {
	IDs    []elementid.ID
	Follow bool
}

func (AlignNodes) Kind() Kind        { return KindAlignNodes }
func (AlignNodes) UndoLabel() string { return "Align Nodes" }

type SetNodeState struct {
	IDs   []elementid.ID
	State graph.ModelState
}

func (SetNodeState) Kind() Kind        { return KindSetNodeState }
func (SetNodeState) UndoLabel() string { return "Change Node State" }

type SetPortConstant struct {
	Port  graph.PortRef
	Value cty.Value
}

func (SetPortConstant) Kind() Kind        { return KindSetPortConstant }
func (SetPortConstant) UndoLabel() string { return "Change Constant" }

// DuplicateNodes copies nodes by Offset. Edges running between two copied
// nodes are copied too; the copies become the selection.
type DuplicateNodes struct {
	IDs    []elementid.ID
	Offset graph.Vector
}

func (DuplicateNodes) Kind() Kind        { return KindDuplicateNodes }
func (DuplicateNodes) UndoLabel() string { return "Duplicate Nodes" }

// --- Selection ---

// SelectMode says how SelectElements combines with the current selection.
type SelectMode int

const (
	SelectReplace SelectMode = iota
	SelectAdd
	SelectRemove
	SelectToggle
)

type SelectElements struct {
	IDs  []elementid.ID
	Mode SelectMode
}

func (SelectElements) Kind() Kind        { return KindSelectElements }
func (SelectElements) UndoLabel() string { return "" }

type ClearSelection struct{}

func (ClearSelection) Kind() Kind        { return KindClearSelection }
func (ClearSelection) UndoLabel() string { return "" }

// --- Tool ---

// LoadGraph switches the view to another graph asset. PushBreadcrumb keeps
// the current asset on the breadcrumb trail.
type LoadGraph struct {
	AssetKey       string
	PushBreadcrumb bool
}

func (LoadGraph) Kind() Kind        { return KindLoadGraph }
func (LoadGraph) UndoLabel() string { return "" }

// SetTracing updates the tracing component. Nil fields are left alone.
type SetTracing struct {
	Enabled *bool
	Frame   *int
	Step    *int
	Target  *elementid.ID
}

func (SetTracing) Kind() Kind        { return KindSetTracing }
func (SetTracing) UndoLabel() string { return "" }

type BuildAll struct {
	Options build.Options
}

func (BuildAll) Kind() Kind        { return KindBuildAll }
func (BuildAll) UndoLabel() string { return "" }

type SetAutoProcess struct {
	Enabled bool
}

func (SetAutoProcess) Kind() Kind        { return KindSetAutoProcess }
func (SetAutoProcess) UndoLabel() string { return "" }

// UndoRedo is dispatched after the undo host replayed a snapshot.
type UndoRedo struct {
	Redo bool
}

func (UndoRedo) Kind() Kind        { return KindUndoRedo }
func (UndoRedo) UndoLabel() string { return "" }
