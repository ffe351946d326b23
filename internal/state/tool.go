package state

import (
	"fmt"

	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
)

// NameTool is the component name of Tool.
const NameTool = "Tool"

// RebuildType says how much of the presentation the last command asked to
// rebuild.
type RebuildType int

const (
	RebuildNone RebuildType = iota
	RebuildPartial
	RebuildFull
)

func (r RebuildType) String() string {
	switch r {
	case RebuildNone:
		return "none"
	case RebuildPartial:
		return "partial"
	case RebuildFull:
		return "full"
	default:
		return fmt.Sprintf("rebuild(%d)", int(r))
	}
}

// Tool is the tool-wide state: rebuild marker, last compilation outcome and
// auto-processing.
type Tool struct {
	Base
	lastRebuild RebuildType
	lastStatus  build.Status
	errorCount  int
	autoProcess bool
}

// NewTool returns the initial tool state.
func NewTool(viewKey elementid.ID) *Tool {
	return &Tool{Base: newBase(NameTool, viewKey)}
}

func (t *Tool) LastRebuildType() RebuildType { return t.lastRebuild }
func (t *Tool) LastStatus() build.Status     { return t.lastStatus }
func (t *Tool) ErrorCount() int              { return t.errorCount }
func (t *Tool) AutoProcess() bool            { return t.autoProcess }

// ToolUpdater mutates a Tool.
type ToolUpdater struct {
	scope
	t *Tool
}

// Update opens an update scope.
func (t *Tool) Update() *ToolUpdater {
	return &ToolUpdater{scope: scope{base: &t.Base}, t: t}
}

// ClearRebuildMarker resets the last rebuild type to none.
func (u *ToolUpdater) ClearRebuildMarker() {
	u.SetRebuild(RebuildNone)
}

// SetRebuild records how much the current command asks to rebuild.
func (u *ToolUpdater) SetRebuild(r RebuildType) {
	u.mustBeOpen()
	if u.t.lastRebuild != r {
		u.t.lastRebuild = r
		u.touch()
	}
}

// SetCompilation stores the outcome of a build.
func (u *ToolUpdater) SetCompilation(status build.Status, errorCount int) {
	u.mustBeOpen()
	if u.t.lastStatus != status || u.t.errorCount != errorCount {
		u.t.lastStatus = status
		u.t.errorCount = errorCount
		u.touch()
	}
}

// SetAutoProcess toggles building after the idle delay.
func (u *ToolUpdater) SetAutoProcess(on bool) {
	u.mustBeOpen()
	if u.t.autoProcess != on {
		u.t.autoProcess = on
		u.touch()
	}
}

type toolDoc struct {
	LastRebuild RebuildType  `cty:"last_rebuild"`
	LastStatus  build.Status `cty:"last_status"`
	ErrorCount  int          `cty:"error_count"`
	AutoProcess bool         `cty:"auto_process"`
}

var toolType = cty.Object(map[string]cty.Type{
	"last_rebuild": cty.Number,
	"last_status":  cty.Number,
	"error_count":  cty.Number,
	"auto_process": cty.Bool,
})

func (t *Tool) Snapshot() ([]byte, error) {
	return marshalValueEnvelope(t.name, toolType, toolDoc{
		LastRebuild: t.lastRebuild,
		LastStatus:  t.lastStatus,
		ErrorCount:  t.errorCount,
		AutoProcess: t.autoProcess,
	})
}

func (t *Tool) Restore(data []byte) error {
	var doc toolDoc
	if err := unmarshalValueEnvelope(t.name, data, toolType, &doc); err != nil {
		return err
	}
	u := t.Update()
	defer u.Close()
	u.ForceComplete()
	t.lastRebuild, t.lastStatus, t.errorCount, t.autoProcess = doc.LastRebuild, doc.LastStatus, doc.ErrorCount, doc.AutoProcess
	return nil
}

func (t *Tool) ValidateAfterDeserialize() error { return nil }
