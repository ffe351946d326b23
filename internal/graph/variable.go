package graph

import (
	"strings"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
)

// ModifierFlags describe how a variable may be used.
type ModifierFlags uint8

const (
	ModifierRead ModifierFlags = 1 << iota
	ModifierWrite
	ModifierExposed

	ModifierReadWrite = ModifierRead | ModifierWrite
)

// Has reports whether all bits of f are set.
func (m ModifierFlags) Has(f ModifierFlags) bool {
	return m&f == f
}

func (m ModifierFlags) String() string {
	var parts []string
	if m.Has(ModifierRead) {
		parts = append(parts, "read")
	}
	if m.Has(ModifierWrite) {
		parts = append(parts, "write")
	}
	if m.Has(ModifierExposed) {
		parts = append(parts, "exposed")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// VariableDeclaration is a named, typed slot. Variable and portal nodes
// reference it by GUID.
type VariableDeclaration struct {
	ElementBase

	name         string
	dataType     cty.Type
	modifiers    ModifierFlags
	defaultValue *Constant
	scopeID      elementid.ID
}

// Name returns the declaration's name, unique within the graph.
func (v *VariableDeclaration) Name() string { return v.name }

// Type returns the declared data type.
func (v *VariableDeclaration) Type() cty.Type { return v.dataType }

// Modifiers returns the usage flags.
func (v *VariableDeclaration) Modifiers() ModifierFlags { return v.modifiers }

// Default returns the initialization value, or nil.
func (v *VariableDeclaration) Default() *Constant { return v.defaultValue }

// ScopeID is elementid.Nil for graph-scope declarations and the group id for
// portal-group declarations.
func (v *VariableDeclaration) ScopeID() elementid.ID { return v.scopeID }

// SetModifiers changes the usage flags.
func (v *VariableDeclaration) SetModifiers(m ModifierFlags) {
	if v.modifiers == m {
		return
	}
	v.modifiers = m
	v.markChanged()
	if v.graph != nil {
		v.graph.changes.SetBlackboardChanged()
	}
}
