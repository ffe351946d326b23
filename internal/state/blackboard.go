package state

import (
	"slices"

	"github.com/specialistvlad/graphtools/internal/elementid"
)

// NameBlackboard is the component name of Blackboard.
const NameBlackboard = "Blackboard"

// Blackboard is the presentation state of the variable list.
type Blackboard struct {
	Base
	expanded  elementid.Set
	collapsed map[string]bool
}

// NewBlackboard returns a blackboard with everything folded.
func NewBlackboard(viewKey elementid.ID) *Blackboard {
	return &Blackboard{Base: newBase(NameBlackboard, viewKey), collapsed: make(map[string]bool)}
}

// IsExpanded reports whether the declaration's details are shown.
func (b *Blackboard) IsExpanded(id elementid.ID) bool { return b.expanded.Contains(id) }

// ExpandedIDs returns the expanded declarations.
func (b *Blackboard) ExpandedIDs() []elementid.ID { return b.expanded.IDs() }

// IsSectionCollapsed reports whether a section is folded.
func (b *Blackboard) IsSectionCollapsed(section string) bool { return b.collapsed[section] }

// BlackboardUpdater mutates a Blackboard.
type BlackboardUpdater struct {
	scope
	b *Blackboard
}

// Update opens an update scope.
func (b *Blackboard) Update() *BlackboardUpdater {
	return &BlackboardUpdater{scope: scope{base: &b.Base}, b: b}
}

// SetExpanded shows or hides a declaration's details.
func (u *BlackboardUpdater) SetExpanded(id elementid.ID, expanded bool) {
	u.mustBeOpen()
	var changed bool
	if expanded {
		changed = u.b.expanded.Add(id)
	} else {
		changed = u.b.expanded.Remove(id)
	}
	if changed {
		u.touch(id)
	}
}

// SetSectionCollapsed folds or unfolds a section.
func (u *BlackboardUpdater) SetSectionCollapsed(section string, collapsed bool) {
	u.mustBeOpen()
	if u.b.collapsed[section] == collapsed {
		return
	}
	if collapsed {
		u.b.collapsed[section] = true
	} else {
		delete(u.b.collapsed, section)
	}
	u.touch()
}

type blackboardDoc struct {
	Expanded          []elementid.ID `json:"expanded,omitempty"`
	CollapsedSections []string       `json:"collapsed_sections,omitempty"`
}

func (b *Blackboard) Snapshot() ([]byte, error) {
	doc := blackboardDoc{Expanded: b.expanded.IDs()}
	for s := range b.collapsed {
		doc.CollapsedSections = append(doc.CollapsedSections, s)
	}
	slices.Sort(doc.CollapsedSections)
	return marshalEnvelope(b.name, doc)
}

func (b *Blackboard) Restore(data []byte) error {
	var doc blackboardDoc
	if err := unmarshalEnvelope(b.name, data, &doc); err != nil {
		return err
	}
	u := b.Update()
	defer u.Close()
	u.ForceComplete()
	b.expanded.Clear()
	for _, id := range doc.Expanded {
		b.expanded.Add(id)
	}
	b.collapsed = make(map[string]bool, len(doc.CollapsedSections))
	for _, s := range doc.CollapsedSections {
		b.collapsed[s] = true
	}
	return nil
}

func (b *Blackboard) ValidateAfterDeserialize() error {
	if b.collapsed == nil {
		b.collapsed = make(map[string]bool)
	}
	return nil
}
