package state

import "github.com/specialistvlad/graphtools/internal/elementid"

// NameSelection is the component name of Selection.
const NameSelection = "Selection"

// Selection is the ordered set of selected element ids.
type Selection struct {
	Base
	selected elementid.Set
}

// NewSelection returns an empty selection.
func NewSelection(viewKey elementid.ID) *Selection {
	return &Selection{Base: newBase(NameSelection, viewKey)}
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []elementid.ID { return s.selected.IDs() }

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id elementid.ID) bool { return s.selected.Contains(id) }

// Len returns the number of selected elements.
func (s *Selection) Len() int { return s.selected.Len() }

// SelectionUpdater mutates a Selection.
type SelectionUpdater struct {
	scope
	s *Selection
}

// Update opens an update scope.
func (s *Selection) Update() *SelectionUpdater {
	return &SelectionUpdater{scope: scope{base: &s.Base}, s: s}
}

// Select adds ids to the selection.
func (u *SelectionUpdater) Select(ids ...elementid.ID) {
	u.mustBeOpen()
	for _, id := range ids {
		if u.s.selected.Add(id) {
			u.touch(id)
		}
	}
}

// Deselect removes ids from the selection.
func (u *SelectionUpdater) Deselect(ids ...elementid.ID) {
	u.mustBeOpen()
	for _, id := range ids {
		if u.s.selected.Remove(id) {
			u.touch(id)
		}
	}
}

// Clear empties the selection.
func (u *SelectionUpdater) Clear() {
	u.Deselect(u.s.selected.IDs()...)
}

// Prune deselects every id keep rejects.
func (u *SelectionUpdater) Prune(keep func(elementid.ID) bool) {
	for _, id := range u.s.selected.IDs() {
		if !keep(id) {
			u.Deselect(id)
		}
	}
}

type selectionDoc struct {
	Selected []elementid.ID `json:"selected"`
}

func (s *Selection) Snapshot() ([]byte, error) {
	return marshalEnvelope(s.name, selectionDoc{Selected: s.selected.IDs()})
}

// Restore replaces the selection with a snapshot and forces a complete
// update.
func (s *Selection) Restore(data []byte) error {
	var doc selectionDoc
	if err := unmarshalEnvelope(s.name, data, &doc); err != nil {
		return err
	}
	u := s.Update()
	defer u.Close()
	u.ForceComplete()
	s.selected.Clear()
	for _, id := range doc.Selected {
		s.selected.Add(id)
	}
	return nil
}

// ValidateAfterDeserialize drops nil ids a damaged snapshot may carry.
func (s *Selection) ValidateAfterDeserialize() error {
	u := s.Update()
	defer u.Close()
	u.Prune(func(id elementid.ID) bool { return !id.IsNil() })
	return nil
}
