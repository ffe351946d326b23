package state

import (
	"slices"

	"github.com/specialistvlad/graphtools/internal/elementid"
)

// NameWindow is the component name of Window.
const NameWindow = "Window"

// Window is the state of the view itself: which graph it shows and how the
// user got there.
type Window struct {
	Base
	assetKey    string
	breadcrumbs []string
}

// NewWindow returns a window showing nothing. Its view key is the view id.
func NewWindow(viewID elementid.ID) *Window {
	return &Window{Base: newBase(NameWindow, viewID)}
}

// AssetKey returns the key of the shown graph, or "".
func (w *Window) AssetKey() string { return w.assetKey }

// Breadcrumbs returns the asset keys visited before the current one.
func (w *Window) Breadcrumbs() []string { return slices.Clone(w.breadcrumbs) }

// WindowUpdater mutates a Window.
type WindowUpdater struct {
	scope
	w *Window
}

// Update opens an update scope.
func (w *Window) Update() *WindowUpdater {
	return &WindowUpdater{scope: scope{base: &w.Base}, w: w}
}

// SetAssetKey switches the shown graph.
func (u *WindowUpdater) SetAssetKey(key string) {
	u.mustBeOpen()
	if u.w.assetKey == key {
		return
	}
	u.w.assetKey = key
	u.ForceComplete()
}

// PushBreadcrumb appends key to the navigation history.
func (u *WindowUpdater) PushBreadcrumb(key string) {
	u.mustBeOpen()
	u.w.breadcrumbs = append(u.w.breadcrumbs, key)
	u.touch()
}

// TruncateBreadcrumbs keeps the first n entries.
func (u *WindowUpdater) TruncateBreadcrumbs(n int) {
	u.mustBeOpen()
	if n < 0 || n >= len(u.w.breadcrumbs) {
		return
	}
	u.w.breadcrumbs = u.w.breadcrumbs[:n]
	u.touch()
}

type windowDoc struct {
	AssetKey    string   `json:"asset_key"`
	Breadcrumbs []string `json:"breadcrumbs,omitempty"`
}

func (w *Window) Snapshot() ([]byte, error) {
	return marshalEnvelope(w.name, windowDoc{AssetKey: w.assetKey, Breadcrumbs: w.breadcrumbs})
}

func (w *Window) Restore(data []byte) error {
	var doc windowDoc
	if err := unmarshalEnvelope(w.name, data, &doc); err != nil {
		return err
	}
	u := w.Update()
	defer u.Close()
	u.ForceComplete()
	w.assetKey = doc.AssetKey
	w.breadcrumbs = doc.Breadcrumbs
	return nil
}

func (w *Window) ValidateAfterDeserialize() error { return nil }
