package state

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// UpdateType tells an observer how much work catching up with a component
// takes.
type UpdateType int

const (
	// UpdateNone means nothing changed since the version the observer saw.
	UpdateNone UpdateType = iota
	// UpdatePartial means the changesets cover every version since.
	UpdatePartial
	// UpdateComplete means the observer must rebuild from scratch.
	UpdateComplete
)

func (u UpdateType) String() string {
	switch u {
	case UpdateNone:
		return "none"
	case UpdatePartial:
		return "partial"
	case UpdateComplete:
		return "complete"
	default:
		return fmt.Sprintf("update_type(%d)", int(u))
	}
}

// Component is one independently versioned partition of the state.
type Component interface {
	Name() string
	Version() uint64
	ViewKey() elementid.ID
	UpdateType(since uint64) UpdateType
	ChangedSince(since uint64) []elementid.ID
	PurgeChangesets(upTo uint64)
	Snapshot() ([]byte, error)
	Restore(data []byte) error
	ValidateAfterDeserialize() error
}

type changeset struct {
	version uint64
	ids     []elementid.ID
}

// Base carries the bookkeeping shared by all components. Versions start at
// 1, so an observer that never saw a component (version 0) always gets a
// complete update.
type Base struct {
	name            string
	viewKey         elementid.ID
	version         uint64
	completeVersion uint64
	changesets      []changeset
}

func newBase(name string, viewKey elementid.ID) Base {
	return Base{name: name, viewKey: viewKey, version: 1, completeVersion: 1}
}

func (b *Base) Name() string          { return b.name }
func (b *Base) Version() uint64       { return b.version }
func (b *Base) ViewKey() elementid.ID { return b.viewKey }

// UpdateType classifies the gap between since and the current version.
func (b *Base) UpdateType(since uint64) UpdateType {
	if since >= b.version {
		return UpdateNone
	}
	if since < b.completeVersion {
		return UpdateComplete
	}
	if len(b.changesets) == 0 || b.changesets[0].version > since+1 {
		return UpdateComplete
	}
	return UpdatePartial
}

// ChangedSince returns the ids recorded by the changesets newer than since,
// deduplicated in first-seen order.
func (b *Base) ChangedSince(since uint64) []elementid.ID {
	var set elementid.Set
	for _, cs := range b.changesets {
		if cs.version <= since {
			continue
		}
		for _, id := range cs.ids {
			set.Add(id)
		}
	}
	return set.IDs()
}

// PurgeChangesets drops the changesets up to and including version upTo.
func (b *Base) PurgeChangesets(upTo uint64) {
	i := 0
	for i < len(b.changesets) && b.changesets[i].version <= upTo {
		i++
	}
	b.changesets = append([]changeset(nil), b.changesets[i:]...)
}

// continueFrom makes a freshly resolved instance newer than the one it
// replaces, so observers that saw the old instance notice the switch.
func (b *Base) continueFrom(previous uint64) {
	if b.version > previous {
		return
	}
	b.version = previous + 1
	b.completeVersion = b.version
	b.changesets = nil
}

func (b *Base) bump(complete bool, ids []elementid.ID) {
	b.version++
	if complete {
		b.completeVersion = b.version
		b.changesets = nil
		return
	}
	b.changesets = append(b.changesets, changeset{version: b.version, ids: ids})
}

// scope is embedded by every updater.
type scope struct {
	base     *Base
	mutated  bool
	complete bool
	closed   bool
	ids      elementid.Set
}

func (s *scope) touch(ids ...elementid.ID) {
	s.mutated = true
	for _, id := range ids {
		s.ids.Add(id)
	}
}

// ForceComplete makes observers rebuild from scratch after this update.
func (s *scope) ForceComplete() {
	s.mutated = true
	s.complete = true
}

// Close ends the update. The version moves by one when anything was
// mutated. Calling Close again does nothing.
func (s *scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if !s.mutated {
		return
	}
	s.base.bump(s.complete, s.ids.IDs())
}

func (s *scope) mustBeOpen() {
	if s.closed {
		panic(fmt.Sprintf("state: %s updater used after Close", s.base.name))
	}
}

// envelope wraps every serialized component.
type envelope struct {
	Format    int             `json:"format"`
	Component string          `json:"component"`
	Data      json.RawMessage `json:"data"`
}

const envelopeFormat = 1

func marshalEnvelope(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	return json.Marshal(envelope{Format: envelopeFormat, Component: name, Data: raw})
}

func unmarshalEnvelope(name string, raw []byte, dst any) error {
	data, err := envelopeData(name, raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func envelopeData(name string, raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if env.Format != envelopeFormat {
		return nil, fmt.Errorf("%s: unsupported format %d", name, env.Format)
	}
	if env.Component != name {
		return nil, fmt.Errorf("%s: snapshot belongs to %q", name, env.Component)
	}
	return env.Data, nil
}

// marshalValueEnvelope is marshalEnvelope for flat documents: doc is
// converted to a cty value of type ty and written with the cty JSON codec.
func marshalValueEnvelope(name string, ty cty.Type, doc any) ([]byte, error) {
	val, err := gocty.ToCtyValue(doc, ty)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", name, err)
	}
	raw, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	return json.Marshal(envelope{Format: envelopeFormat, Component: name, Data: raw})
}

func unmarshalValueEnvelope(name string, raw []byte, ty cty.Type, dst any) error {
	data, err := envelopeData(name, raw)
	if err != nil {
		return err
	}
	val, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if err := gocty.FromCtyValue(val, dst); err != nil {
		return fmt.Errorf("failed to convert %s: %w", name, err)
	}
	return nil
}
