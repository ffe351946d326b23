package state

import (
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
)

// NameTracing is the component name of Tracing.
const NameTracing = "Tracing"

// Tracing is the debugger cursor.
type Tracing struct {
	Base
	enabled bool
	frame   int
	step    int
	target  elementid.ID
}

// NewTracing returns a disabled tracing state.
func NewTracing(viewKey elementid.ID) *Tracing {
	return &Tracing{Base: newBase(NameTracing, viewKey)}
}

func (t *Tracing) Enabled() bool        { return t.enabled }
func (t *Tracing) Frame() int           { return t.frame }
func (t *Tracing) Step() int            { return t.step }
func (t *Tracing) Target() elementid.ID { return t.target }

// TracingUpdater mutates a Tracing.
type TracingUpdater struct {
	scope
	t *Tracing
}

// Update opens an update scope.
func (t *Tracing) Update() *TracingUpdater {
	return &TracingUpdater{scope: scope{base: &t.Base}, t: t}
}

func (u *TracingUpdater) SetEnabled(on bool) {
	u.mustBeOpen()
	if u.t.enabled != on {
		u.t.enabled = on
		u.touch()
	}
}

func (u *TracingUpdater) SetFrame(frame int) {
	u.mustBeOpen()
	if u.t.frame != frame {
		u.t.frame = frame
		u.touch()
	}
}

func (u *TracingUpdater) SetStep(step int) {
	u.mustBeOpen()
	if u.t.step != step {
		u.t.step = step
		u.touch()
	}
}

// SetTarget moves the cursor to a node.
func (u *TracingUpdater) SetTarget(id elementid.ID) {
	u.mustBeOpen()
	if u.t.target != id {
		previous := u.t.target
		u.t.target = id
		u.touch(previous, id)
	}
}

type tracingDoc struct {
	Enabled bool   `cty:"enabled"`
	Frame   int    `cty:"frame"`
	Step    int    `cty:"step"`
	Target  string `cty:"target"`
}

var tracingType = cty.Object(map[string]cty.Type{
	"enabled": cty.Bool,
	"frame":   cty.Number,
	"step":    cty.Number,
	"target":  cty.String,
})

func (t *Tracing) Snapshot() ([]byte, error) {
	return marshalValueEnvelope(t.name, tracingType, tracingDoc{
		Enabled: t.enabled,
		Frame:   t.frame,
		Step:    t.step,
		Target:  t.target.String(),
	})
}

func (t *Tracing) Restore(data []byte) error {
	var doc tracingDoc
	if err := unmarshalValueEnvelope(t.name, data, tracingType, &doc); err != nil {
		return err
	}
	target, err := elementid.Parse(doc.Target)
	if err != nil {
		return fmt.Errorf("%s: bad target: %w", t.name, err)
	}
	u := t.Update()
	defer u.Close()
	u.ForceComplete()
	t.enabled, t.frame, t.step, t.target = doc.Enabled, doc.Frame, doc.Step, target
	return nil
}

func (t *Tracing) ValidateAfterDeserialize() error { return nil }
