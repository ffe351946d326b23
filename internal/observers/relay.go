package observers

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/observer"
	"github.com/specialistvlad/graphtools/internal/state"
)

// EventStateChanged is the event name relayed notifications are emitted
// under.
const EventStateChanged = "state_changed"

// Publisher sends an event to remote listeners.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Relay forwards a notification per changed component to a Publisher.
type Relay struct {
	pub        Publisher
	components []string
}

var _ observer.Observer = (*Relay)(nil)

// NewRelay relays changes of components. An empty list relays every
// component.
func NewRelay(pub Publisher, components ...string) *Relay {
	if len(components) == 0 {
		components = []string{
			state.NameWindow, state.NameGraphView, state.NameSelection,
			state.NameBlackboard, state.NameTracing, state.NameTool,
		}
	}
	return &Relay{pub: pub, components: components}
}

func (r *Relay) Name() string       { return "Relay" }
func (r *Relay) Observed() []string { return r.components }
func (r *Relay) Updated() []string  { return nil }

func (r *Relay) Observe(ctx context.Context, st *state.Container, obs observer.Observation) error {
	var errs []error
	for _, name := range r.components {
		kind := obs.UpdateType(name)
		if kind == state.UpdateNone {
			continue
		}
		c, ok := st.Component(name)
		if !ok {
			continue
		}
		payload := map[string]any{
			"view":      st.ViewID().String(),
			"component": name,
			"version":   c.Version(),
			"update":    kind.String(),
		}
		if kind == state.UpdatePartial {
			ids := obs.ChangedIDs(name)
			changed := make([]string, len(ids))
			for i, id := range ids {
				changed[i] = id.String()
			}
			payload["changed"] = changed
		}
		if err := r.pub.Publish(ctx, EventStateChanged, payload); err != nil {
			errs = append(errs, fmt.Errorf("failed to relay %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
