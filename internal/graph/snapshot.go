package graph

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/zclconf/go-cty/cty"
)

// snapshotFormat is bumped whenever the document layout changes.
const snapshotFormat = 1

type graphDoc struct {
	Format      int             `json:"format"`
	AssetKey    string          `json:"asset_key"`
	Nodes       []nodeDoc       `json:"nodes"`
	Edges       []edgeDoc       `json:"edges"`
	StickyNotes []stickyNoteDoc `json:"sticky_notes,omitempty"`
	Placemats   []placematDoc   `json:"placemats,omitempty"`
	Variables   []variableDoc   `json:"variables,omitempty"`
}

type nodeDoc struct {
	ID          elementid.ID         `json:"id"`
	Title       string               `json:"title"`
	Kind        string               `json:"kind"`
	Position    Vector               `json:"position"`
	Size        Vector               `json:"size"`
	Disabled    bool                 `json:"disabled,omitempty"`
	Destroyed   bool                 `json:"destroyed,omitempty"`
	Declaration elementid.ID         `json:"declaration"`
	Definition  NodeDefinition       `json:"definition"`
	Constants   map[string]*Constant `json:"constants,omitempty"`
}

type edgeDoc struct {
	ID            elementid.ID   `json:"id"`
	From          PortRef        `json:"from"`
	To            PortRef        `json:"to"`
	ControlPoints []ControlPoint `json:"control_points,omitempty"`
	EditMode      bool           `json:"edit_mode,omitempty"`
	Label         string         `json:"label,omitempty"`
}

type stickyNoteDoc struct {
	ID       elementid.ID `json:"id"`
	Title    string       `json:"title"`
	Contents string       `json:"contents"`
	Rect     Rect         `json:"rect"`
}

type placematDoc struct {
	ID        elementid.ID `json:"id"`
	Title     string       `json:"title"`
	Rect      Rect         `json:"rect"`
	Color     string       `json:"color,omitempty"`
	Collapsed bool         `json:"collapsed,omitempty"`
}

type variableDoc struct {
	ID        elementid.ID  `json:"id"`
	Name      string        `json:"name"`
	Type      cty.Type      `json:"type"`
	Modifiers ModifierFlags `json:"modifiers"`
	Default   *Constant     `json:"default,omitempty"`
	Scope     elementid.ID  `json:"scope"`
}

// MarshalJSON writes the whole graph content, destroyed nodes included.
// The stencil and listeners are runtime wiring and are not part of it.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphDoc{
		Format:   snapshotFormat,
		AssetKey: g.assetKey,
		Nodes:    make([]nodeDoc, 0, len(g.nodes)),
		Edges:    make([]edgeDoc, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, nodeDoc{
			ID:          n.guid,
			Title:       n.title,
			Kind:        n.kind.String(),
			Position:    n.position,
			Size:        n.size,
			Disabled:    n.state == ModelStateDisabled,
			Destroyed:   n.destroyed,
			Declaration: n.declarationID,
			Definition:  n.definition,
			Constants:   n.constants,
		})
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, edgeDoc{
			ID:            e.guid,
			From:          e.from,
			To:            e.to,
			ControlPoints: e.controlPoints,
			EditMode:      e.editMode,
			Label:         e.label,
		})
	}
	for _, s := range g.stickyNotes {
		doc.StickyNotes = append(doc.StickyNotes, stickyNoteDoc{ID: s.guid, Title: s.title, Contents: s.contents, Rect: s.rect})
	}
	for _, p := range g.placemats {
		doc.Placemats = append(doc.Placemats, placematDoc{ID: p.guid, Title: p.title, Rect: p.rect, Color: p.color, Collapsed: p.collapsed})
	}
	for _, v := range g.variables {
		doc.Variables = append(doc.Variables, variableDoc{
			ID:        v.guid,
			Name:      v.name,
			Type:      v.dataType,
			Modifiers: v.modifiers,
			Default:   v.defaultValue,
			Scope:     v.scopeID,
		})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the graph content with a snapshot written by
// MarshalJSON. The stencil and listeners are kept; listeners receive
// GraphRestored once the content is relinked. The change list is flagged
// for a full rebuild.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode graph snapshot: %w", err)
	}
	if doc.Format != snapshotFormat {
		return fmt.Errorf("unsupported graph snapshot format %d", doc.Format)
	}
	if g.stencil == nil {
		g.stencil = BaseStencil{}
	}
	if g.changes == nil {
		g.changes = NewChangeList()
	}

	g.assetKey = doc.AssetKey
	g.nodes = make([]*Node, 0, len(doc.Nodes))
	g.edges = make([]*Edge, 0, len(doc.Edges))
	g.stickyNotes = nil
	g.placemats = nil
	g.variables = nil
	g.index = make(map[elementid.ID]Element, len(doc.Nodes)+len(doc.Edges))

	for _, nd := range doc.Nodes {
		kind, err := ParseNodeKind(nd.Kind)
		if err != nil {
			return fmt.Errorf("node %s: %w", nd.ID, err)
		}
		n := &Node{
			ElementBase:   ElementBase{guid: nd.ID, graph: g},
			title:         nd.Title,
			kind:          kind,
			position:      nd.Position,
			size:          nd.Size,
			destroyed:     nd.Destroyed,
			declarationID: nd.Declaration,
			definition:    nd.Definition,
			constants:     nd.Constants,
		}
		if nd.Disabled {
			n.state = ModelStateDisabled
		}
		if err := n.DefineNode(); err != nil {
			return fmt.Errorf("failed to restore node %s: %w", nd.ID, err)
		}
		g.nodes = append(g.nodes, n)
		g.index[n.guid] = n
	}
	for _, ed := range doc.Edges {
		e := &Edge{
			ElementBase:   ElementBase{guid: ed.ID, graph: g},
			from:          ed.From,
			to:            ed.To,
			controlPoints: ed.ControlPoints,
			editMode:      ed.EditMode,
			label:         ed.Label,
		}
		g.edges = append(g.edges, e)
		g.index[e.guid] = e
	}
	for _, sd := range doc.StickyNotes {
		s := &StickyNote{ElementBase: ElementBase{guid: sd.ID, graph: g}, title: sd.Title, contents: sd.Contents, rect: sd.Rect}
		g.stickyNotes = append(g.stickyNotes, s)
		g.index[s.guid] = s
	}
	for _, pd := range doc.Placemats {
		p := &Placemat{ElementBase: ElementBase{guid: pd.ID, graph: g}, title: pd.Title, rect: pd.Rect, color: pd.Color, collapsed: pd.Collapsed}
		g.placemats = append(g.placemats, p)
		g.index[p.guid] = p
	}
	for _, vd := range doc.Variables {
		v := &VariableDeclaration{
			ElementBase:  ElementBase{guid: vd.ID, graph: g},
			name:         vd.Name,
			dataType:     normalizeType(vd.Type),
			modifiers:    vd.Modifiers,
			defaultValue: vd.Default,
			scopeID:      vd.Scope,
		}
		g.variables = append(g.variables, v)
		g.index[v.guid] = v
	}

	g.changes.SetRequiresRebuild()
	for _, l := range g.listeners {
		l.GraphRestored(g)
	}
	return nil
}
