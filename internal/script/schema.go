package script

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a script file may hold.
type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Edges     []*edgeBlock     `hcl:"edge,block"`
	Notes     []*noteBlock     `hcl:"sticky_note,block"`
	Placemats []*placematBlock `hcl:"placemat,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type variableBlock struct {
	Name      string         `hcl:"name,label"`
	Type      hcl.Expression `hcl:"type,optional"`
	Default   hcl.Expression `hcl:"default,optional"`
	Modifiers []string       `hcl:"modifiers,optional"`
}

type nodeBlock struct {
	Name     string       `hcl:"name,label"`
	Title    *string      `hcl:"title,optional"`
	Kind     *string      `hcl:"kind,optional"`
	Variable *string      `hcl:"variable,optional"`
	Position []float64    `hcl:"position,optional"`
	Size     []float64    `hcl:"size,optional"`
	Disabled bool         `hcl:"disabled,optional"`
	Inputs   []*portBlock `hcl:"input,block"`
	Outputs  []*portBlock `hcl:"output,block"`
}

type portBlock struct {
	ID       string         `hcl:"id,label"`
	Title    *string        `hcl:"title,optional"`
	Type     hcl.Expression `hcl:"type,optional"`
	Multi    *bool          `hcl:"multi,optional"`
	Constant hcl.Expression `hcl:"constant,optional"`
}

type edgeBlock struct {
	From      string `hcl:"from"`
	To        string `hcl:"to"`
	AutoAlign bool   `hcl:"auto_align,optional"`
}

type noteBlock struct {
	Title    string    `hcl:"title,label"`
	Contents string    `hcl:"contents,optional"`
	Rect     []float64 `hcl:"rect,optional"`
}

type placematBlock struct {
	Title string    `hcl:"title,label"`
	Rect  []float64 `hcl:"rect,optional"`
	Color string    `hcl:"color,optional"`
}
