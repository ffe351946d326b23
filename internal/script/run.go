package script

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/ctxlog"
	"github.com/specialistvlad/graphtools/internal/elementid"
	"github.com/specialistvlad/graphtools/internal/graph"
)

// Runner is what a script is replayed through.
type Runner interface {
	Dispatch(ctx context.Context, cmd command.Command) error
	// Update ends the current frame.
	Update(ctx context.Context) error
	// Graph returns the graph currently shown.
	Graph() *graph.Graph
}

// Result maps script names to the GUIDs of the elements they created.
type Result struct {
	Variables map[string]elementid.ID
	Nodes     map[string]elementid.ID
	Commands  int
}

type player struct {
	r   Runner
	res *Result
}

// step dispatches one command and closes its frame.
func (p *player) step(ctx context.Context, cmd command.Command) error {
	if err := p.r.Dispatch(ctx, cmd); err != nil {
		return err
	}
	p.res.Commands++
	return p.r.Update(ctx)
}

func nodeIDs(g *graph.Graph) *elementid.Set {
	set := elementid.NewSet()
	for _, n := range g.Nodes() {
		set.Add(n.GUID())
	}
	return set
}

func variableIDs(g *graph.Graph) *elementid.Set {
	set := elementid.NewSet()
	for _, v := range g.VariableDeclarations() {
		set.Add(v.GUID())
	}
	return set
}

// created returns the one id in after that is not in before.
func created(before, after *elementid.Set) (elementid.ID, bool) {
	for _, id := range after.IDs() {
		if !before.Contains(id) {
			return id, true
		}
	}
	return elementid.ID{}, false
}

// Run replays the script through r, one command per frame. On error the
// elements created so far stay in place and the partial result is returned
// along with the error.
func (s *Script) Run(ctx context.Context, r Runner) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	p := &player{r: r, res: &Result{
		Variables: make(map[string]elementid.ID, len(s.Variables)),
		Nodes:     make(map[string]elementid.ID, len(s.Nodes)),
	}}

	for _, v := range s.Variables {
		before := variableIDs(r.Graph())
		err := p.step(ctx, command.CreateVariableDeclaration{
			Name:      v.Name,
			Type:      v.Type,
			Modifiers: v.Modifiers,
			Default:   v.Default,
		})
		if err != nil {
			return p.res, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		id, ok := created(before, variableIDs(r.Graph()))
		if !ok {
			return p.res, fmt.Errorf("variable %q: declaration was not created", v.Name)
		}
		p.res.Variables[v.Name] = id
	}

	for _, n := range s.Nodes {
		if err := p.createNode(ctx, n); err != nil {
			return p.res, fmt.Errorf("node %q: %w", n.Name, err)
		}
	}

	for _, e := range s.Edges {
		err := p.step(ctx, command.CreateEdge{
			From:      graph.PortRef{NodeID: p.res.Nodes[e.From.Node], PortID: e.From.Port},
			To:        graph.PortRef{NodeID: p.res.Nodes[e.To.Node], PortID: e.To.Port},
			AutoAlign: e.AutoAlign,
		})
		if err != nil {
			return p.res, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	for _, note := range s.Notes {
		if err := p.step(ctx, command.CreateStickyNote{Title: note.Title, Contents: note.Contents, Rect: note.Rect}); err != nil {
			return p.res, fmt.Errorf("sticky note %q: %w", note.Title, err)
		}
	}
	for _, pm := range s.Placemats {
		if err := p.step(ctx, command.CreatePlacemat{Title: pm.Title, Rect: pm.Rect, Color: pm.Color}); err != nil {
			return p.res, fmt.Errorf("placemat %q: %w", pm.Title, err)
		}
	}

	logger.Info("Script applied.", "commands", p.res.Commands, "nodes", len(p.res.Nodes), "variables", len(p.res.Variables))
	return p.res, nil
}

func (p *player) createNode(ctx context.Context, n Node) error {
	spec := n.Spec
	if n.Variable != "" {
		id, ok := p.res.Variables[n.Variable]
		if !ok {
			decl, found := p.r.Graph().VariableDeclarationByName(n.Variable)
			if !found {
				return fmt.Errorf("unknown variable %q", n.Variable)
			}
			id = decl.GUID()
		}
		spec.DeclarationID = id
	}

	before := nodeIDs(p.r.Graph())
	if err := p.step(ctx, command.CreateNode{Spec: spec}); err != nil {
		return err
	}
	id, ok := created(before, nodeIDs(p.r.Graph()))
	if !ok {
		return fmt.Errorf("node was not created")
	}
	p.res.Nodes[n.Name] = id

	for _, c := range n.Constants {
		if err := p.step(ctx, command.SetPortConstant{Port: graph.PortRef{NodeID: id, PortID: c.Port}, Value: c.Value}); err != nil {
			return fmt.Errorf("constant %q: %w", c.Port, err)
		}
	}
	if n.Disabled {
		if err := p.step(ctx, command.SetNodeState{IDs: []elementid.ID{id}, State: graph.ModelStateDisabled}); err != nil {
			return err
		}
	}
	return nil
}
