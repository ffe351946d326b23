package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/graphtools/internal/app"
	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/command"
	"github.com/specialistvlad/graphtools/internal/graph"
	"github.com/specialistvlad/graphtools/internal/hcl_adapter"
	"github.com/specialistvlad/graphtools/internal/state"
	"github.com/specialistvlad/graphtools/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipeline = `
node "a" {
  position = [0, 0]
  output "out" { type = number }
}

node "b" {
  position = [500, 300]
  input "in" { type = number }
}

edge {
  from       = "a.out"
  to         = "b.in"
  auto_align = true
}

placemat "Group" {
  rect = [-10, -10, 300, 120]
}
`

func nodeByTitle(t *testing.T, g *graph.Graph, title string) *graph.Node {
	t.Helper()
	for _, n := range g.Nodes() {
		if n.Title() == title {
			return n
		}
	}
	t.Fatalf("node %q not found", title)
	return nil
}

func TestRun_ScriptAndSummary(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"graph/pipeline.hcl": pipeline})
	a, logs := app.SetupAppTest(t, &app.Config{
		ScriptPaths: []string{filepath.Join(root, "graph")},
		AssetKey:    "pipeline",
		Build:       true,
	})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "pipeline", summary.AssetKey)
	assert.Equal(t, 2, summary.Nodes)
	assert.Equal(t, 1, summary.Edges)
	assert.Equal(t, 1, summary.Placemats)
	assert.NoError(t, summary.Integrity)
	assert.Equal(t, build.StatusSucceeded, summary.BuildStatus)
	assert.Equal(t, 4, summary.UndoDepth)
	assert.Equal(t, 1, logs.Count("Script applied."))

	var out strings.Builder
	_, err = summary.WriteTo(&out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "graph:        pipeline\n")
	assert.Contains(t, out.String(), "build:        succeeded (0 errors)\n")
}

func TestAutoAlign_AfterEdgeCreation(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"pipeline.hcl": pipeline})
	a, _ := app.SetupAppTest(t, &app.Config{})

	_, err := a.RunScript(context.Background(), root)
	require.NoError(t, err)

	b := nodeByTitle(t, a.Graph(), "b")
	assert.Equal(t, graph.Vector{X: 140, Y: 0}, b.Position())
}

func TestUndoRedo(t *testing.T) {
	ctx := context.Background()
	root := testutil.WriteFiles(t, map[string]string{"pipeline.hcl": pipeline})
	a, _ := app.SetupAppTest(t, &app.Config{})
	_, err := a.RunScript(ctx, root)
	require.NoError(t, err)
	require.Len(t, a.Graph().Placemats(), 1)

	ok, err := a.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, a.Graph().Placemats())

	ok, err = a.Redo(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, a.Graph().Placemats(), 1)

	ok, err = a.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTick_AutoProcessAfterIdleDelay(t *testing.T) {
	ctx := context.Background()
	a, logs := app.SetupAppTest(t, &app.Config{})

	require.NoError(t, a.Dispatch(ctx, command.SetAutoProcess{Enabled: true}))
	require.NoError(t, a.Tick(ctx, 0))
	assert.False(t, a.Idle().Armed(), "transient commands are not input")

	require.NoError(t, a.Dispatch(ctx, command.CreateNode{Spec: graph.NodeSpec{Title: "n"}}))
	require.NoError(t, a.Tick(ctx, 100*time.Millisecond))
	assert.Equal(t, build.StatusUnknown, a.State().Tool().LastStatus())

	require.NoError(t, a.Tick(ctx, 400*time.Millisecond))
	assert.Equal(t, build.StatusSucceeded, a.State().Tool().LastStatus())
	assert.Equal(t, 1, logs.Count("Idle delay passed, building graph."))

	require.NoError(t, a.Tick(ctx, time.Second))
	assert.Equal(t, 1, logs.Count("Idle delay passed, building graph."))
}

func TestTick_NoBuildWithoutAutoProcess(t *testing.T) {
	ctx := context.Background()
	a, logs := app.SetupAppTest(t, &app.Config{})

	a.NotifyInput()
	require.NoError(t, a.Tick(ctx, time.Second))
	assert.Zero(t, logs.Count("Idle delay passed"))
	assert.Equal(t, build.StatusUnknown, a.State().Tool().LastStatus())
}

func TestPersistence_AcrossSessions(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			path := filepath.Join(dir, "cache")
			if backend == "sqlite" {
				path = filepath.Join(dir, "state.db")
			}
			cfgDir := testutil.WriteFiles(t, map[string]string{
				"editor.hcl": `
persistence {
  backend = "` + backend + `"
  path    = "` + filepath.ToSlash(path) + `"
}
`,
			})
			scripts := testutil.WriteFiles(t, map[string]string{"pipeline.hcl": pipeline})

			first, err := app.NewApp(ctx, &testutil.SafeBuffer{}, &app.Config{
				ConfigPaths: []string{cfgDir},
				AssetKey:    "pipeline",
			}, hcl_adapter.NewLoader())
			require.NoError(t, err)
			_, err = first.RunScript(ctx, scripts)
			require.NoError(t, err)
			require.NoError(t, first.Close(ctx))

			second, _ := app.SetupAppTest(t, &app.Config{
				ConfigPaths: []string{cfgDir},
				AssetKey:    "pipeline",
			})
			g := second.Graph()
			assert.Len(t, g.Nodes(), 2)
			assert.Len(t, g.Edges(), 1)
			require.NoError(t, g.CheckIntegrity())
			assert.Empty(t, second.UndoLabels(), "undo history does not outlive a session")
			assert.NotNil(t, second.Layout())
		})
	}
}

func TestLoadGraph_SwitchesGraphs(t *testing.T) {
	ctx := context.Background()
	root := testutil.WriteFiles(t, map[string]string{"pipeline.hcl": pipeline})
	a, _ := app.SetupAppTest(t, &app.Config{AssetKey: "first"})
	_, err := a.RunScript(ctx, root)
	require.NoError(t, err)
	firstLayout := a.Layout()

	require.NoError(t, a.LoadGraph(ctx, "second", true))
	assert.Empty(t, a.Graph().Nodes())
	assert.Empty(t, a.UndoLabels())
	assert.Equal(t, []string{"first"}, a.State().Window().Breadcrumbs())
	assert.NotSame(t, firstLayout, a.Layout())
	assert.Same(t, a.Graph(), a.Layout().Graph())

	require.NoError(t, a.LoadGraph(ctx, "first", false))
	assert.Len(t, a.Graph().Nodes(), 2)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(map[string]any))
	return nil
}

func (p *recordingPublisher) components() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e["component"].(string))
	}
	return out
}

func TestRelay_PublishesStateChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cfgDir := testutil.WriteFiles(t, map[string]string{
		"relay.hcl": `
relay {
  url        = "http://127.0.0.1:1"
  components = ["Selection"]
}
`,
	})
	a, _ := app.SetupAppTest(t, &app.Config{ConfigPaths: []string{cfgDir}}, app.WithPublisher(pub))

	require.NoError(t, a.Dispatch(ctx, command.CreateNode{Spec: graph.NodeSpec{Title: "n"}, Select: true}))
	require.NoError(t, a.Update(ctx))

	assert.Equal(t, []string{state.NameSelection}, pub.components())
}

func TestErrorBadge_FollowsFailedBuilds(t *testing.T) {
	ctx := context.Background()
	failing := build.TranslatorFunc(func(context.Context, *graph.Graph, build.Options) (build.CompilationResult, error) {
		return build.CompilationResult{}, errors.New("backend unavailable")
	})
	a, _ := app.SetupAppTest(t, &app.Config{}, app.WithTranslator(failing))

	status, count, err := a.Build(ctx, build.Options{})
	require.NoError(t, err)
	assert.Equal(t, build.StatusFailed, status)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, a.ErrorBadge())
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"invalid config", `log { level = "chatty" }`, "failed to load configuration"},
		{"unreachable relay", `relay {
  url             = "http://127.0.0.1:1"
  connect_timeout = "200ms"
}`, "failed to connect relay"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfgDir := testutil.WriteFiles(t, map[string]string{"c.hcl": tc.config})
			_, err := app.NewApp(context.Background(), &testutil.SafeBuffer{},
				&app.Config{ConfigPaths: []string{cfgDir}}, hcl_adapter.NewLoader())
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestNewConfig(t *testing.T) {
	_, err := app.NewConfig(app.Config{})
	assert.Error(t, err)

	_, err = app.NewConfig(app.Config{ScriptPaths: []string{"x"}, ViewID: "not-a-uuid"})
	assert.Error(t, err)

	cfg, err := app.NewConfig(app.Config{ScriptPaths: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cfg.ScriptPaths)
}
