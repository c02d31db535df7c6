package problem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = "../../examples/platforms/problem.yaml"

func TestLoad_YAML(t *testing.T) {
	p, err := problem.Load(example)
	require.NoError(t, err)
	assert.Equal(t, "platforms", p.Name)
	assert.Equal(t, "tree", p.Backend)
	require.Len(t, p.Layers, 3)
	assert.Len(t, p.Layers[0].Nodes, 3)
	assert.Equal(t, "planner", p.Layers[0].Edges[1].From)
	assert.Equal(t, []any{"arm"}, p.Steps[0].Engines[0].Args["objects"].(map[string]any)["actuator"])
	assert.NoError(t, p.Validate())
}

func TestLoad_JSON(t *testing.T) {
	p, err := problem.Load("testdata/minimal.json")
	require.NoError(t, err)
	assert.Equal(t, "minimal", p.Name)
	assert.Len(t, p.Steps, 2)
}

func TestLoad_Errors(t *testing.T) {
	_, err := problem.Load("testdata/missing.yaml")
	assert.ErrorContains(t, err, "failed to read problem")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\nunknown: 1\n"), 0644))
	_, err = problem.Load(bad)
	assert.ErrorContains(t, err, "bad.yaml")

	_, err = problem.Parse(nil)
	assert.ErrorContains(t, err, "empty problem")
}

func TestValidate_Schema(t *testing.T) {
	p, err := problem.Parse([]byte(`
name: typed
layers:
  - name: functional
    params:
      platform: arm|x86
      watts: int
    nodes:
      - {name: a, type: component, params: {watts: 3}}
      - {name: b, type: component, params: {watts: hot}}
      - {name: c, type: component, params: {color: red}}
steps:
  - op: narrow
    layer: functional
    param: platform
    engines: [{kind: static}]
  - op: choose
    layer: functional
    param: cores
    engines: [{kind: first}]
`))
	require.NoError(t, err)

	err = p.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `node "b": param "watts": expected int`)
	assert.ErrorContains(t, err, `node "c": param "color": not declared`)
	assert.ErrorContains(t, err, `step 1: param "cores" not declared by layer "functional"`)
	assert.NotContains(t, err.Error(), `node "a"`)
	assert.NotContains(t, err.Error(), "step 0")

	_, err = problem.Parse([]byte("name: x\nlayers:\n  - name: l\n    params: {p: tensor}\n"))
	assert.ErrorContains(t, err, "unsupported type")
}

func TestValidate(t *testing.T) {
	p, err := problem.Parse([]byte(`
name: broken
layers:
  - name: functional
    nodes:
      - {name: x, type: component}
      - {name: x, type: component}
    edges:
      - {type: link, from: x, to: y}
  - name: functional
steps:
  - op: narrow
    layer: functional
    engines: []
  - op: translate
    layer: functional
    target: nowhere
    engines: [{kind: copy}]
  - op: jump
    layer: elsewhere
    engines: [{}]
`))
	require.NoError(t, err)

	err = p.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`node "x": declared twice`,
		`unknown node "y"`,
		`layer "functional": declared twice`,
		"narrow needs a param",
		"step 0: no engine",
		`unknown target layer "nowhere"`,
		`unknown layer "elsewhere"`,
		`unknown op "jump"`,
		"engine 0: missing kind",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestBuild_EngineErrors(t *testing.T) {
	p, err := problem.Parse([]byte(`
name: engines
layers:
  - name: functional
steps:
  - op: narrow
    layer: functional
    param: platform
    engines: [{kind: teleport}]
  - op: choose
    layer: functional
    param: platform
    engines: [{kind: first}, {kind: last}]
`))
	require.NoError(t, err)

	err = p.Build(archsynth.New(), engines.Default())
	require.Error(t, err)
	assert.ErrorContains(t, err, `step 0: unknown engine kind "teleport"`)
	assert.ErrorContains(t, err, "step 1: choose takes exactly one engine, got 2")
}

func TestBuild_Solve(t *testing.T) {
	p, err := problem.Load(example)
	require.NoError(t, err)

	for _, name := range []string{"linear", "topological", "tree"} {
		t.Run(name, func(t *testing.T) {
			backend, err := archsynth.ParseBackend(name)
			require.NoError(t, err)

			eng := archsynth.New(archsynth.WithName(p.Name))
			require.NoError(t, p.Build(eng, engines.Default()))

			res, err := eng.Execute(context.Background(), "", backend)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeSuccess, res.Report.Outcome)
			assert.Positive(t, res.Report.Stats.Rollbacks)

			functional := res.Report.Layers[0].Values
			for _, n := range []string{"sensor", "planner", "actuator"} {
				assert.Equal(t, "arm", functional[n]["platform"], n)
			}
			communication := res.Report.Layers[1].Values
			assert.Equal(t, "direct", communication["sensor-planner"]["mode"])
			assert.Equal(t, "proxy", communication["planner-actuator"]["mode"])

			component, ok := res.Snapshot.Layer("component")
			require.True(t, ok)
			assert.Len(t, component.Objects, 7)
		})
	}
}
