package runtime_test

import (
	"testing"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/internal/runtime"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/registry"
	"github.com/stretchr/testify/require"
)

// fixture builds a registry with the given layers and steps.
type fixture struct {
	reg    *registry.Registry
	layers map[string]*layer.Layer
}

func newFixture(t *testing.T, layers ...string) *fixture {
	t.Helper()
	f := &fixture{reg: registry.New(), layers: make(map[string]*layer.Layer)}
	for _, name := range layers {
		l, err := f.reg.AddLayer(name)
		require.NoError(t, err)
		f.layers[name] = l
	}
	return f
}

func (f *fixture) node(layerName, name string) graph.ID {
	return f.layers[layerName].Graph().AddNode("component", name, nil)
}

func (f *fixture) steps(t *testing.T, steps ...*pipeline.Step) {
	t.Helper()
	for _, s := range steps {
		require.NoError(t, f.reg.AddStep(s))
	}
}

func (f *fixture) controller(t *testing.T, kind decision.Kind, opts ...runtime.Option) *runtime.Controller {
	t.Helper()
	c, err := runtime.New(f.reg, kind, opts...)
	require.NoError(t, err)
	return c
}

func (f *fixture) value(layerName string, id graph.ID, param string) any {
	v, _ := f.layers[layerName].Value(id, param)
	return v
}
