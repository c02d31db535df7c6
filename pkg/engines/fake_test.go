package engines_test

import (
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// fakeView serves engine reads from plain maps.
type fakeView struct {
	layer  string
	graphs map[string]*graph.Graph
	values map[graph.ID]map[string]any
	assoc  map[graph.ID][]graph.ID
}

func newView(layer string) *fakeView {
	return &fakeView{
		layer:  layer,
		graphs: map[string]*graph.Graph{layer: graph.New()},
		values: make(map[graph.ID]map[string]any),
		assoc:  make(map[graph.ID][]graph.ID),
	}
}

func (f *fakeView) set(id graph.ID, param string, v any) {
	if f.values[id] == nil {
		f.values[id] = make(map[string]any)
	}
	f.values[id][param] = v
}

func (f *fakeView) g() *graph.Graph { return f.graphs[f.layer] }

func (f *fakeView) Layer() string { return f.layer }

func (f *fakeView) Object(layer string, id graph.ID) (*graph.Object, bool) {
	g, ok := f.graphs[layer]
	if !ok {
		return nil, false
	}
	return g.Get(id)
}

func (f *fakeView) Nodes(layer string) []graph.ID { return f.graphs[layer].Nodes() }
func (f *fakeView) Edges(layer string) []graph.ID { return f.graphs[layer].Edges() }

func (f *fakeView) Candidates(string, graph.ID, string) domain.Set { return domain.Set{} }

func (f *fakeView) Value(_ string, id graph.ID, param string) (any, bool) {
	v, ok := f.values[id][param]
	return v, ok
}

func (f *fakeView) Associated(_ string, id graph.ID, _ string) []graph.ID { return f.assoc[id] }
