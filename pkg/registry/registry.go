package registry

import (
	"errors"
	"fmt"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
)

// Ref identifies an object of a layer.
type Ref struct {
	Layer string
	ID    graph.ID
}

// Registry owns the layers and the steps of one search. It is created per
// run and not shared.
type Registry struct {
	layers []*layer.Layer
	index  map[string]int
	steps  []*pipeline.Step
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// AddLayer appends a layer. Layer order is the transformation order.
func (r *Registry) AddLayer(name string) (*layer.Layer, error) {
	if name == "" {
		return nil, errors.New("layer name is empty")
	}
	if _, ok := r.index[name]; ok {
		return nil, fmt.Errorf("layer %q already exists", name)
	}
	l := layer.New(name)
	r.index[name] = len(r.layers)
	r.layers = append(r.layers, l)
	return l, nil
}

// Layer looks a layer up by name.
func (r *Registry) Layer(name string) (*layer.Layer, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.layers[i], true
}

// Layers returns the layers in order.
func (r *Registry) Layers() []*layer.Layer { return append([]*layer.Layer(nil), r.layers...) }

// Position returns the index of a layer, or -1.
func (r *Registry) Position(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// AddStep appends a step after checking it against the registered layers.
func (r *Registry) AddStep(s *pipeline.Step) error {
	if err := s.Check(); err != nil {
		return err
	}
	src := r.Position(s.Layer)
	if src < 0 {
		return domain.Violationf("step %q: unknown layer %q", s.Label(), s.Layer)
	}
	if s.Op == domain.OpTranslate {
		dst := r.Position(s.Target)
		if dst < 0 {
			return domain.Violationf("step %q: unknown layer %q", s.Label(), s.Target)
		}
		if dst <= src {
			return domain.Violationf("step %q: target layer must come after %q", s.Label(), s.Layer)
		}
	}
	r.steps = append(r.steps, s)
	return nil
}

// Steps returns the steps in order.
func (r *Registry) Steps() []*pipeline.Step { return append([]*pipeline.Step(nil), r.steps...) }
