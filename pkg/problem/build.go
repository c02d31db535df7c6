package problem

import (
	"errors"
	"fmt"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Target receives the layers and steps of a problem, e.g. an
// *archsynth.Engine.
type Target interface {
	AddLayer(name string) (*layer.Layer, error)
	AddStep(s *pipeline.Step) error
}

// Build validates the problem, populates the layers of t and appends the
// steps with engines created from reg.
func (p *Problem) Build(t Target, reg *engines.Registry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, spec := range p.Layers {
		if err := buildLayer(t, spec); err != nil {
			return err
		}
	}

	var errs []error
	for i, spec := range p.Steps {
		step, err := buildStep(spec, reg)
		if err == nil {
			err = t.AddStep(step)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func buildLayer(t Target, spec LayerSpec) error {
	l, err := t.AddLayer(spec.Name)
	if err != nil {
		return err
	}
	g := l.Graph()
	ids := make(map[string]graph.ID, len(spec.Nodes))
	for _, n := range spec.Nodes {
		ids[n.Name] = g.AddNode(n.Type, n.Name, n.Params)
	}
	for _, e := range spec.Edges {
		if _, err := g.AddEdge(e.Type, e.Name, ids[e.From], ids[e.To], e.Params); err != nil {
			return fmt.Errorf("layer %q: %w", spec.Name, err)
		}
	}
	return nil
}

func buildStep(spec StepSpec, reg *engines.Registry) (*pipeline.Step, error) {
	built := make([]ports.Engine, 0, len(spec.Engines))
	for _, es := range spec.Engines {
		e, err := reg.Build(es.Kind, engines.Binding{
			Name:   es.Name,
			Layer:  spec.Layer,
			Param:  spec.Param,
			Target: spec.Target,
			Types:  es.Types,
		}, es.Args)
		if err != nil {
			return nil, err
		}
		built = append(built, e)
	}

	var s *pipeline.Step
	switch domain.OpKind(spec.Op) {
	case domain.OpNarrow:
		s = pipeline.Narrow(spec.Layer, spec.Param, built...)
	case domain.OpChoose:
		if len(built) != 1 {
			return nil, fmt.Errorf("choose takes exactly one engine, got %d", len(built))
		}
		s = pipeline.Choose(spec.Layer, spec.Param, built[0])
	case domain.OpTranslate:
		if len(built) != 1 {
			return nil, fmt.Errorf("translate takes exactly one engine, got %d", len(built))
		}
		s = pipeline.Translate(spec.Layer, spec.Target, built[0])
	case domain.OpValidate:
		s = pipeline.Validate(spec.Layer, built...)
	}
	if spec.Edges {
		s.OnEdges()
	}
	if len(spec.Types) > 0 {
		s.OfType(spec.Types...)
	}
	if spec.Name != "" {
		s.Named(spec.Name)
	}
	return s, nil
}
