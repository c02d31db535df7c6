package dsl

import (
	"fmt"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/problem"
)

// Builder manages the problem construction.
type Builder struct {
	p      problem.Problem
	layers map[string]*LayerBuilder
	order  []*LayerBuilder
	steps  []*StepBuilder
}

// New creates a new problem builder.
func New(name string) *Builder {
	return &Builder{
		p:      problem.Problem{Name: name},
		layers: make(map[string]*LayerBuilder),
	}
}

// Backend sets the decision graph backend used when the caller names none.
func (b *Builder) Backend(name string) *Builder {
	b.p.Backend = name
	return b
}

// Layer declares a layer. If the layer already exists, it returns the
// existing builder.
func (b *Builder) Layer(name string) *LayerBuilder {
	if lb, ok := b.layers[name]; ok {
		return lb
	}
	lb := &LayerBuilder{spec: problem.LayerSpec{Name: name}, builder: b}
	b.layers[name] = lb
	b.order = append(b.order, lb)
	return lb
}

// Narrow appends a narrow step on param.
func (b *Builder) Narrow(layer, param string) *StepBuilder {
	return b.step(domain.OpNarrow, layer, param)
}

// Choose appends a choose step on param.
func (b *Builder) Choose(layer, param string) *StepBuilder {
	return b.step(domain.OpChoose, layer, param)
}

// Translate appends a translate step from layer into target.
func (b *Builder) Translate(layer, target string) *StepBuilder {
	sb := b.step(domain.OpTranslate, layer, "")
	sb.spec.Target = target
	return sb
}

// Validate appends a validate step.
func (b *Builder) Validate(layer string) *StepBuilder {
	return b.step(domain.OpValidate, layer, "")
}

func (b *Builder) step(op domain.OpKind, layer, param string) *StepBuilder {
	sb := &StepBuilder{
		spec:    problem.StepSpec{Op: string(op), Layer: layer, Param: param},
		builder: b,
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Build assembles and validates the problem.
func (b *Builder) Build() (*problem.Problem, error) {
	p := b.p
	p.Layers = make([]problem.LayerSpec, 0, len(b.order))
	for _, lb := range b.order {
		p.Layers = append(p.Layers, lb.spec)
	}
	p.Steps = make([]problem.StepSpec, 0, len(b.steps))
	for _, sb := range b.steps {
		p.Steps = append(p.Steps, sb.spec)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem %q: %w", p.Name, err)
	}
	return &p, nil
}
