package dsl

import "github.com/aretw0/archsynth/pkg/problem"

// StepBuilder configures a pipeline step.
type StepBuilder struct {
	spec    problem.StepSpec
	builder *Builder
}

// Named labels the step in logs and reports.
func (s *StepBuilder) Named(name string) *StepBuilder {
	s.spec.Name = name
	return s
}

// OnEdges makes the step visit edges instead of nodes.
func (s *StepBuilder) OnEdges() *StepBuilder {
	s.spec.Edges = true
	return s
}

// OfType restricts the step to objects of the given types.
func (s *StepBuilder) OfType(types ...string) *StepBuilder {
	s.spec.Types = append(s.spec.Types, types...)
	return s
}

// Engine adds an engine of a registered kind.
func (s *StepBuilder) Engine(kind string, args map[string]any) *StepBuilder {
	s.spec.Engines = append(s.spec.Engines, problem.EngineSpec{Kind: kind, Args: args})
	return s
}

// Done returns to the problem builder.
func (s *StepBuilder) Done() *Builder { return s.builder }
