package dsl

import "github.com/aretw0/archsynth/pkg/problem"

// LayerBuilder provides a fluent API for the initial objects of a layer.
type LayerBuilder struct {
	spec     problem.LayerSpec
	builder  *Builder
	lastEdge bool
}

// Node adds a node of the given type.
func (l *LayerBuilder) Node(name, typ string) *LayerBuilder {
	l.spec.Nodes = append(l.spec.Nodes, problem.NodeSpec{Name: name, Type: typ})
	l.lastEdge = false
	return l
}

// Edge adds an edge between two nodes declared by name.
func (l *LayerBuilder) Edge(name, typ, from, to string) *LayerBuilder {
	l.spec.Edges = append(l.spec.Edges, problem.EdgeSpec{Name: name, Type: typ, From: from, To: to})
	l.lastEdge = true
	return l
}

// Set fixes a parameter on the object added last. It is a no-op on a
// layer without objects.
func (l *LayerBuilder) Set(param string, value any) *LayerBuilder {
	var params *map[string]any
	switch {
	case l.lastEdge:
		params = &l.spec.Edges[len(l.spec.Edges)-1].Params
	case len(l.spec.Nodes) > 0:
		params = &l.spec.Nodes[len(l.spec.Nodes)-1].Params
	default:
		return l
	}
	if *params == nil {
		*params = make(map[string]any)
	}
	(*params)[param] = value
	return l
}

// Done returns to the problem builder.
func (l *LayerBuilder) Done() *Builder { return l.builder }
