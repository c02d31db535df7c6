package graph_test

import (
	"testing"

	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddAndGet(t *testing.T) {
	g := graph.New()
	a := g.AddNode("component", "a", map[string]any{"cpu": 2})
	b := g.AddNode("component", "b", nil)

	e, err := g.AddEdge("service", "a->b", a, b, nil)
	require.NoError(t, err)

	obj, ok := g.Get(e)
	require.True(t, ok)
	assert.True(t, obj.IsEdge())
	assert.Equal(t, a, obj.Source)
	assert.Equal(t, b, obj.Target)

	assert.Equal(t, []graph.ID{a, b}, g.Nodes())
	assert.Equal(t, []graph.ID{e}, g.Edges())
	assert.Equal(t, []graph.ID{e}, g.OutEdges(a))
	assert.Equal(t, []graph.ID{e}, g.InEdges(b))
	assert.Equal(t, 3, g.Len())
}

func TestGraph_ParamsAreCopied(t *testing.T) {
	g := graph.New()
	params := map[string]any{"cpu": 2}
	a := g.AddNode("component", "a", params)
	params["cpu"] = 4

	obj, _ := g.Get(a)
	assert.Equal(t, 2, obj.Params["cpu"])
}

func TestGraph_EdgeRequiresNodes(t *testing.T) {
	g := graph.New()
	a := g.AddNode("component", "a", nil)

	_, err := g.AddEdge("service", "", a, graph.ID(42), nil)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestGraph_RemoveNodeWithEdges(t *testing.T) {
	g := graph.New()
	a := g.AddNode("component", "a", nil)
	b := g.AddNode("component", "b", nil)
	e, _ := g.AddEdge("service", "", a, b, nil)

	assert.ErrorIs(t, g.Remove(a), graph.ErrHasEdges)

	require.NoError(t, g.Remove(e))
	require.NoError(t, g.Remove(a))
	assert.False(t, g.Has(a))
	assert.Empty(t, g.OutEdges(a))
	assert.Empty(t, g.InEdges(b))

	// IDs are never reused.
	c := g.AddNode("component", "c", nil)
	assert.NotEqual(t, a, c)
	assert.ErrorIs(t, g.Remove(a), graph.ErrNotFound)
}

func TestGraph_MultiEdges(t *testing.T) {
	g := graph.New()
	a := g.AddNode("component", "a", nil)
	b := g.AddNode("component", "b", nil)
	e1, _ := g.AddEdge("service", "", a, b, nil)
	e2, _ := g.AddEdge("service", "", a, b, nil)
	e3, _ := g.AddEdge("service", "", b, a, nil)

	assert.Equal(t, []graph.ID{e1, e2, e3}, g.Incident(a))
}
