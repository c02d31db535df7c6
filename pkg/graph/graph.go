package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned when an ID does not address a live object.
	ErrNotFound = errors.New("object not found")
	// ErrHasEdges is returned when removing a node that still has incident edges.
	ErrHasEdges = errors.New("node still has incident edges")
)

// Graph is a directed multigraph over an arena of objects.
// It is not safe for concurrent use.
type Graph struct {
	objects []*Object // index = ID; slot 0 unused; nil = deleted
	out     map[ID][]ID
	in      map[ID][]ID
	live    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		objects: []*Object{nil},
		out:     make(map[ID][]ID),
		in:      make(map[ID][]ID),
	}
}

func (g *Graph) next() ID { return ID(len(g.objects)) }

// AddNode creates a node and returns its ID.
func (g *Graph) AddNode(typ, name string, params map[string]any) ID {
	id := g.next()
	g.objects = append(g.objects, (&Object{ID: id, Kind: KindNode, Type: typ, Name: name, Params: params}).clone())
	g.live++
	return id
}

// AddEdge creates an edge between two live nodes.
func (g *Graph) AddEdge(typ, name string, source, target ID, params map[string]any) (ID, error) {
	for _, end := range []ID{source, target} {
		o, ok := g.Get(end)
		if !ok {
			return None, fmt.Errorf("edge endpoint %d: %w", end, ErrNotFound)
		}
		if o.IsEdge() {
			return None, fmt.Errorf("edge endpoint %d is an edge", end)
		}
	}
	id := g.next()
	g.objects = append(g.objects, (&Object{ID: id, Kind: KindEdge, Type: typ, Name: name, Source: source, Target: target, Params: params}).clone())
	g.out[source] = append(g.out[source], id)
	g.in[target] = append(g.in[target], id)
	g.live++
	return id, nil
}

// Get returns the live object for id.
func (g *Graph) Get(id ID) (*Object, bool) {
	if id <= None || int(id) >= len(g.objects) {
		return nil, false
	}
	o := g.objects[id]
	return o, o != nil
}

// Has reports whether id addresses a live object.
func (g *Graph) Has(id ID) bool {
	_, ok := g.Get(id)
	return ok
}

// Remove deletes an object. Nodes must not have incident edges left.
func (g *Graph) Remove(id ID) error {
	o, ok := g.Get(id)
	if !ok {
		return fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}
	if o.IsEdge() {
		g.out[o.Source] = without(g.out[o.Source], id)
		g.in[o.Target] = without(g.in[o.Target], id)
	} else {
		if len(g.out[id]) > 0 || len(g.in[id]) > 0 {
			return fmt.Errorf("remove node %d: %w", id, ErrHasEdges)
		}
		delete(g.out, id)
		delete(g.in, id)
	}
	g.objects[id] = nil
	g.live--
	return nil
}

// Nodes returns the live node IDs in creation order.
func (g *Graph) Nodes() []ID { return g.collect(KindNode) }

// Edges returns the live edge IDs in creation order.
func (g *Graph) Edges() []ID { return g.collect(KindEdge) }

// Objects returns all live IDs in creation order.
func (g *Graph) Objects() []ID { return g.collect(0) }

func (g *Graph) collect(kind Kind) []ID {
	ids := make([]ID, 0, g.live)
	for _, o := range g.objects {
		if o != nil && (kind == 0 || o.Kind == kind) {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// OutEdges returns the edges leaving node id.
func (g *Graph) OutEdges(id ID) []ID { return append([]ID(nil), g.out[id]...) }

// InEdges returns the edges entering node id.
func (g *Graph) InEdges(id ID) []ID { return append([]ID(nil), g.in[id]...) }

// Incident returns all edges touching node id, sorted and deduplicated.
func (g *Graph) Incident(id ID) []ID {
	seen := make(map[ID]struct{})
	var ids []ID
	for _, e := range append(g.OutEdges(id), g.InEdges(id)...) {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		ids = append(ids, e)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of live objects.
func (g *Graph) Len() int { return g.live }

func without(ids []ID, id ID) []ID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
