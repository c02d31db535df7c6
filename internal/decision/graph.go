package decision

import (
	"fmt"
	"sort"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// Kind selects a backend.
type Kind string

const (
	Linear      Kind = "linear"
	Topological Kind = "topological"
	Tree        Kind = "tree"
)

// Kinds lists the available backends.
var Kinds = []Kind{Linear, Topological, Tree}

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown decision graph backend %q (want linear, topological or tree)", s)
}

// backend materialises dependencies. Every method excludes the root from
// its results unless stated otherwise.
type backend interface {
	link(n *Node, deps []*Node)
	unlink(n *Node)
	// parents may include the root.
	parents(n *Node) []*Node
	reaches(from, to *Node) bool
	// rootPath is nearest first, n excluded.
	rootPath(n *Node) []*Node
	// descendants is in dependency order, n excluded.
	descendants(n *Node) []*Node
	order() []*Node
}

// OpKey identifies an operation instance: a step, one of its engines and
// the object it ran on (graph.None for batch calls).
type OpKey struct {
	Step   int
	Engine int
	Obj    graph.ID
}

// Graph records decisions and their dependencies.
// It is not safe for concurrent use.
type Graph struct {
	kind    Kind
	b       backend
	root    *Node
	seq     uint64
	nodes   map[uint64]*Node
	writers map[Key][]*Node
	ops     map[OpKey]*Node
	opOf    map[*Node]OpKey
}

// New creates an empty graph using the given backend.
func New(kind Kind) (*Graph, error) {
	root := &Node{Op: domain.OpRoot, Step: -1, Valid: true}
	g := &Graph{
		kind:    kind,
		root:    root,
		nodes:   make(map[uint64]*Node),
		writers: make(map[Key][]*Node),
		ops:     make(map[OpKey]*Node),
		opOf:    make(map[*Node]OpKey),
	}
	switch kind {
	case Linear:
		g.b = newLinear(root)
	case Topological:
		g.b = newTopological(root)
	case Tree:
		g.b = newTree(root)
	default:
		return nil, fmt.Errorf("unknown decision graph backend %q", kind)
	}
	return g, nil
}

// Kind returns the backend kind.
func (g *Graph) Kind() Kind { return g.kind }

// Root returns the distinguished root.
func (g *Graph) Root() *Node { return g.root }

// Len returns the number of live decisions.
func (g *Graph) Len() int { return len(g.nodes) }

// Record links a new decision. Each read resolves to the current writer of
// its key; the dependency set is reduced to its closest antichain; then n
// becomes the writer of every key it wrote.
func (g *Graph) Record(op OpKey, n *Node, reads, writes []Key) {
	g.seq++
	n.Seq = g.seq
	n.Valid = true
	n.reads = dedupe(reads)
	n.writes = dedupe(writes)

	var deps []*Node
	seen := make(map[*Node]bool)
	for _, k := range n.reads {
		w := g.Writer(k)
		if w != nil && w != n && !seen[w] {
			seen[w] = true
			deps = append(deps, w)
		}
	}
	g.b.link(n, g.reduce(deps))

	for _, k := range n.writes {
		g.writers[k] = append(g.writers[k], n)
	}
	g.nodes[n.Seq] = n
	g.ops[op] = n
	g.opOf[n] = op
}

// reduce drops every dependency that is an ancestor of another one.
func (g *Graph) reduce(deps []*Node) []*Node {
	if len(deps) < 2 {
		return deps
	}
	out := make([]*Node, 0, len(deps))
	for i, d := range deps {
		redundant := false
		for j, o := range deps {
			if i != j && g.b.reaches(d, o) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Writer returns the current writer of k.
func (g *Graph) Writer(k Key) *Node {
	ws := g.writers[k]
	if len(ws) == 0 {
		return nil
	}
	return ws[len(ws)-1]
}

// Lookup returns the live decision of an operation instance.
func (g *Graph) Lookup(op OpKey) (*Node, bool) {
	n, ok := g.ops[op]
	return n, ok
}

// OpOf returns the operation instance of a node.
func (g *Graph) OpOf(n *Node) OpKey { return g.opOf[n] }

// Node returns a live decision by sequence number.
func (g *Graph) Node(seq uint64) (*Node, bool) {
	n, ok := g.nodes[seq]
	return n, ok
}

// Parents returns the direct dependencies of n as materialised by the
// backend. The root may be among them.
func (g *Graph) Parents(n *Node) []*Node { return g.b.parents(n) }

// RootPath returns the ancestors of n, nearest first, root excluded.
func (g *Graph) RootPath(n *Node) []*Node { return g.b.rootPath(n) }

// Affected returns n followed by every decision depending on it, in
// dependency order.
func (g *Graph) Affected(n *Node) []*Node {
	return append([]*Node{n}, g.b.descendants(n)...)
}

// Retracted returns what rolling back to culprit undoes after failing
// failed: culprit and its dependents, plus every ancestor of failing that is
// nearer to it than culprit, with their dependents. Without the latter, a
// check joining independent branches would keep the failed values of the
// branch it skipped. Culprit comes first, the rest follow the linearisation.
func (g *Graph) Retracted(culprit, failing *Node) []*Node {
	set := map[*Node]bool{culprit: true}
	add := func(n *Node) {
		set[n] = true
		for _, d := range g.b.descendants(n) {
			set[d] = true
		}
	}
	add(culprit)
	for _, a := range g.b.rootPath(failing) {
		if a == culprit {
			break
		}
		add(a)
	}
	out := []*Node{culprit}
	for _, n := range g.b.order() {
		if n != culprit && set[n] {
			out = append(out, n)
		}
	}
	return out
}

// Nodes returns the live decisions in the backend linearisation.
func (g *Graph) Nodes() []*Node { return g.b.order() }

// Remove drops a decision: it leaves the backend, the writer index and the
// operation index.
func (g *Graph) Remove(n *Node) {
	if _, ok := g.nodes[n.Seq]; !ok {
		return
	}
	g.b.unlink(n)
	for _, k := range n.writes {
		ws := g.writers[k][:0]
		for _, w := range g.writers[k] {
			if w != n {
				ws = append(ws, w)
			}
		}
		if len(ws) == 0 {
			delete(g.writers, k)
		} else {
			g.writers[k] = ws
		}
	}
	if op, ok := g.opOf[n]; ok && g.ops[op] == n {
		delete(g.ops, op)
	}
	delete(g.opOf, n)
	delete(g.nodes, n.Seq)
	n.Valid = false
}

// Forget purges the writer entries of a deleted object.
func (g *Graph) Forget(layer string, obj graph.ID) {
	for k := range g.writers {
		if k.Layer == layer && k.Obj == obj {
			delete(g.writers, k)
		}
	}
}

// Writers returns a copy of the writer index, for diagnostics and tests.
func (g *Graph) Writers() map[Key][]*Node {
	out := make(map[Key][]*Node, len(g.writers))
	for k, ws := range g.writers {
		out[k] = append([]*Node(nil), ws...)
	}
	return out
}

func dedupe(keys []Key) []Key {
	seen := make(map[Key]bool, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
