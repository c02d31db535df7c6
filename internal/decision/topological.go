package decision

import (
	"cmp"
	"slices"
)

// topological keeps the real dependency DAG and one linear extension of it.
// The root path of a node is its set of ancestors ordered by that
// extension, so the extension decides which ancestor is revised first.
type topological struct {
	root *Node
	up   map[*Node][]*Node
	down map[*Node][]*Node
	seq  []*Node
	pos  map[*Node]int
}

func newTopological(root *Node) *topological {
	return &topological{
		root: root,
		up:   make(map[*Node][]*Node),
		down: make(map[*Node][]*Node),
		pos:  make(map[*Node]int),
	}
}

func (t *topological) link(n *Node, deps []*Node) {
	if len(deps) == 0 {
		deps = []*Node{t.root}
	}
	t.up[n] = append([]*Node(nil), deps...)
	for _, d := range deps {
		t.down[d] = append(t.down[d], n)
	}
	t.pos[n] = len(t.seq)
	t.seq = append(t.seq, n)
	if len(deps) > 1 {
		t.resequence(deps)
	}
}

// resequence re-sorts the suffix of the extension that starts at the
// oldest dependency. Among ready nodes, shallow ones (few dependency
// levels above them) go first, so independent work ends up far from the
// nodes that join branches and is revised last.
func (t *topological) resequence(deps []*Node) {
	from := len(t.seq)
	for _, d := range deps {
		if p, ok := t.pos[d]; ok && p < from {
			from = p
		}
	}
	suffix := t.seq[from:]
	in := make(map[*Node]bool, len(suffix))
	for _, n := range suffix {
		in[n] = true
	}

	depth := make(map[*Node]int)
	var depthOf func(n *Node) int
	depthOf = func(n *Node) int {
		if n == t.root {
			return 0
		}
		if d, ok := depth[n]; ok {
			return d
		}
		d := 0
		for _, p := range t.up[n] {
			d = max(d, depthOf(p)+1)
		}
		depth[n] = d
		return d
	}

	indeg := make(map[*Node]int, len(suffix))
	var ready []*Node
	for _, n := range suffix {
		for _, p := range t.up[n] {
			if in[p] {
				indeg[n]++
			}
		}
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}

	less := func(a, b *Node) int {
		if c := cmp.Compare(depthOf(a), depthOf(b)); c != 0 {
			return c
		}
		return cmp.Compare(t.pos[a], t.pos[b])
	}

	sorted := make([]*Node, 0, len(suffix))
	for len(ready) > 0 {
		slices.SortFunc(ready, less)
		n := ready[0]
		ready = ready[1:]
		sorted = append(sorted, n)
		for _, c := range t.down[n] {
			if !in[c] {
				continue
			}
			indeg[c]--
			if indeg[c] == 0 {
				ready = append(ready, c)
			}
		}
	}

	copy(t.seq[from:], sorted)
	for i := from; i < len(t.seq); i++ {
		t.pos[t.seq[i]] = i
	}
}

func (t *topological) unlink(n *Node) {
	for _, p := range t.up[n] {
		t.down[p] = remove(t.down[p], n)
	}
	for _, c := range t.down[n] {
		t.up[c] = remove(t.up[c], n)
		if len(t.up[c]) == 0 {
			t.up[c] = []*Node{t.root}
			t.down[t.root] = append(t.down[t.root], c)
		}
	}
	delete(t.up, n)
	delete(t.down, n)

	i, ok := t.pos[n]
	if !ok {
		return
	}
	t.seq = append(t.seq[:i], t.seq[i+1:]...)
	delete(t.pos, n)
	for k := i; k < len(t.seq); k++ {
		t.pos[t.seq[k]] = k
	}
}

func (t *topological) parents(n *Node) []*Node { return append([]*Node(nil), t.up[n]...) }

func (t *topological) reaches(from, to *Node) bool {
	if from == t.root {
		return true
	}
	pf, ok1 := t.pos[from]
	pt, ok2 := t.pos[to]
	if !ok1 || !ok2 || pf >= pt {
		return false
	}
	seen := make(map[*Node]bool)
	stack := []*Node{to}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range t.up[n] {
			if p == from {
				return true
			}
			if p == t.root || seen[p] || t.pos[p] < pf {
				continue
			}
			seen[p] = true
			stack = append(stack, p)
		}
	}
	return false
}

func (t *topological) rootPath(n *Node) []*Node {
	anc := t.closure(n, t.up)
	slices.SortFunc(anc, func(a, b *Node) int { return cmp.Compare(t.pos[b], t.pos[a]) })
	return anc
}

func (t *topological) descendants(n *Node) []*Node {
	desc := t.closure(n, t.down)
	slices.SortFunc(desc, func(a, b *Node) int { return cmp.Compare(t.pos[a], t.pos[b]) })
	return desc
}

func (t *topological) closure(n *Node, edges map[*Node][]*Node) []*Node {
	seen := map[*Node]bool{n: true}
	var out []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, y := range edges[x] {
			if seen[y] || y == t.root {
				continue
			}
			seen[y] = true
			out = append(out, y)
			stack = append(stack, y)
		}
	}
	return out
}

func (t *topological) order() []*Node { return append([]*Node(nil), t.seq...) }

func remove(nodes []*Node, n *Node) []*Node {
	out := nodes[:0]
	for _, x := range nodes {
		if x != n {
			out = append(out, x)
		}
	}
	return out
}
