package decision

import "slices"

// tree keeps at most one parent per node. A node depending on several
// branches gets them merged into one chain below their lowest common
// ancestor, interleaved by (iteration, seq), and hangs off its tail.
type tree struct {
	root   *Node
	parent map[*Node]*Node
	kids   map[*Node][]*Node
}

func newTree(root *Node) *tree {
	return &tree{
		root:   root,
		parent: make(map[*Node]*Node),
		kids:   make(map[*Node][]*Node),
	}
}

func (t *tree) link(n *Node, deps []*Node) {
	switch len(deps) {
	case 0:
		t.attach(n, t.root)
	case 1:
		t.attach(n, deps[0])
	default:
		t.attach(n, t.merge(deps))
	}
}

func (t *tree) attach(n, p *Node) {
	t.parent[n] = p
	t.kids[p] = append(t.kids[p], n)
}

func (t *tree) detach(n *Node) {
	if p, ok := t.parent[n]; ok {
		t.kids[p] = remove(t.kids[p], n)
		delete(t.parent, n)
	}
}

// path returns the nodes from the root (included) down to n.
func (t *tree) path(n *Node) []*Node {
	var p []*Node
	for x := n; x != nil; x = t.parent[x] {
		p = append(p, x)
		if x == t.root {
			break
		}
	}
	slices.Reverse(p)
	return p
}

// merge turns the branches leading to deps into a single chain and
// returns its tail.
func (t *tree) merge(deps []*Node) *Node {
	paths := make([][]*Node, len(deps))
	for i, d := range deps {
		paths[i] = t.path(d)
	}
	common := len(paths[0])
	for _, p := range paths[1:] {
		k := 0
		for k < common && k < len(p) && p[k] == paths[0][k] {
			k++
		}
		common = k
	}
	lca := paths[0][common-1]

	segs := make([][]*Node, len(paths))
	for i, p := range paths {
		segs[i] = p[common:]
	}
	emitted := make(map[*Node]bool)
	var chain []*Node
	for {
		best := -1
		for i, s := range segs {
			for len(s) > 0 && emitted[s[0]] {
				s = s[1:]
			}
			segs[i] = s
			if len(s) > 0 && (best < 0 || before(s[0], segs[best][0])) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		n := segs[best][0]
		segs[best] = segs[best][1:]
		emitted[n] = true
		chain = append(chain, n)
	}

	prev := lca
	for _, n := range chain {
		if t.parent[n] != prev {
			t.detach(n)
			t.attach(n, prev)
		}
		prev = n
	}
	return prev
}

func (t *tree) unlink(n *Node) {
	p := t.parent[n]
	t.detach(n)
	for _, c := range append([]*Node(nil), t.kids[n]...) {
		t.detach(c)
		t.attach(c, p)
	}
	delete(t.kids, n)
}

func (t *tree) parents(n *Node) []*Node {
	if p, ok := t.parent[n]; ok {
		return []*Node{p}
	}
	return nil
}

func (t *tree) reaches(from, to *Node) bool {
	for x := t.parent[to]; x != nil; x = t.parent[x] {
		if x == from {
			return true
		}
	}
	return false
}

func (t *tree) rootPath(n *Node) []*Node {
	var p []*Node
	for x := t.parent[n]; x != nil && x != t.root; x = t.parent[x] {
		p = append(p, x)
	}
	return p
}

func (t *tree) descendants(n *Node) []*Node {
	var out []*Node
	var walk func(x *Node)
	walk = func(x *Node) {
		for _, c := range t.kids[x] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

func (t *tree) order() []*Node { return t.descendants(t.root) }
