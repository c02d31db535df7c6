package decision

// linear is a chronological stack: every decision depends on the previous
// one, whatever it actually read.
type linear struct {
	root  *Node
	chain []*Node
}

func newLinear(root *Node) *linear { return &linear{root: root} }

func (l *linear) link(n *Node, _ []*Node) { l.chain = append(l.chain, n) }

func (l *linear) index(n *Node) int {
	for i, x := range l.chain {
		if x == n {
			return i
		}
	}
	return -1
}

func (l *linear) unlink(n *Node) {
	if i := l.index(n); i >= 0 {
		l.chain = append(l.chain[:i], l.chain[i+1:]...)
	}
}

func (l *linear) parents(n *Node) []*Node {
	i := l.index(n)
	if i <= 0 {
		return []*Node{l.root}
	}
	return []*Node{l.chain[i-1]}
}

func (l *linear) reaches(from, to *Node) bool {
	if from == l.root {
		return true
	}
	i, j := l.index(from), l.index(to)
	return i >= 0 && j >= 0 && i < j
}

func (l *linear) rootPath(n *Node) []*Node {
	i := l.index(n)
	path := make([]*Node, 0, max(i, 0))
	for k := i - 1; k >= 0; k-- {
		path = append(path, l.chain[k])
	}
	return path
}

func (l *linear) descendants(n *Node) []*Node {
	if n == l.root {
		return l.order()
	}
	i := l.index(n)
	if i < 0 {
		return nil
	}
	return append([]*Node(nil), l.chain[i+1:]...)
}

func (l *linear) order() []*Node { return append([]*Node(nil), l.chain...) }
