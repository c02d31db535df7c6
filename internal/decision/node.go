package decision

import (
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// Key addresses a slot, or a pseudo-parameter, of an object.
type Key struct {
	Layer string
	Param string
	Obj   graph.ID
}

// Node is one recorded decision.
type Node struct {
	Seq       uint64
	Op        domain.OpKind
	Step      int
	Engine    int
	Layer     string
	Param     string
	Objects   []graph.ID
	Iteration int
	Valid     bool

	// EngineName is kept for diagnostics.
	EngineName string

	// Candidates is set by narrow decisions.
	Candidates domain.Set
	// Value is set by choose decisions.
	Value any
	// Target and Produced are set by translate decisions.
	Target   string
	Produced []graph.ID

	reads  []Key
	writes []Key
}

// Reads returns the keys the decision read.
func (n *Node) Reads() []Key { return n.reads }

// Writes returns the keys the decision wrote.
func (n *Node) Writes() []Key { return n.writes }

// IsRoot reports whether n is the graph root.
func (n *Node) IsRoot() bool { return n.Op == domain.OpRoot }

// Object returns the single object of a per-object decision.
func (n *Node) Object() graph.ID {
	if len(n.Objects) == 0 {
		return graph.None
	}
	return n.Objects[0]
}

// Ref describes the node outside the engine.
func (n *Node) Ref() domain.DecisionRef {
	return domain.DecisionRef{
		Seq:       n.Seq,
		Kind:      n.Op,
		Step:      n.Step,
		Engine:    n.EngineName,
		Layer:     n.Layer,
		Param:     n.Param,
		Objects:   append([]graph.ID(nil), n.Objects...),
		Iteration: n.Iteration,
	}
}

// before orders nodes by (iteration, seq).
func before(a, b *Node) bool {
	if a.Iteration != b.Iteration {
		return a.Iteration < b.Iteration
	}
	return a.Seq < b.Seq
}
