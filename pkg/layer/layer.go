package layer

import (
	"fmt"
	"sort"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

type slotKey struct {
	obj   graph.ID
	param string
}

type assocKey struct {
	layer string
	obj   graph.ID
}

// Layer is a named graph with tracked parameters.
type Layer struct {
	name  string
	graph *graph.Graph
	slots map[slotKey]*Slot
	assoc map[assocKey][]graph.ID
}

// New creates an empty layer.
func New(name string) *Layer {
	return &Layer{
		name:  name,
		graph: graph.New(),
		slots: make(map[slotKey]*Slot),
		assoc: make(map[assocKey][]graph.ID),
	}
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Graph exposes the layer graph.
func (l *Layer) Graph() *graph.Graph { return l.graph }

// Object returns a live object.
func (l *Layer) Object(id graph.ID) (*graph.Object, bool) { return l.graph.Get(id) }

// Slot returns a copy of the slot for (obj, param). Missing slots are Unset.
func (l *Layer) Slot(obj graph.ID, param string) Slot {
	if s, ok := l.slots[slotKey{obj, param}]; ok {
		return *s
	}
	return Slot{}
}

// Candidates returns the candidate set, empty if none was narrowed yet.
func (l *Layer) Candidates(obj graph.ID, param string) domain.Set {
	return l.Slot(obj, param).Candidates
}

// Value returns the chosen value.
func (l *Layer) Value(obj graph.ID, param string) (any, bool) {
	s := l.Slot(obj, param)
	return s.Value, s.HasValue
}

// Params lists the parameters holding a slot for obj, sorted.
func (l *Layer) Params(obj graph.ID) []string {
	var params []string
	for k := range l.slots {
		if k.obj == obj {
			params = append(params, k.param)
		}
	}
	sort.Strings(params)
	return params
}

func (l *Layer) slot(obj graph.ID, param string) (*Slot, error) {
	if !l.graph.Has(obj) {
		return nil, fmt.Errorf("layer %s: %w: %d", l.name, graph.ErrNotFound, obj)
	}
	k := slotKey{obj, param}
	s, ok := l.slots[k]
	if !ok {
		s = &Slot{}
		l.slots[k] = s
	}
	return s, nil
}

// SetCandidates overwrites the candidate set. A chosen value must remain a
// candidate.
func (l *Layer) SetCandidates(obj graph.ID, param string, set domain.Set) error {
	s, err := l.slot(obj, param)
	if err != nil {
		return err
	}
	if s.HasValue && !set.Contains(s.Value) {
		return fmt.Errorf("layer %s: value %v of %s on %d is not in %s", l.name, s.Value, param, obj, set)
	}
	s.Candidates, s.Known = set, true
	return nil
}

// SetValue records a choice. The value must be a candidate not yet rejected.
func (l *Layer) SetValue(obj graph.ID, param string, v any) error {
	s, err := l.slot(obj, param)
	if err != nil {
		return err
	}
	if !s.Candidates.Contains(v) {
		return fmt.Errorf("layer %s: %v is not a candidate of %s on %d", l.name, v, param, obj)
	}
	if s.Failed.Contains(v) {
		return fmt.Errorf("layer %s: %v was already rejected for %s on %d", l.name, v, param, obj)
	}
	s.Value, s.HasValue = v, true
	return nil
}

// Untracked returns the rollback accessor of the layer.
func (l *Layer) Untracked() Untracked { return Untracked{l: l} }
