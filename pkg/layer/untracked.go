package layer

import (
	"fmt"

	"github.com/aretw0/archsynth/pkg/graph"
)

// Untracked moves slots backwards and deletes objects without any decision
// being recorded. Only the rollback path holds one.
type Untracked struct {
	l *Layer
}

// Layer returns the underlying layer.
func (u Untracked) Layer() *Layer { return u.l }

// ClearValue moves a slot from VALUE_CHOSEN to CANDIDATES_KNOWN.
func (u Untracked) ClearValue(obj graph.ID, param string) {
	if s, ok := u.l.slots[slotKey{obj, param}]; ok {
		s.Value, s.HasValue = nil, false
	}
}

// ClearCandidates moves a slot from CANDIDATES_KNOWN to UNSET. It refuses
// to skip a state.
func (u Untracked) ClearCandidates(obj graph.ID, param string) error {
	s, ok := u.l.slots[slotKey{obj, param}]
	if !ok {
		return nil
	}
	if s.HasValue {
		return fmt.Errorf("layer %s: clearing candidates of %s on %d while value %v is chosen", u.l.name, param, obj, s.Value)
	}
	s.Candidates, s.Known = s.Candidates.Minus(s.Candidates), false
	return nil
}

// MarkFailed records v as rejected.
func (u Untracked) MarkFailed(obj graph.ID, param string, v any) {
	if s, ok := u.l.slots[slotKey{obj, param}]; ok {
		s.Failed = s.Failed.Add(v)
	}
}

// ClearFailed forgets every rejected value.
func (u Untracked) ClearFailed(obj graph.ID, param string) {
	if s, ok := u.l.slots[slotKey{obj, param}]; ok {
		s.Failed = s.Failed.Minus(s.Failed)
	}
}

// Delete removes an object with its slots. Associations must have been
// dropped and, for nodes, incident edges deleted first.
func (u Untracked) Delete(obj graph.ID) error {
	for k, ids := range u.l.assoc {
		if k.obj == obj && len(ids) > 0 {
			return fmt.Errorf("layer %s: object %d still associated with layer %s", u.l.name, obj, k.layer)
		}
	}
	if err := u.l.graph.Remove(obj); err != nil {
		return fmt.Errorf("layer %s: %w", u.l.name, err)
	}
	for k := range u.l.slots {
		if k.obj == obj {
			delete(u.l.slots, k)
		}
	}
	for k := range u.l.assoc {
		if k.obj == obj {
			delete(u.l.assoc, k)
		}
	}
	return nil
}
