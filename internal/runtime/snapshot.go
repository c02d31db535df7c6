package runtime

import (
	"time"

	"github.com/aretw0/archsynth/pkg/domain"
)

// LayerSnapshot captures one layer: its objects, slots and associations.
func (c *Controller) LayerSnapshot(name string) (domain.LayerSnapshot, bool) {
	l, ok := c.reg.Layer(name)
	if !ok {
		return domain.LayerSnapshot{}, false
	}
	ls := domain.LayerSnapshot{Name: l.Name()}
	for _, id := range l.Graph().Objects() {
		obj, _ := l.Object(id)
		ls.Objects = append(ls.Objects, *obj)
		for _, p := range l.Params(id) {
			s := l.Slot(id, p)
			ls.Slots = append(ls.Slots, domain.SlotSnapshot{
				Object: id, Param: p,
				Value: s.Value, HasValue: s.HasValue,
				Candidates: s.Candidates, Failed: s.Failed,
			})
		}
		for _, other := range l.AssociatedLayers(id) {
			ls.Associations = append(ls.Associations, domain.AssociationSnapshot{
				Object: id, Layer: other, Peers: l.Associated(other, id),
			})
		}
	}
	return ls, true
}

// Snapshot captures the layers and the live decisions. err is the outcome
// of Run, if any.
func (c *Controller) Snapshot(id string, err error) *domain.Snapshot {
	snap := &domain.Snapshot{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Report:    c.Report(err),
	}
	for _, l := range c.reg.Layers() {
		ls, _ := c.LayerSnapshot(l.Name())
		snap.Layers = append(snap.Layers, ls)
	}
	for _, n := range c.graph.Nodes() {
		ds := domain.DecisionSnapshot{
			DecisionRef: n.Ref(),
			Value:       n.Value,
			Target:      n.Target,
			Produced:    n.Produced,
		}
		if n.Op == domain.OpNarrow && !n.Candidates.IsEmpty() {
			cands := n.Candidates
			ds.Candidates = &cands
		}
		for _, p := range c.graph.Parents(n) {
			ds.Parents = append(ds.Parents, p.Seq)
		}
		snap.Decisions = append(snap.Decisions, ds)
	}
	return snap
}
