package runtime

import (
	"context"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
)

func (c *Controller) narrow(ctx context.Context, i int, s *pipeline.Step) error {
	l, ids, err := c.scope(s)
	if err != nil {
		return err
	}
	if s.Batch(0) {
		return c.narrowBatch(ctx, i, s, l, ids)
	}

	for _, id := range ids {
		op := decision.OpKey{Step: i, Obj: id}
		if _, live := c.graph.Lookup(op); live {
			continue
		}
		obj, _ := l.Object(id)

		var (
			acc     domain.Set
			reads   = existence(l.Name(), id)
			applied bool
		)
		for _, e := range s.Engines {
			if !applies(e, obj.Type) {
				continue
			}
			v := c.newView(e, l.Name())
			set, err := e.(ports.Narrower).Narrow(ctx, v, id, acc)
			if err != nil {
				return engineError(s, e, id, err)
			}
			if err := checkView(v, i); err != nil {
				return err
			}
			reads = append(reads, v.reads...)
			if applied {
				set = acc.Intersect(set)
			}
			acc, applied = set, true
		}
		if !applied {
			continue
		}

		if err := l.SetCandidates(id, s.Param, acc); err != nil {
			return violation(s, i, nil, "%v", err)
		}
		n := &decision.Node{
			Op: domain.OpNarrow, Step: i, Layer: l.Name(), Param: s.Param,
			Objects: []graph.ID{id}, Iteration: c.attempt, EngineName: s.Engines[0].Name(),
			Candidates: acc,
		}
		c.graph.Record(op, n, reads, slots(l.Name(), s.Param, id))
		c.recorded(ctx, n)
	}
	return nil
}

// narrowBatch records a single decision covering every object of the step.
func (c *Controller) narrowBatch(ctx context.Context, i int, s *pipeline.Step, l *layer.Layer, ids []graph.ID) error {
	op := decision.OpKey{Step: i}
	if _, live := c.graph.Lookup(op); live || len(ids) == 0 {
		return nil
	}

	acc := make(map[graph.ID]domain.Set)
	reads := existence(l.Name(), ids...)
	for _, e := range s.Engines {
		objs := filter(l, e, ids)
		if len(objs) == 0 {
			continue
		}
		v := c.newView(e, l.Name())
		sets, err := e.(ports.BatchNarrower).NarrowBatch(ctx, v, objs)
		if err != nil {
			return engineError(s, e, graph.None, err)
		}
		if err := checkView(v, i); err != nil {
			return err
		}
		reads = append(reads, v.reads...)
		for _, id := range objs {
			set, ok := sets[id]
			if !ok {
				return violation(s, i, e, "no candidates returned for object %d", id)
			}
			if prev, seen := acc[id]; seen {
				set = prev.Intersect(set)
			}
			acc[id] = set
		}
	}

	var narrowed []graph.ID
	for _, id := range ids {
		set, ok := acc[id]
		if !ok {
			continue
		}
		if err := l.SetCandidates(id, s.Param, set); err != nil {
			return violation(s, i, nil, "%v", err)
		}
		narrowed = append(narrowed, id)
	}
	if len(narrowed) == 0 {
		return nil
	}
	n := &decision.Node{
		Op: domain.OpNarrow, Step: i, Layer: l.Name(), Param: s.Param,
		Objects: narrowed, Iteration: c.attempt, EngineName: s.Engines[0].Name(),
	}
	c.graph.Record(op, n, reads, slots(l.Name(), s.Param, narrowed...))
	c.recorded(ctx, n)
	return nil
}
