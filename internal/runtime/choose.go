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

// pending returns the objects still needing a value, with what they may
// choose from. An object keeps its decision node while it is being
// revised, so a live node without a value is pending too.
func (c *Controller) pending(i int, s *pipeline.Step, l *layer.Layer, ids []graph.ID) ([]graph.ID, map[graph.ID]domain.Set, error) {
	var todo []graph.ID
	available := make(map[graph.ID]domain.Set)
	for _, id := range ids {
		_, live := c.graph.Lookup(decision.OpKey{Step: i, Obj: id})
		if _, chosen := l.Value(id, s.Param); live && chosen {
			continue
		}
		slot := l.Slot(id, s.Param)
		if !slot.Known || slot.Remaining().IsEmpty() {
			return nil, nil, violation(s, i, s.Engines[0], "no candidate left for %s on object %d", s.Param, id)
		}
		todo = append(todo, id)
		available[id] = slot.Remaining()
	}
	return todo, available, nil
}

func (c *Controller) choose(ctx context.Context, i int, s *pipeline.Step) error {
	l, ids, err := c.scope(s)
	if err != nil {
		return err
	}
	e := s.Engines[0]
	todo, available, err := c.pending(i, s, l, filter(l, e, ids))
	if err != nil || len(todo) == 0 {
		return err
	}

	if s.Batch(0) {
		v := c.newView(e, l.Name())
		values, err := e.(ports.BatchChooser).ChooseBatch(ctx, v, available)
		if err != nil {
			return engineError(s, e, graph.None, err)
		}
		if err := checkView(v, i); err != nil {
			return err
		}
		for _, id := range todo {
			val, ok := values[id]
			if !ok {
				return violation(s, i, e, "no value returned for object %d", id)
			}
			if err := c.assign(ctx, i, s, l, id, val, available[id], v.reads); err != nil {
				return err
			}
		}
		return nil
	}

	for _, id := range todo {
		v := c.newView(e, l.Name())
		val, err := e.(ports.Chooser).Choose(ctx, v, id, available[id])
		if err != nil {
			return engineError(s, e, id, err)
		}
		if err := checkView(v, i); err != nil {
			return err
		}
		if err := c.assign(ctx, i, s, l, id, val, available[id], v.reads); err != nil {
			return err
		}
	}
	return nil
}

// assign sets a chosen value and records it, reusing the node of a choice
// under revision.
func (c *Controller) assign(ctx context.Context, i int, s *pipeline.Step, l *layer.Layer, id graph.ID, val any, available domain.Set, reads []decision.Key) error {
	if !available.Contains(val) {
		return violation(s, i, s.Engines[0], "value %v for object %d is not among %s", val, id, available)
	}
	if err := l.SetValue(id, s.Param, val); err != nil {
		return violation(s, i, s.Engines[0], "%v", err)
	}

	op := decision.OpKey{Step: i, Obj: id}
	if n, live := c.graph.Lookup(op); live {
		n.Value = val
		c.logger.DebugContext(ctx, "choice revised", "decision", n.Seq, "object", id, "value", val)
		c.recorded(ctx, n)
		return nil
	}

	n := &decision.Node{
		Op: domain.OpChoose, Step: i, Layer: l.Name(), Param: s.Param,
		Objects: []graph.ID{id}, Iteration: c.attempt, EngineName: s.Engines[0].Name(),
		Value: val,
	}
	reads = append(append(existence(l.Name(), id), slots(l.Name(), s.Param, id)...), reads...)
	c.graph.Record(op, n, reads, slots(l.Name(), s.Param, id))
	c.liveChoices++
	c.stats.PeakChoices = max(c.stats.PeakChoices, c.liveChoices)
	c.recorded(ctx, n)
	return nil
}
