package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
)

func (c *Controller) validate(ctx context.Context, i int, s *pipeline.Step) error {
	l, ids, err := c.scope(s)
	if err != nil {
		return err
	}
	for ei, e := range s.Engines {
		objs := filter(l, e, ids)
		if s.Batch(ei) {
			if err := c.checkBatch(ctx, i, ei, s, e.(ports.BatchChecker), l.Name(), objs); err != nil {
				return err
			}
			continue
		}
		for _, id := range objs {
			op := decision.OpKey{Step: i, Engine: ei, Obj: id}
			if _, live := c.graph.Lookup(op); live {
				continue
			}
			v := c.newView(e, l.Name())
			ok, err := e.(ports.Checker).Check(ctx, v, id)
			if err != nil {
				return engineError(s, e, id, err)
			}
			if err := checkView(v, i); err != nil {
				return err
			}
			n := c.recordCheck(ctx, op, i, e, l.Name(), []graph.ID{id}, v.reads)
			if !ok {
				return &domain.ConstraintNotSatisfied{Decision: n.Ref()}
			}
		}
	}
	return nil
}

func (c *Controller) checkBatch(ctx context.Context, i, ei int, s *pipeline.Step, e ports.BatchChecker, layerName string, objs []graph.ID) error {
	op := decision.OpKey{Step: i, Engine: ei}
	if _, live := c.graph.Lookup(op); live || len(objs) == 0 {
		return nil
	}
	v := c.newView(e, layerName)
	ok, culprit, err := e.CheckBatch(ctx, v, objs)
	if err != nil {
		return engineError(s, e, graph.None, err)
	}
	if err := checkView(v, i); err != nil {
		return err
	}
	n := c.recordCheck(ctx, op, i, e, layerName, objs, v.reads)
	if !ok {
		return &domain.ConstraintNotSatisfied{Decision: n.Ref(), Reason: fmt.Sprintf("object %d", culprit)}
	}
	return nil
}

func (c *Controller) recordCheck(ctx context.Context, op decision.OpKey, i int, e ports.Engine, layerName string, objs []graph.ID, reads []decision.Key) *decision.Node {
	n := &decision.Node{
		Op: domain.OpValidate, Step: i, Engine: op.Engine, Layer: layerName,
		Objects: objs, Iteration: c.attempt, EngineName: e.Name(),
	}
	c.graph.Record(op, n, append(existence(layerName, objs...), reads...), nil)
	c.recorded(ctx, n)
	return n
}
