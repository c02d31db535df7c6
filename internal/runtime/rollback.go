package runtime

import (
	"context"
	"math/big"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/aretw0/archsynth/pkg/registry"
)

// revisable reports whether a choice still has an untried candidate.
func (c *Controller) revisable(n *decision.Node) bool {
	if n.Op != domain.OpChoose {
		return false
	}
	l, ok := c.reg.Layer(n.Layer)
	if !ok {
		return false
	}
	return !l.Slot(n.Object(), n.Param).Remaining().Without(n.Value).IsEmpty()
}

// Culprit returns the nearest revisable choice above n.
func (c *Controller) Culprit(n *decision.Node) (*decision.Node, bool) {
	for _, a := range c.graph.RootPath(n) {
		if c.revisable(a) {
			return a, true
		}
	}
	return nil, false
}

// backtrack reacts to a failed check: it rejects the value of the culprit
// and undoes every decision depending on it, along with the decisions the
// failing check depends on that were made after it.
func (c *Controller) backtrack(ctx context.Context, failure *domain.ConstraintNotSatisfied) error {
	failing, ok := c.graph.Node(failure.Decision.Seq)
	if !ok {
		return domain.Violationf("failing decision %s is not recorded", failure.Decision)
	}
	culprit, ok := c.Culprit(failing)
	if !ok {
		c.logger.InfoContext(ctx, "no revisable decision left", "failing", failing.Ref().String())
		return &domain.SearchExhausted{Failing: failing.Ref(), Stats: c.Stats()}
	}

	rejected := culprit.Value
	l, _ := c.reg.Layer(culprit.Layer)
	l.Untracked().MarkFailed(culprit.Object(), culprit.Param, rejected)

	affected := c.graph.Retracted(culprit, failing)
	c.countCutOff(culprit, affected)
	if err := c.InvalidateSubtree(culprit, affected); err != nil {
		return err
	}

	culprit.Iteration = c.attempt + 1
	c.stats.Rollbacks++
	c.logger.InfoContext(ctx, "rolled back",
		"failing", failing.Ref().String(),
		"culprit", culprit.Ref().String(),
		"rejected", rejected,
		"affected", len(affected),
	)
	if c.hooks.OnRollback != nil {
		c.hooks.OnRollback(ctx, &domain.RollbackEvent{
			EventBase: domain.NewEventBase(domain.EventRollback, c.attempt),
			Failing:   failing.Ref(),
			Culprit:   culprit.Ref(),
			Rejected:  rejected,
			Affected:  len(affected),
		})
	}
	return nil
}

// InvalidateSubtree undoes affected (culprit first, then its dependents in
// dependency order) in reverse order. Every node but the culprit leaves the
// graph, and the steps of all of them are marked not completed.
func (c *Controller) InvalidateSubtree(culprit *decision.Node, affected []*decision.Node) error {
	deleted := make(map[registry.Ref]bool)
	for k := len(affected) - 1; k >= 0; k-- {
		n := affected[k]
		if err := c.undo(n, n == culprit, deleted); err != nil {
			return err
		}
		c.completed[n.Step] = false
		if n == culprit {
			continue
		}
		if n.Op == domain.OpChoose {
			c.liveChoices--
		}
		c.graph.Remove(n)
		c.stats.RolledBack++
	}
	return nil
}

func (c *Controller) undo(n *decision.Node, isCulprit bool, deleted map[registry.Ref]bool) error {
	l, ok := c.reg.Layer(n.Layer)
	if !ok {
		return domain.Violationf("decision %s refers to unknown layer %q", n.Ref(), n.Layer)
	}
	u := l.Untracked()

	switch n.Op {
	case domain.OpChoose:
		for _, id := range n.Objects {
			if err := c.present(n, l, id, deleted); err != nil {
				return err
			}
			if !l.Graph().Has(id) {
				continue
			}
			u.ClearValue(id, n.Param)
			if !isCulprit {
				u.ClearFailed(id, n.Param)
			}
		}

	case domain.OpNarrow:
		for _, id := range n.Objects {
			if err := c.present(n, l, id, deleted); err != nil {
				return err
			}
			if l.Graph().Has(id) {
				if err := u.ClearCandidates(id, n.Param); err != nil {
					return &domain.ContractViolation{Step: n.Step, Reason: "rollback of " + n.Ref().String(), Err: err}
				}
			}
			for _, e := range c.steps[n.Step].Engines {
				if r, ok := e.(ports.Resetter); ok {
					r.Reset(id)
				}
			}
		}

	case domain.OpTranslate:
		dst, ok := c.reg.Layer(n.Target)
		if !ok {
			return domain.Violationf("decision %s targets unknown layer %q", n.Ref(), n.Target)
		}
		src := n.Object()
		if err := c.present(n, l, src, deleted); err != nil {
			return err
		}
		for _, pid := range n.Produced {
			if err := c.present(n, dst, pid, deleted); err != nil {
				return err
			}
			if !dst.Graph().Has(pid) {
				continue
			}
			layer.Dissociate(l, src, dst, pid)
			refs, err := c.reg.Delete(dst.Name(), pid)
			if err != nil {
				return &domain.ContractViolation{Step: n.Step, Reason: "rollback of " + n.Ref().String(), Err: err}
			}
			for _, ref := range refs {
				deleted[ref] = true
				c.graph.Forget(ref.Layer, ref.ID)
			}
		}
	}
	return nil
}

// present fails with a dangling-reference violation when an object a
// decision refers to is gone and was not deleted by the current rollback.
func (c *Controller) present(n *decision.Node, l *layer.Layer, id graph.ID, deleted map[registry.Ref]bool) error {
	if l.Graph().Has(id) || deleted[registry.Ref{Layer: l.Name(), ID: id}] {
		return nil
	}
	return &domain.ContractViolation{
		Step:   n.Step,
		Engine: n.EngineName,
		Reason: "dangling reference: decision " + n.Ref().String() + " refers to deleted " + l.Name() + " object",
		Err:    graph.ErrNotFound,
	}
}

// countCutOff adds the combinations of the choices made after the culprit
// that survive the rollback: a chronological search would enumerate them
// again.
func (c *Controller) countCutOff(culprit *decision.Node, affected []*decision.Node) {
	undone := make(map[*decision.Node]bool, len(affected))
	for _, n := range affected {
		undone[n] = true
	}
	product := big.NewInt(1)
	kept := false
	for _, n := range c.graph.Nodes() {
		if n.Op != domain.OpChoose || undone[n] || n.Seq < culprit.Seq {
			continue
		}
		l, _ := c.reg.Layer(n.Layer)
		size := l.Slot(n.Object(), n.Param).Candidates.Len()
		if size == 0 {
			continue
		}
		product.Mul(product, big.NewInt(int64(size)))
		kept = true
	}
	if kept {
		c.stats.CutOff.Add(c.stats.CutOff, product.Sub(product, big.NewInt(1)))
	}
}
