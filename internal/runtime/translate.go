package runtime

import (
	"context"
	"slices"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
)

func (c *Controller) translate(ctx context.Context, i int, s *pipeline.Step) error {
	src, ids, err := c.scope(s)
	if err != nil {
		return err
	}
	dst, ok := c.reg.Layer(s.Target)
	if !ok {
		return violation(s, i, nil, "unknown target layer %q", s.Target)
	}
	e := s.Engines[0].(ports.Translator)

	for _, id := range filter(src, e, ids) {
		op := decision.OpKey{Step: i, Obj: id}
		if _, live := c.graph.Lookup(op); live {
			continue
		}
		v := c.newView(e, src.Name())
		tr, err := e.Translate(ctx, v, id, dst.Name())
		if err != nil {
			return engineError(s, e, id, err)
		}
		if tr.PassThrough {
			if len(tr.Produced) > 0 {
				return violation(s, i, e, "object %d: pass-through with produced objects", id)
			}
			spec, err := c.passThrough(v, src, dst, id)
			if err != nil {
				return violation(s, i, e, "object %d: %v", id, err)
			}
			tr.Produced = []ports.ObjectSpec{spec}
		}
		if err := checkView(v, i); err != nil {
			return err
		}

		produced, endpoints, err := c.materialize(s, i, e, dst, tr.Produced)
		if err != nil {
			return err
		}
		for _, pid := range produced {
			layer.Associate(src, id, dst, pid)
		}
		if len(produced) > 0 {
			c.reopen(i)
		}

		reads := append(existence(src.Name(), id), v.reads...)
		reads = append(reads, existence(dst.Name(), endpoints...)...)
		writes := []decision.Key{{Layer: src.Name(), Param: domain.ParamProduced, Obj: id}}
		writes = append(writes, existence(dst.Name(), produced...)...)

		n := &decision.Node{
			Op: domain.OpTranslate, Step: i, Layer: src.Name(),
			Objects: []graph.ID{id}, Iteration: c.attempt, EngineName: e.Name(),
			Target: dst.Name(), Produced: produced,
		}
		c.graph.Record(op, n, reads, writes)
		c.recorded(ctx, n)
	}
	return nil
}

// reopen marks every step after i not completed, so the objects a
// translation adds after a rollback still get narrowed, chosen and checked.
// Completed steps skip live decisions, so running them again is harmless.
func (c *Controller) reopen(i int) {
	for j := i + 1; j < len(c.completed); j++ {
		c.completed[j] = false
	}
}

// passThrough describes an unchanged copy of obj in dst. Edge endpoints are
// the unique counterparts of the source edge endpoints.
func (c *Controller) passThrough(v *view, src, dst *layer.Layer, id graph.ID) (ports.ObjectSpec, error) {
	obj, _ := src.Object(id)
	if !obj.IsEdge() {
		return ports.NodeSpec(obj.Type, obj.Name, obj.Params), nil
	}
	var ends [2]ports.Endpoint
	for k, end := range []graph.ID{obj.Source, obj.Target} {
		peers := v.Associated(src.Name(), end, dst.Name())
		if len(peers) != 1 {
			return ports.ObjectSpec{}, domain.Violationf("endpoint %d has %d counterparts in %s", end, len(peers), dst.Name())
		}
		ends[k] = ports.Existing(peers[0])
	}
	return ports.EdgeSpec(obj.Type, obj.Name, ends[0], ends[1], obj.Params), nil
}

// materialize creates the produced objects in dst. It returns their IDs and
// the pre-existing objects they were attached to.
func (c *Controller) materialize(s *pipeline.Step, i int, e ports.Translator, dst *layer.Layer, specs []ports.ObjectSpec) ([]graph.ID, []graph.ID, error) {
	targets := e.TargetTypes()
	produced := make([]graph.ID, 0, len(specs))
	var endpoints []graph.ID

	resolve := func(k int, ep ports.Endpoint) (graph.ID, error) {
		if ep.Local {
			if ep.Index < 0 || ep.Index >= k {
				return graph.None, violation(s, i, e, "produced object %d references local %d", k, ep.Index)
			}
			return produced[ep.Index], nil
		}
		if !dst.Graph().Has(ep.ID) {
			return graph.None, violation(s, i, e, "produced object %d references missing %s object %d", k, dst.Name(), ep.ID)
		}
		if !slices.Contains(endpoints, ep.ID) {
			endpoints = append(endpoints, ep.ID)
		}
		return ep.ID, nil
	}

	for k, spec := range specs {
		if len(targets) > 0 && !slices.Contains(targets, spec.Type) {
			return nil, nil, violation(s, i, e, "produced type %q is not among %v", spec.Type, targets)
		}
		switch spec.Kind {
		case graph.KindNode:
			produced = append(produced, dst.Graph().AddNode(spec.Type, spec.Name, spec.Params))
		case graph.KindEdge:
			from, err := resolve(k, spec.Source)
			if err != nil {
				return nil, nil, err
			}
			to, err := resolve(k, spec.Target)
			if err != nil {
				return nil, nil, err
			}
			id, err := dst.Graph().AddEdge(spec.Type, spec.Name, from, to, spec.Params)
			if err != nil {
				return nil, nil, violation(s, i, e, "produced object %d: %v", k, err)
			}
			produced = append(produced, id)
		default:
			return nil, nil, violation(s, i, e, "produced object %d has no kind", k)
		}
	}
	return produced, endpoints, nil
}
