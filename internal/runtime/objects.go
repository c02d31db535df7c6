package runtime

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
)

// scope returns the layer of a step and the objects it iterates over.
func (c *Controller) scope(s *pipeline.Step) (*layer.Layer, []graph.ID, error) {
	l, ok := c.reg.Layer(s.Layer)
	if !ok {
		return nil, nil, domain.Violationf("step %q: unknown layer %q", s.Label(), s.Layer)
	}
	ids := l.Graph().Nodes()
	if s.Edges {
		ids = l.Graph().Edges()
	}
	out := ids[:0]
	for _, id := range ids {
		if obj, _ := l.Object(id); s.Accepts(obj.Type) {
			out = append(out, id)
		}
	}
	return l, out, nil
}

// applies reports whether an engine operates on objects of typ.
func applies(e ports.Engine, typ string) bool {
	src := e.SourceTypes()
	return len(src) == 0 || slices.Contains(src, typ)
}

// filter keeps the objects an engine operates on.
func filter(l *layer.Layer, e ports.Engine, ids []graph.ID) []graph.ID {
	var out []graph.ID
	for _, id := range ids {
		if obj, ok := l.Object(id); ok && applies(e, obj.Type) {
			out = append(out, id)
		}
	}
	return out
}

func existence(layerName string, ids ...graph.ID) []decision.Key {
	keys := make([]decision.Key, len(ids))
	for i, id := range ids {
		keys[i] = decision.Key{Layer: layerName, Param: domain.ParamObject, Obj: id}
	}
	return keys
}

func slots(layerName, param string, ids ...graph.ID) []decision.Key {
	keys := make([]decision.Key, len(ids))
	for i, id := range ids {
		keys[i] = decision.Key{Layer: layerName, Param: param, Obj: id}
	}
	return keys
}

// engineError wraps a failure returned by an engine with its context. It
// is fatal unless it is a constraint failure.
func engineError(s *pipeline.Step, e ports.Engine, obj graph.ID, err error) error {
	if obj == graph.None {
		return fmt.Errorf("step %q, engine %q: %w", s.Label(), e.Name(), err)
	}
	return fmt.Errorf("step %q, engine %q, object %d: %w", s.Label(), e.Name(), obj, err)
}

func violation(s *pipeline.Step, index int, e ports.Engine, format string, args ...any) error {
	v := &domain.ContractViolation{Step: index, Reason: fmt.Sprintf("step %q: ", s.Label()) + fmt.Sprintf(format, args...)}
	if e != nil {
		v.Engine = e.Name()
	}
	return v
}

// checkView turns a refused read into a violation carrying the step.
func checkView(v *view, index int) error {
	if v.err == nil {
		return nil
	}
	var cv *domain.ContractViolation
	if errors.As(v.err, &cv) {
		cv.Step = index
	}
	return v.err
}
