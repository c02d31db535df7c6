package runtime

import (
	"fmt"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/ports"
)

// view is the tracked ports.View handed to one engine call. It records
// every read as a decision key and refuses reads outside the engine ACL.
type view struct {
	c      *Controller
	engine ports.Engine
	layer  string
	reads  []decision.Key
	err    error
}

func (c *Controller) newView(e ports.Engine, layerName string) *view {
	return &view{c: c, engine: e, layer: layerName}
}

func (v *view) Layer() string { return v.layer }

func (v *view) read(layerName, param string, id graph.ID) (*layer.Layer, bool) {
	l, ok := v.c.reg.Layer(layerName)
	if !ok {
		v.fail("read of unknown layer %q", layerName)
		return nil, false
	}
	if !v.engine.ACL().CanRead(layerName, param) {
		v.fail("read of %s.%s is not declared", layerName, param)
		return nil, false
	}
	v.reads = append(v.reads, decision.Key{Layer: layerName, Param: param, Obj: id})
	return l, true
}

func (v *view) fail(format string, args ...any) {
	if v.err == nil {
		v.err = &domain.ContractViolation{Engine: v.engine.Name(), Reason: fmt.Sprintf(format, args...)}
	}
}

func (v *view) Object(layerName string, id graph.ID) (*graph.Object, bool) {
	l, ok := v.read(layerName, domain.ParamObject, id)
	if !ok {
		return nil, false
	}
	return l.Object(id)
}

func (v *view) Nodes(layerName string) []graph.ID { return v.list(layerName, false) }

func (v *view) Edges(layerName string) []graph.ID { return v.list(layerName, true) }

func (v *view) list(layerName string, edges bool) []graph.ID {
	l, ok := v.c.reg.Layer(layerName)
	if !ok {
		v.fail("read of unknown layer %q", layerName)
		return nil
	}
	ids := l.Graph().Nodes()
	if edges {
		ids = l.Graph().Edges()
	}
	for _, id := range ids {
		v.read(layerName, domain.ParamObject, id)
	}
	return ids
}

func (v *view) Candidates(layerName string, id graph.ID, param string) domain.Set {
	l, ok := v.read(layerName, param, id)
	if !ok {
		return domain.NewSet()
	}
	return l.Candidates(id, param)
}

func (v *view) Value(layerName string, id graph.ID, param string) (any, bool) {
	l, ok := v.read(layerName, param, id)
	if !ok {
		return nil, false
	}
	return l.Value(id, param)
}

func (v *view) Associated(layerName string, id graph.ID, other string) []graph.ID {
	if _, ok := v.read(layerName, domain.ParamObject, id); !ok {
		return nil
	}
	l, _ := v.read(layerName, domain.ParamProduced, id)
	if _, ok := v.c.reg.Layer(other); !ok {
		v.fail("read of unknown layer %q", other)
		return nil
	}
	return l.Associated(other, id)
}
