package engines

import (
	"context"
	"fmt"

	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Copy copies every object unchanged into the target layer.
type Copy struct{ base }

func newCopy(b Binding, args map[string]any) (ports.Engine, error) {
	if err := decode(args, &struct{}{}); err != nil {
		return nil, err
	}
	return &Copy{base{name: b.Name, sources: b.Types}}, nil
}

func (c *Copy) TargetTypes() []string { return nil }

func (c *Copy) Translate(context.Context, ports.View, graph.ID, string) (ports.Translation, error) {
	return ports.Translation{PassThrough: true}, nil
}

// Proxy inserts a proxy node on every edge whose Param equals Value; other
// edges are copied. The endpoints must already have a single counterpart
// in the target layer.
type Proxy struct {
	base
	param    string
	value    any
	nodeType string
}

type proxyArgs struct {
	Param    string `mapstructure:"param"`
	Value    any    `mapstructure:"value"`
	NodeType string `mapstructure:"node_type"`
}

func newProxy(b Binding, args map[string]any) (ports.Engine, error) {
	a := proxyArgs{Param: "mode", Value: "proxy", NodeType: "proxy"}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return &Proxy{base: reader(b, a.Param), param: a.Param, value: a.Value, nodeType: a.NodeType}, nil
}

func (p *Proxy) TargetTypes() []string { return nil }

func (p *Proxy) Translate(_ context.Context, v ports.View, obj graph.ID, target string) (ports.Translation, error) {
	layer := v.Layer()
	e, ok := v.Object(layer, obj)
	if !ok || !e.IsEdge() {
		return ports.Translation{PassThrough: true}, nil
	}
	if val, ok := v.Value(layer, obj, p.param); !ok || fmt.Sprint(val) != fmt.Sprint(p.value) {
		return ports.Translation{PassThrough: true}, nil
	}

	src := v.Associated(layer, e.Source, target)
	dst := v.Associated(layer, e.Target, target)
	if len(src) != 1 || len(dst) != 1 {
		return ports.Translation{}, fmt.Errorf("edge %s: endpoints need exactly one counterpart in %s", e.Label(), target)
	}
	name := e.Label()
	return ports.Translation{Produced: []ports.ObjectSpec{
		ports.NodeSpec(p.nodeType, name+"-proxy", nil),
		ports.EdgeSpec(e.Type, name+"-in", ports.Existing(src[0]), ports.Local(0), e.Params),
		ports.EdgeSpec(e.Type, name+"-out", ports.Local(0), ports.Existing(dst[0]), e.Params),
	}}, nil
}
