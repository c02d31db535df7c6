package engines

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Forbid rejects objects whose Param is one of Values.
type Forbid struct {
	base
	param  string
	values domain.Set
}

type forbidArgs struct {
	Param  string `mapstructure:"param"`
	Values []any  `mapstructure:"values"`
}

func newForbid(b Binding, args map[string]any) (ports.Engine, error) {
	var a forbidArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Param == "" {
		return nil, errors.New("forbid needs a param")
	}
	return &Forbid{base: reader(b, a.Param), param: a.Param, values: domain.NewSet(a.Values...)}, nil
}

func (f *Forbid) Check(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
	val, ok := v.Value(v.Layer(), obj, f.param)
	return !ok || !f.values.Contains(val), nil
}

// Endpoints compares Param on both ends of an edge: with Mode "same" they
// must match, with "different" they must not. Ends without a value pass.
type Endpoints struct {
	base
	param string
	same  bool
}

type endpointsArgs struct {
	Param string `mapstructure:"param"`
	Mode  string `mapstructure:"mode"`
}

func newEndpoints(b Binding, args map[string]any) (ports.Engine, error) {
	a := endpointsArgs{Mode: "same"}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Param == "" {
		return nil, errors.New("endpoints needs a param")
	}
	if a.Mode != "same" && a.Mode != "different" {
		return nil, fmt.Errorf("endpoints mode must be same or different, got %q", a.Mode)
	}
	return &Endpoints{base: reader(b, a.Param), param: a.Param, same: a.Mode == "same"}, nil
}

func (e *Endpoints) Check(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
	layer := v.Layer()
	o, ok := v.Object(layer, obj)
	if !ok || !o.IsEdge() {
		return true, nil
	}
	a, okA := v.Value(layer, o.Source, e.param)
	b, okB := v.Value(layer, o.Target, e.param)
	if !okA || !okB {
		return true, nil
	}
	return (a == b) == e.same, nil
}

// Distinct requires Param to differ across all checked objects. The second
// object of the first clash is reported.
type Distinct struct {
	base
	param string
}

type distinctArgs struct {
	Param string `mapstructure:"param"`
}

func newDistinct(b Binding, args map[string]any) (ports.Engine, error) {
	var a distinctArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Param == "" {
		return nil, errors.New("distinct needs a param")
	}
	return &Distinct{base: reader(b, a.Param), param: a.Param}, nil
}

func (d *Distinct) CheckBatch(_ context.Context, v ports.View, objs []graph.ID) (bool, graph.ID, error) {
	seen := make(map[any]bool)
	for _, id := range objs {
		val, ok := v.Value(v.Layer(), id, d.param)
		if !ok {
			continue
		}
		if seen[val] {
			return false, id, nil
		}
		seen[val] = true
	}
	return true, graph.None, nil
}

// Capacity bounds how many objects may share a value of Param. Limits
// overrides Limit per value.
type Capacity struct {
	base
	param  string
	limit  int
	limits map[string]int
}

type capacityArgs struct {
	Param  string         `mapstructure:"param"`
	Limit  int            `mapstructure:"limit"`
	Limits map[string]int `mapstructure:"limits"`
}

func newCapacity(b Binding, args map[string]any) (ports.Engine, error) {
	var a capacityArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Param == "" {
		return nil, errors.New("capacity needs a param")
	}
	if a.Limit <= 0 && len(a.Limits) == 0 {
		return nil, errors.New("capacity needs a positive limit or per-value limits")
	}
	return &Capacity{base: reader(b, a.Param), param: a.Param, limit: a.Limit, limits: a.Limits}, nil
}

func (c *Capacity) limitFor(val any) int {
	if n, ok := c.limits[fmt.Sprint(val)]; ok {
		return n
	}
	if c.limit <= 0 {
		return int(^uint(0) >> 1)
	}
	return c.limit
}

func (c *Capacity) CheckBatch(_ context.Context, v ports.View, objs []graph.ID) (bool, graph.ID, error) {
	used := make(map[any]int)
	for _, id := range objs {
		val, ok := v.Value(v.Layer(), id, c.param)
		if !ok {
			continue
		}
		used[val]++
		if used[val] > c.limitFor(val) {
			return false, id, nil
		}
	}
	return true, graph.None, nil
}
