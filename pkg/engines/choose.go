package engines

import (
	"context"
	"fmt"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
)

// First picks the first available value.
type First struct{ base }

func newFirst(b Binding, args map[string]any) (ports.Engine, error) {
	if err := decode(args, &struct{}{}); err != nil {
		return nil, err
	}
	return &First{writer(b)}, nil
}

func (f *First) Choose(_ context.Context, _ ports.View, _ graph.ID, available domain.Set) (any, error) {
	v, _ := available.First()
	return v, nil
}

// Last picks the last available value.
type Last struct{ base }

func newLast(b Binding, args map[string]any) (ports.Engine, error) {
	if err := decode(args, &struct{}{}); err != nil {
		return nil, err
	}
	return &Last{writer(b)}, nil
}

func (l *Last) Choose(_ context.Context, _ ports.View, _ graph.ID, available domain.Set) (any, error) {
	vals := available.Values()
	return vals[len(vals)-1], nil
}

// Cost picks the cheapest available value. Values without a cost use
// Default; ties keep the candidate order.
type Cost struct {
	base
	costs map[string]float64
	def   float64
}

type costArgs struct {
	Costs   map[string]float64 `mapstructure:"costs"`
	Default float64            `mapstructure:"default"`
}

func newCost(b Binding, args map[string]any) (ports.Engine, error) {
	var a costArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return &Cost{base: writer(b), costs: a.Costs, def: a.Default}, nil
}

func (c *Cost) cost(v any) float64 {
	if x, ok := c.costs[fmt.Sprint(v)]; ok {
		return x
	}
	return c.def
}

func (c *Cost) Choose(_ context.Context, _ ports.View, _ graph.ID, available domain.Set) (any, error) {
	var best any
	bestCost := 0.0
	for i, v := range available.Values() {
		if x := c.cost(v); i == 0 || x < bestCost {
			best, bestCost = v, x
		}
	}
	return best, nil
}
