package engines

import (
	"context"
	"errors"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Static proposes the same values for every object, unless Objects lists
// values for the object by name.
type Static struct {
	base
	values  domain.Set
	objects map[string]domain.Set
}

type staticArgs struct {
	Values  []any            `mapstructure:"values"`
	Objects map[string][]any `mapstructure:"objects"`
}

func newStatic(b Binding, args map[string]any) (ports.Engine, error) {
	var a staticArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if len(a.Values) == 0 && len(a.Objects) == 0 {
		return nil, errors.New("static needs values or objects")
	}
	s := &Static{base: writer(b), values: domain.NewSet(a.Values...), objects: make(map[string]domain.Set)}
	for name, vals := range a.Objects {
		s.objects[name] = domain.NewSet(vals...)
	}
	return s, nil
}

func (s *Static) Narrow(_ context.Context, v ports.View, obj graph.ID, _ domain.Set) (domain.Set, error) {
	if len(s.objects) > 0 {
		if o, ok := v.Object(v.Layer(), obj); ok {
			if set, ok := s.objects[o.Name]; ok {
				return set, nil
			}
		}
	}
	return s.values, nil
}

// Exclude removes values from what the previous narrowers of the step
// admitted. Used as the first narrower it admits nothing.
type Exclude struct {
	base
	values domain.Set
}

type excludeArgs struct {
	Values []any `mapstructure:"values"`
}

func newExclude(b Binding, args map[string]any) (ports.Engine, error) {
	var a excludeArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return &Exclude{base: writer(b), values: domain.NewSet(a.Values...)}, nil
}

func (e *Exclude) Narrow(_ context.Context, _ ports.View, _ graph.ID, acc domain.Set) (domain.Set, error) {
	return acc.Minus(e.values), nil
}
