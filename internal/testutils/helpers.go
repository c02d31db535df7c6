package testutils

import (
	"context"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Base implements ports.Engine for closure-backed test engines.
type Base struct {
	EngineName string
	Access     ports.ACL
	Sources    []string
}

func (b Base) Name() string          { return b.EngineName }
func (b Base) ACL() ports.ACL        { return b.Access }
func (b Base) SourceTypes() []string { return b.Sources }

// Writes builds a Base writing param on layer and reading reads there.
func Writes(name, layer, param string, reads ...string) Base {
	return Base{EngineName: name, Access: ports.ACL{layer: {Reads: reads, Writes: []string{param}}}}
}

// Reads builds a Base reading params on layer.
func Reads(name, layer string, params ...string) Base {
	return Base{EngineName: name, Access: ports.ACL{layer: {Reads: params}}}
}

// Narrower is a per-object narrower backed by a closure. It records the
// objects it was reset for.
type Narrower struct {
	Base
	Fn     func(ctx context.Context, v ports.View, obj graph.ID, acc domain.Set) (domain.Set, error)
	Resets []graph.ID
	Calls  int
}

func (n *Narrower) Narrow(ctx context.Context, v ports.View, obj graph.ID, acc domain.Set) (domain.Set, error) {
	n.Calls++
	return n.Fn(ctx, v, obj, acc)
}

func (n *Narrower) Reset(obj graph.ID) { n.Resets = append(n.Resets, obj) }

// Static narrows every object to the same values.
func Static(layer, param string, values ...any) *Narrower {
	set := domain.NewSet(values...)
	return &Narrower{
		Base: Writes("static", layer, param),
		Fn: func(context.Context, ports.View, graph.ID, domain.Set) (domain.Set, error) {
			return set, nil
		},
	}
}

// PerObject narrows each object by name.
func PerObject(layer, param string, values map[string][]any) *Narrower {
	return &Narrower{
		Base: Writes("per-object", layer, param),
		Fn: func(_ context.Context, v ports.View, obj graph.ID, _ domain.Set) (domain.Set, error) {
			o, _ := v.Object(layer, obj)
			return domain.NewSet(values[o.Name]...), nil
		},
	}
}

// Chooser is a per-object chooser backed by a closure.
type Chooser struct {
	Base
	Fn    func(ctx context.Context, v ports.View, obj graph.ID, available domain.Set) (any, error)
	Calls int
}

func (c *Chooser) Choose(ctx context.Context, v ports.View, obj graph.ID, available domain.Set) (any, error) {
	c.Calls++
	return c.Fn(ctx, v, obj, available)
}

// First chooses the first available value.
func First(layer, param string) *Chooser {
	return &Chooser{
		Base: Writes("first", layer, param),
		Fn: func(_ context.Context, _ ports.View, _ graph.ID, available domain.Set) (any, error) {
			v, _ := available.First()
			return v, nil
		},
	}
}

// Translator is a translator backed by a closure.
type Translator struct {
	Base
	Targets []string
	Fn      func(ctx context.Context, v ports.View, obj graph.ID, target string) (ports.Translation, error)
	Calls   int
}

func (t *Translator) TargetTypes() []string { return t.Targets }

func (t *Translator) Translate(ctx context.Context, v ports.View, obj graph.ID, target string) (ports.Translation, error) {
	t.Calls++
	return t.Fn(ctx, v, obj, target)
}

// PassThrough copies every object unchanged into the target layer.
func PassThrough() *Translator {
	return &Translator{
		Base: Base{EngineName: "pass-through"},
		Fn: func(context.Context, ports.View, graph.ID, string) (ports.Translation, error) {
			return ports.Translation{PassThrough: true}, nil
		},
	}
}

// Checker is a per-object checker backed by a closure.
type Checker struct {
	Base
	Fn    func(ctx context.Context, v ports.View, obj graph.ID) (bool, error)
	Calls int
}

func (c *Checker) Check(ctx context.Context, v ports.View, obj graph.ID) (bool, error) {
	c.Calls++
	return c.Fn(ctx, v, obj)
}

// Forbid fails every object whose param equals one of values.
func Forbid(layer, param string, values ...any) *Checker {
	bad := domain.NewSet(values...)
	return &Checker{
		Base: Reads("forbid", layer, param),
		Fn: func(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
			val, ok := v.Value(layer, obj, param)
			return !ok || !bad.Contains(val), nil
		},
	}
}

// BatchChecker is a batch checker backed by a closure.
type BatchChecker struct {
	Base
	Fn func(ctx context.Context, v ports.View, objs []graph.ID) (bool, graph.ID, error)
}

func (c *BatchChecker) CheckBatch(ctx context.Context, v ports.View, objs []graph.ID) (bool, graph.ID, error) {
	return c.Fn(ctx, v, objs)
}
