package engines

import (
	"fmt"
	"sort"

	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Binding tells a factory where its engine is used.
type Binding struct {
	// Name overrides the engine name; it defaults to the kind.
	Name   string
	Layer  string
	Param  string
	Target string
	// Types restricts the engine to objects of these types.
	Types []string
}

// Factory builds an engine from loosely typed arguments.
type Factory func(b Binding, args map[string]any) (ports.Engine, error)

// Registry maps engine kinds to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry holding the built-in engines.
func Default() *Registry {
	r := NewRegistry()
	r.Register("static", newStatic)
	r.Register("exclude", newExclude)
	r.Register("first", newFirst)
	r.Register("last", newLast)
	r.Register("cost", newCost)
	r.Register("copy", newCopy)
	r.Register("proxy", newProxy)
	r.Register("forbid", newForbid)
	r.Register("endpoints", newEndpoints)
	r.Register("distinct", newDistinct)
	r.Register("capacity", newCapacity)
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Kinds lists the registered kinds.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build creates an engine of the given kind.
func (r *Registry) Build(kind string, b Binding, args map[string]any) (ports.Engine, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown engine kind %q", kind)
	}
	if b.Name == "" {
		b.Name = kind
	}
	e, err := f(b, args)
	if err != nil {
		return nil, fmt.Errorf("engine %q: %w", b.Name, err)
	}
	return e, nil
}

// decode fills out from args, rejecting unknown keys.
func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// base implements ports.Engine.
type base struct {
	name    string
	acl     ports.ACL
	sources []string
}

func (b base) Name() string          { return b.name }
func (b base) ACL() ports.ACL        { return b.acl }
func (b base) SourceTypes() []string { return b.sources }

// writer declares a write of the bound parameter plus reads on the same layer.
func writer(b Binding, reads ...string) base {
	return base{
		name:    b.Name,
		acl:     ports.ACL{b.Layer: {Reads: reads, Writes: []string{b.Param}}},
		sources: b.Types,
	}
}

// reader declares reads on the bound layer.
func reader(b Binding, reads ...string) base {
	return base{
		name:    b.Name,
		acl:     ports.ACL{b.Layer: {Reads: reads}},
		sources: b.Types,
	}
}
