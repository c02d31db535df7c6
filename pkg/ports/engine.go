package ports

import (
	"context"
	"slices"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// Access lists the parameters an engine reads and writes on one layer.
type Access struct {
	Reads  []string `json:"reads,omitempty" yaml:"reads,omitempty"`
	Writes []string `json:"writes,omitempty" yaml:"writes,omitempty"`
}

// ACL declares, per layer, what an engine may touch.
type ACL map[string]Access

// CanRead reports whether param of layer may be read. Existence of objects
// and translation results are always readable.
func (a ACL) CanRead(layer, param string) bool {
	if param == domain.ParamObject || param == domain.ParamProduced {
		return true
	}
	acc, ok := a[layer]
	return ok && (slices.Contains(acc.Reads, param) || slices.Contains(acc.Writes, param))
}

// CanWrite reports whether param of layer may be written.
func (a ACL) CanWrite(layer, param string) bool {
	acc, ok := a[layer]
	return ok && slices.Contains(acc.Writes, param)
}

// Engine is the common part of every domain policy.
type Engine interface {
	Name() string
	ACL() ACL
	// SourceTypes lists the object types the engine operates on; empty
	// means any.
	SourceTypes() []string
}

// Narrower proposes candidate values for one object. Engines of a step
// compose as an AND-filter: accumulated holds what the previous engines
// admitted (empty for the first engine).
type Narrower interface {
	Engine
	Narrow(ctx context.Context, v View, obj graph.ID, accumulated domain.Set) (domain.Set, error)
}

// BatchNarrower narrows all objects of a step in one call.
type BatchNarrower interface {
	Engine
	NarrowBatch(ctx context.Context, v View, objs []graph.ID) (map[graph.ID]domain.Set, error)
}

// Chooser picks one value out of available, which already excludes
// previously rejected values.
type Chooser interface {
	Engine
	Choose(ctx context.Context, v View, obj graph.ID, available domain.Set) (any, error)
}

// BatchChooser picks values for all pending objects of a step in one call.
type BatchChooser interface {
	Engine
	ChooseBatch(ctx context.Context, v View, available map[graph.ID]domain.Set) (map[graph.ID]any, error)
}

// Translator derives objects of a target layer from one source object.
type Translator interface {
	Engine
	TargetTypes() []string
	Translate(ctx context.Context, v View, obj graph.ID, target string) (Translation, error)
}

// Checker validates one object. It must not have side effects.
type Checker interface {
	Engine
	Check(ctx context.Context, v View, obj graph.ID) (bool, error)
}

// BatchChecker validates all objects of a step at once. On failure it
// names a representative object.
type BatchChecker interface {
	Engine
	CheckBatch(ctx context.Context, v View, objs []graph.ID) (ok bool, culprit graph.ID, err error)
}

// Resetter drops engine-side caches for an object whose narrowing is
// rolled back.
type Resetter interface {
	Reset(obj graph.ID)
}
