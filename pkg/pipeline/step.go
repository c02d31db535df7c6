package pipeline

import (
	"fmt"
	"slices"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Step is one operation over the objects of a layer.
type Step struct {
	Name    string
	Op      domain.OpKind
	Layer   string
	Param   string
	Target  string
	Edges   bool
	Types   []string
	Engines []ports.Engine

	checked bool
	batch   []bool
}

// Narrow declares a narrowing of param on layer. Engines compose as an
// AND-filter.
func Narrow(layer, param string, engines ...ports.Engine) *Step {
	return &Step{Op: domain.OpNarrow, Layer: layer, Param: param, Engines: engines}
}

// Choose declares the choice of param on layer by a single engine.
func Choose(layer, param string, engine ports.Engine) *Step {
	return &Step{Op: domain.OpChoose, Layer: layer, Param: param, Engines: []ports.Engine{engine}}
}

// Translate declares the translation of layer objects into target.
func Translate(layer, target string, engine ports.Engine) *Step {
	return &Step{Op: domain.OpTranslate, Layer: layer, Target: target, Engines: []ports.Engine{engine}}
}

// Validate declares checks over layer objects.
func Validate(layer string, engines ...ports.Engine) *Step {
	return &Step{Op: domain.OpValidate, Layer: layer, Engines: engines}
}

// OnEdges makes the step iterate over edges instead of nodes.
func (s *Step) OnEdges() *Step {
	s.Edges = true
	return s
}

// OfType restricts the step to objects of the given types.
func (s *Step) OfType(types ...string) *Step {
	s.Types = append(s.Types, types...)
	return s
}

// Named sets the name used in logs and dumps.
func (s *Step) Named(name string) *Step {
	s.Name = name
	return s
}

// Label returns the step name, or a derived one.
func (s *Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Op {
	case domain.OpTranslate:
		return fmt.Sprintf("%s %s->%s", s.Op, s.Layer, s.Target)
	case domain.OpValidate:
		return fmt.Sprintf("%s %s", s.Op, s.Layer)
	}
	return fmt.Sprintf("%s %s.%s", s.Op, s.Layer, s.Param)
}

// Accepts reports whether an object type is in scope of the step.
func (s *Step) Accepts(typ string) bool {
	return len(s.Types) == 0 || slices.Contains(s.Types, typ)
}

// Batch reports whether engine i is called in batch form. Check must have
// succeeded before.
func (s *Step) Batch(i int) bool { return s.batch[i] }

// Check validates the engine set and fixes the call form of every engine.
func (s *Step) Check() error {
	if s.checked {
		return nil
	}
	if len(s.Engines) == 0 {
		return s.violation("no engine")
	}
	for _, e := range s.Engines {
		if e == nil {
			return s.violation("nil engine")
		}
	}
	var err error
	switch s.Op {
	case domain.OpNarrow:
		err = s.checkNarrow()
	case domain.OpChoose:
		err = s.checkChoose()
	case domain.OpTranslate:
		err = s.checkTranslate()
	case domain.OpValidate:
		err = s.checkValidate()
	default:
		err = s.violation("unknown operation %q", s.Op)
	}
	if err != nil {
		return err
	}
	s.checked = true
	return nil
}

func (s *Step) checkParam() error {
	switch s.Param {
	case "":
		return s.violation("missing parameter")
	case domain.ParamObject, domain.ParamProduced:
		return s.violation("%s is not a parameter", s.Param)
	}
	for _, e := range s.Engines {
		if !e.ACL().CanWrite(s.Layer, s.Param) {
			return s.violation("engine %q does not declare %s.%s as written", e.Name(), s.Layer, s.Param)
		}
	}
	return nil
}

func (s *Step) checkNarrow() error {
	if err := s.checkParam(); err != nil {
		return err
	}
	perObject, batch := 0, 0
	for _, e := range s.Engines {
		if _, ok := e.(ports.Narrower); ok {
			perObject++
		}
		if _, ok := e.(ports.BatchNarrower); ok {
			batch++
		}
	}
	switch {
	case perObject == len(s.Engines):
		s.batch = make([]bool, len(s.Engines))
	case batch == len(s.Engines):
		s.batch = slices.Repeat([]bool{true}, len(s.Engines))
	default:
		return s.violation("batch and per-object narrowers cannot be mixed")
	}
	return nil
}

func (s *Step) checkChoose() error {
	if len(s.Engines) != 1 {
		return s.violation("exactly one chooser required, got %d", len(s.Engines))
	}
	if err := s.checkParam(); err != nil {
		return err
	}
	switch s.Engines[0].(type) {
	case ports.Chooser:
		s.batch = []bool{false}
	case ports.BatchChooser:
		s.batch = []bool{true}
	default:
		return s.violation("engine %q cannot choose", s.Engines[0].Name())
	}
	return nil
}

func (s *Step) checkTranslate() error {
	if len(s.Engines) != 1 {
		return s.violation("exactly one translator required, got %d", len(s.Engines))
	}
	if s.Target == "" || s.Target == s.Layer {
		return s.violation("invalid target layer %q", s.Target)
	}
	if _, ok := s.Engines[0].(ports.Translator); !ok {
		return s.violation("engine %q cannot translate", s.Engines[0].Name())
	}
	s.batch = []bool{false}
	return nil
}

func (s *Step) checkValidate() error {
	s.batch = make([]bool, len(s.Engines))
	for i, e := range s.Engines {
		switch e.(type) {
		case ports.Checker:
		case ports.BatchChecker:
			s.batch[i] = true
		default:
			return s.violation("engine %q cannot check", e.Name())
		}
	}
	return nil
}

func (s *Step) violation(format string, args ...any) error {
	return &domain.ContractViolation{Reason: fmt.Sprintf("step %q: ", s.Label()) + fmt.Sprintf(format, args...)}
}
