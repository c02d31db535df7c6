package domain

import (
	"fmt"

	"github.com/aretw0/archsynth/pkg/graph"
)

// Pseudo-parameters used for dependency tracking. They are not stored in
// any parameter slot.
const (
	// ParamObject stands for the existence of an object.
	ParamObject = "@object"
	// ParamProduced stands for the set of objects a translation produced
	// from a source object.
	ParamProduced = "@produced"
)

// OpKind identifies the four operations.
type OpKind string

const (
	OpRoot      OpKind = "root"
	OpNarrow    OpKind = "narrow"
	OpChoose    OpKind = "choose"
	OpTranslate OpKind = "translate"
	OpValidate  OpKind = "validate"
)

// DecisionRef describes a recorded decision outside the engine.
type DecisionRef struct {
	Seq       uint64     `json:"seq"`
	Kind      OpKind     `json:"kind"`
	Step      int        `json:"step"`
	Engine    string     `json:"engine,omitempty"`
	Layer     string     `json:"layer,omitempty"`
	Param     string     `json:"param,omitempty"`
	Objects   []graph.ID `json:"objects,omitempty"`
	Iteration int        `json:"iteration"`
}

func (d DecisionRef) String() string {
	s := fmt.Sprintf("#%d %s", d.Seq, d.Kind)
	if d.Engine != "" {
		s += " " + d.Engine
	}
	if d.Layer != "" {
		s += fmt.Sprintf(" %s%v", d.Layer, d.Objects)
	}
	if d.Param != "" {
		s += "." + d.Param
	}
	return s
}
