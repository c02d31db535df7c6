package layer

import "github.com/aretw0/archsynth/pkg/domain"

// State of a parameter slot.
type State uint8

const (
	Unset State = iota
	CandidatesKnown
	ValueChosen
)

func (s State) String() string {
	switch s {
	case CandidatesKnown:
		return "candidates_known"
	case ValueChosen:
		return "value_chosen"
	}
	return "unset"
}

// Slot is the value/candidates/failed record of one (object, parameter).
type Slot struct {
	Value      any        `json:"value,omitempty"`
	HasValue   bool       `json:"has_value,omitempty"`
	Candidates domain.Set `json:"candidates"`
	Known      bool       `json:"known,omitempty"`
	Failed     domain.Set `json:"failed"`
}

// State derives the slot state.
func (s Slot) State() State {
	switch {
	case s.HasValue:
		return ValueChosen
	case s.Known:
		return CandidatesKnown
	}
	return Unset
}

// Remaining returns the candidates not yet rejected.
func (s Slot) Remaining() domain.Set {
	return s.Candidates.Minus(s.Failed)
}
