package domain

import (
	"time"

	"github.com/aretw0/archsynth/pkg/graph"
)

// Snapshot is a self-contained capture of a search: every layer object,
// parameter slot and association, plus the live decisions.
type Snapshot struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Problem   string             `json:"problem,omitempty"`
	Report    Report             `json:"report"`
	Layers    []LayerSnapshot    `json:"layers,omitempty"`
	Decisions []DecisionSnapshot `json:"decisions,omitempty"`

	// Sealed carries the encrypted capture when the snapshot went through
	// an encrypting store; the other content fields are then empty.
	Sealed []byte `json:"sealed,omitempty"`
}

// LayerSnapshot captures one layer.
type LayerSnapshot struct {
	Name         string                `json:"name"`
	Objects      []graph.Object        `json:"objects"`
	Slots        []SlotSnapshot        `json:"slots,omitempty"`
	Associations []AssociationSnapshot `json:"associations,omitempty"`
}

// SlotSnapshot captures one (object, parameter) slot.
type SlotSnapshot struct {
	Object     graph.ID `json:"object"`
	Param      string   `json:"param"`
	Value      any      `json:"value,omitempty"`
	HasValue   bool     `json:"has_value,omitempty"`
	Candidates Set      `json:"candidates"`
	Failed     Set      `json:"failed"`
}

// AssociationSnapshot captures the links of one object towards one layer.
type AssociationSnapshot struct {
	Object graph.ID   `json:"object"`
	Layer  string     `json:"layer"`
	Peers  []graph.ID `json:"peers"`
}

// DecisionSnapshot captures one live decision and its parents.
type DecisionSnapshot struct {
	DecisionRef
	Parents    []uint64   `json:"parents,omitempty"`
	Value      any        `json:"value,omitempty"`
	Candidates *Set       `json:"candidates,omitempty"`
	Target     string     `json:"target,omitempty"`
	Produced   []graph.ID `json:"produced,omitempty"`
}

// Layer returns the captured layer by name.
func (s *Snapshot) Layer(name string) (*LayerSnapshot, bool) {
	for i := range s.Layers {
		if s.Layers[i].Name == name {
			return &s.Layers[i], true
		}
	}
	return nil, false
}
