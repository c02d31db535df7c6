package domain

import (
	"math/big"
	"time"
)

// Stats summarises a search.
type Stats struct {
	// Attempts counts passes over the step sequence.
	Attempts int `json:"attempts"`
	// Rollbacks counts handled failures.
	Rollbacks int `json:"rollbacks"`
	// RolledBack counts decisions removed by rollbacks.
	RolledBack int `json:"rolled_back"`
	// Decisions is the number of live decisions at the end.
	Decisions int `json:"decisions"`
	// PeakChoices is the largest number of live choose decisions seen.
	PeakChoices int `json:"peak_choices"`
	// SearchSpace is the product of candidate set sizes of the live
	// choose decisions at the end.
	SearchSpace *big.Int `json:"search_space"`
	// CutOff estimates the combinations skipped because rollbacks kept
	// independent decisions alive.
	CutOff   *big.Int      `json:"cut_off"`
	Duration time.Duration `json:"duration"`
}

// Outcome of a search.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeFailed    Outcome = "failed"
)

// Report is the final summary of a search, suitable for rendering and
// persisting.
type Report struct {
	Outcome Outcome        `json:"outcome"`
	Backend string         `json:"backend"`
	Stats   Stats          `json:"stats"`
	Layers  []LayerSummary `json:"layers"`
	Error   string         `json:"error,omitempty"`
}

// LayerSummary describes the final contents of one layer.
type LayerSummary struct {
	Name   string                    `json:"name"`
	Nodes  int                       `json:"nodes"`
	Edges  int                       `json:"edges"`
	Values map[string]map[string]any `json:"values,omitempty"`
}
