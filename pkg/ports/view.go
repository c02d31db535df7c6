package ports

import (
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// View is the read access an engine gets while a decision is made.
// Reads outside the engine ACL abort the run with a ContractViolation.
type View interface {
	// Layer is the layer the current step runs on.
	Layer() string
	Object(layer string, id graph.ID) (*graph.Object, bool)
	Nodes(layer string) []graph.ID
	Edges(layer string) []graph.ID
	Candidates(layer string, id graph.ID, param string) domain.Set
	Value(layer string, id graph.ID, param string) (any, bool)
	// Associated returns the objects of layer other linked with id.
	Associated(layer string, id graph.ID, other string) []graph.ID
}
