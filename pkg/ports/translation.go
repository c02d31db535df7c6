package ports

import "github.com/aretw0/archsynth/pkg/graph"

// Endpoint references an edge end: either an object already present in the
// target layer or an earlier entry of the same Translation.
type Endpoint struct {
	ID    graph.ID
	Index int
	Local bool
}

// Existing references an object of the target layer.
func Existing(id graph.ID) Endpoint { return Endpoint{ID: id} }

// Local references the i-th produced object of the same Translation.
func Local(i int) Endpoint { return Endpoint{Index: i, Local: true} }

// ObjectSpec describes an object to create in the target layer.
type ObjectSpec struct {
	Kind   graph.Kind
	Type   string
	Name   string
	Params map[string]any
	Source Endpoint
	Target Endpoint
}

// NodeSpec describes a node.
func NodeSpec(typ, name string, params map[string]any) ObjectSpec {
	return ObjectSpec{Kind: graph.KindNode, Type: typ, Name: name, Params: params}
}

// EdgeSpec describes an edge.
func EdgeSpec(typ, name string, source, target Endpoint, params map[string]any) ObjectSpec {
	return ObjectSpec{Kind: graph.KindEdge, Type: typ, Name: name, Source: source, Target: target, Params: params}
}

// Translation is the result of translating one object.
type Translation struct {
	Produced []ObjectSpec
	// PassThrough copies the source object unchanged into the target
	// layer. Edge endpoints are resolved through the associations of the
	// source edge endpoints.
	PassThrough bool
}
