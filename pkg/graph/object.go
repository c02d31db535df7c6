package graph

import "fmt"

// ID addresses an object inside one Graph. Zero is never assigned.
type ID int

// None is the zero ID.
const None ID = 0

// Kind distinguishes nodes from edges.
type Kind uint8

const (
	KindNode Kind = iota + 1
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Object is a node or an edge. Its structure (kind, type, endpoints) is
// fixed once created; only Params may change.
type Object struct {
	ID   ID     `json:"id"`
	Kind Kind   `json:"kind"`
	Type string `json:"type"`
	Name string `json:"name"`

	// Source and Target are set for edges only.
	Source ID `json:"source,omitempty"`
	Target ID `json:"target,omitempty"`

	// Params holds attached attributes, e.g. the initial parameters a
	// translation gave the object.
	Params map[string]any `json:"params,omitempty"`
}

// IsEdge reports whether the object is an edge.
func (o *Object) IsEdge() bool { return o.Kind == KindEdge }

// Label returns a human readable identifier (name if set, else kind#id).
func (o *Object) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("%s#%d", o.Kind, o.ID)
}

// Param returns an attached attribute.
func (o *Object) Param(key string) (any, bool) {
	v, ok := o.Params[key]
	return v, ok
}

func (o *Object) clone() *Object {
	c := *o
	if o.Params != nil {
		c.Params = make(map[string]any, len(o.Params))
		for k, v := range o.Params {
			c.Params[k] = v
		}
	}
	return &c
}
