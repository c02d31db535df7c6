/*
Package dsl provides a Go DSL for constructing archsynth problems.

It is the programmatic counterpart of the YAML problem files: the builder
produces a validated *problem.Problem that can be solved through a
session.Manager or built into an Engine directly.

Example usage:

	b := dsl.New("platforms").Backend("tree")

	b.Layer("functional").
		Node("sensor", "component").
		Node("planner", "component").
		Edge("link", "data", "sensor", "planner")
	b.Layer("component")

	b.Narrow("functional", "platform").Engine("static", map[string]any{"values": []string{"arm", "x86"}})
	b.Choose("functional", "platform").Engine("first", nil)
	b.Validate("functional").OnEdges().Engine("endpoints", map[string]any{"param": "platform"})
	b.Translate("functional", "component").Engine("copy", nil)

	p, err := b.Build()
*/
package dsl
