/*
Package pipeline provides a fluent API for declaring the steps of a search.

A Step binds one operation (narrow, choose, translate or validate) to one
layer and to the engines implementing it. Steps run over all nodes of their
layer, or all edges with OnEdges, optionally restricted to some object
types.

Example:

	steps := []*pipeline.Step{
		pipeline.Narrow("functional", "platform", platforms),
		pipeline.Choose("functional", "platform", cheapest),
		pipeline.Translate("functional", "component", copier),
		pipeline.Validate("component", capacity).OnEdges(),
	}

Check verifies the engine set once and fixes the call form (per object or
batch) used by the runtime.
*/
package pipeline
