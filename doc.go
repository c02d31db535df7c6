/*
Package archsynth searches for a valid configuration of a component-based
software architecture.

A problem is a chain of layers, each holding a graph of objects (nodes and
edges) with named parameters. A pipeline of steps transforms the layers:

  - Narrow proposes candidate values for a parameter.
  - Choose picks one candidate per object.
  - Translate produces objects of the next layer from objects of this one.
  - Validate checks the current state and may reject it.

Every step records decisions together with the earlier decisions they read.
When a check fails, the engine looks for the nearest choice it depends on
that still has untried candidates, rejects its value and undoes everything
that depended on it, including objects derived in later layers. The other
decisions stay in place and the pipeline resumes from the first incomplete
step.

# Usage

Domain policies are engines implementing the capability interfaces of
package ports. Steps are built with package pipeline.

	eng := archsynth.New(archsynth.WithLogger(logger))
	fn, _ := eng.AddLayer("functional")
	x := fn.Graph().AddNode("component", "x", nil)

	_ = eng.AddStep(pipeline.Narrow("functional", "platform", platforms))
	_ = eng.AddStep(pipeline.Choose("functional", "platform", cheapest))
	_ = eng.AddStep(pipeline.Validate("functional", compatible))

	res, err := eng.Execute(ctx, "out", archsynth.Topological)

# Backends

Three strategies track decision dependencies. Linear keeps a single chain
and rolls back everything after the culprit. Topological keeps the full
dependency DAG and rolls back only the dependents of the culprit. Tree
keeps one parent per decision, merging branches when a decision depends
on several of them.

# Persistence

With WithStore, every search is captured as a domain.Snapshot and saved
through a ports.SnapshotStore (memory, file or Redis adapters are
provided). Stores can be wrapped by the middlewares of package
pkg/persistence/middleware to encrypt snapshots or mask sensitive values.
*/
package archsynth
