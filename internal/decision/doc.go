/*
Package decision records the decisions of a search and the dependencies
between them.

Every operation instance (narrowing, choosing, translating or checking one
object) becomes a Node. Reads resolve against a writer index, keyed by
(layer, parameter, object), to the node that last wrote the slot; the
resulting dependency set is reduced to its closest antichain before the
node is linked.

How the dependencies are materialised is up to the backend:

  - Linear keeps a chronological chain and ignores them.
  - Topological keeps the real DAG plus one linear extension, resequenced
    when a node joins several branches.
  - Tree keeps at most one parent per node, merging branches into a single
    chain ordered by iteration.

Root paths, descendant sets and the overall order all come from the
backend, which is what makes backtracking chronological or not.
*/
package decision
