/*
Package graph provides the directed multigraph every layer is built on.

Objects (nodes and edges) live in an arena and are addressed by a stable
integer ID. IDs are never reused inside one Graph, so a deleted object can
be detected by any holder of its ID instead of turning into a dangling
pointer.
*/
package graph
