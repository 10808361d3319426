// Package collation provides the collation graph: the hypergraph that merges
// several witnesses of a text into one structure.
//
// # Overview
//
// A [Graph] holds two delimiter nodes shared by all witnesses (start and end),
// a [TextNode] per aligned position, directed [TextEdge] values labelled with
// the sigils of the witnesses that traverse them, and markup hyperedges that
// connect every [MarkupNode] to the text nodes it covers.
//
// A TextNode holds at most one token per witness. Two witnesses agree at a
// position when their tokens sit in the same node; they diverge where their
// edges do.
//
// # Identity
//
// Nodes, edges and markup nodes live in arenas and are addressed by
// [NodeID], [EdgeID] and [MarkupNodeID]. Between two nodes there is at most
// one edge per direction: connecting the same pair again adds the sigil to
// the existing edge.
//
// # Traversal
//
// [Graph.Ranking] computes longest-path ranks from the start delimiter with
// [rank.Compute]. Ranks are derived data, recomputed after every mutation,
// and [Graph.Traverse] returns nodes in a stable topological order.
//
// # Coalescing
//
// [Coalesce] returns a copy of the graph in which chains of nodes that carry
// the same witnesses, markup and element paths are merged into single nodes.
// Coalescing is idempotent.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. A graph that is no longer
// mutated may be read from multiple goroutines after [Graph.Validate] (which
// also computes the cached ranking) has returned.
package collation
