// Package rank computes longest-path ranks over directed acyclic graphs.
//
// # Overview
//
// Collation orders everything by rank: the rank of a node is one plus the
// highest rank among its direct predecessors, with the root at rank 0. The
// same computation serves a single witness graph (vertices reachable from
// the witness start sentinel) and the running collation graph (text nodes
// reachable from the shared start delimiter).
//
// [Compute] performs a Kahn-style traversal. A node enters the frontier only
// once every incoming edge has been settled, so each node is ranked exactly
// once and never revisited.
//
//	r := rank.Compute(root, g.Next, g.Prev)
//	r.Of(v)      // rank of v
//	r.At(3)      // nodes with rank 3, in settle order
//
// Nodes unreachable from the root never receive a rank. This is not an
// error; [Ranking.Of] reports them with ok == false.
//
// # Monotonicity
//
// For every edge a→b between ranked nodes, Of(b) > Of(a). [Ranking.Check]
// verifies this for a caller-supplied edge list.
package rank
