// Package witness models one variant version of a text as a token graph.
//
// # Overview
//
// A witness is a directed acyclic graph of token vertices between two
// sentinels, a start vertex and an end vertex. Plain text is a single
// chain. Wherever the markup expresses variation (a deletion followed by
// an addition, a substitution, an apparatus with several readings) the
// chain splits into parallel branches that reconverge downstream:
//
//	start → "The " → ┬ "quick " ┬ → "fox" → end
//	                 └ "slow "  ┘
//
// Vertices are stored in an arena and addressed by [VertexID]. Adjacency,
// markup associations and tokens are index relationships, never shared
// pointers between vertices.
//
// # Branch Paths
//
// Every [Token] carries a branch path: [0] for the main line, extended by
// one identifier for every variation branch the token is nested in.
// Identifiers are assigned in document order from a per-witness counter,
// so sibling readings of one variation point never share a path. Collation
// compares branch paths by prefix: two tokens on the same line of text
// have prefix-related paths, two sibling readings do not.
//
// # Building Graphs
//
// [Builder] turns a stream of markup and text events into a graph:
//
//	b := witness.NewBuilder("W1")
//	b.AddToken("The ")
//	b.BeginVariation()
//	b.BeginBranch()
//	b.OpenMarkup("del", nil)
//	b.AddToken("quick ")
//	b.CloseMarkup()
//	b.EndBranch()
//	b.BeginBranch()
//	b.OpenMarkup("add", nil)
//	b.AddToken("slow ")
//	b.CloseMarkup()
//	b.EndBranch()
//	b.EndVariation()
//	b.AddToken("fox")
//	g, err := b.Build()
//
// The lower-level [Graph.AddContent], [Graph.AddEdge] and [Graph.Annotate]
// calls build arbitrary graphs, e.g. when importing a serialized witness.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Once built it is read-only
// and may be shared by any number of concurrent collation runs.
package witness
