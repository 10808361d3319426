package collate

import (
	"fmt"
	"slices"

	"github.com/matzehuels/hypercollate/pkg/collation"
	"github.com/matzehuels/hypercollate/pkg/rank"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// CollatedMatch pairs a node already placed in the collation graph with a
// vertex of the witness being merged.
type CollatedMatch struct {
	Node       collation.NodeID
	Vertex     witness.VertexID
	NodeRank   int
	VertexRank int

	// BranchPaths is the union of the node's branch paths and the vertex's
	// branch path, keyed by sigil.
	BranchPaths map[string][]int

	order *matchOrder
}

// matchOrder holds reachability in the collation graph and in the witness
// being merged. Candidates of one merge share it.
type matchOrder struct {
	nodes    *rank.Reachability[collation.NodeID]
	vertices *rank.Reachability[witness.VertexID]
}

func newMatchOrder(g *collation.Graph, w *witness.Graph) *matchOrder {
	return &matchOrder{
		nodes:    rank.Reach(g.Ranking(), g.Successors),
		vertices: rank.Reach(w.Ranking(), w.Next),
	}
}

// ordered reports whether a path joins the nodes or the vertices of two
// matches. Without reachability every pair counts as ordered.
func (o *matchOrder) ordered(a, b CollatedMatch) bool {
	if o == nil {
		return true
	}
	return (o.nodes != nil && o.nodes.Ordered(a.Node, b.Node)) ||
		(o.vertices != nil && o.vertices.Ordered(a.Vertex, b.Vertex))
}

func (c CollatedMatch) String() string {
	return fmt.Sprintf("n%d@%d~v%d@%d", c.Node, c.NodeRank, c.Vertex, c.VertexRank)
}

// Overlaps reports whether every sigil the two matches share has branch
// paths in a prefix relation. Matches sharing no sigil overlap trivially.
func (c CollatedMatch) Overlaps(o CollatedMatch) bool {
	for s, p := range c.BranchPaths {
		q, ok := o.BranchPaths[s]
		if ok && !witness.Related(p, q) {
			return false
		}
	}
	return true
}

// Crosses reports whether the two matches order their nodes and their
// vertices in opposite directions by rank.
func (c CollatedMatch) Crosses(o CollatedMatch) bool {
	return (c.NodeRank < o.NodeRank && c.VertexRank > o.VertexRank) ||
		(c.NodeRank > o.NodeRank && c.VertexRank < o.VertexRank)
}

// conflicts reports whether c and m cannot both be chosen. A crossing
// pair may stand only when its branch paths do not overlap and neither its
// nodes nor its vertices are joined by a path, as with readings on
// parallel branches. Every cycle in a merged graph has a consecutive pair
// of matches that fails this test.
func (c CollatedMatch) conflicts(m CollatedMatch) bool {
	if m.Node == c.Node || m.Vertex == c.Vertex {
		return true
	}
	return c.Crosses(m) && (c.Overlaps(m) || c.order.ordered(c, m))
}

// mainLine is the branch path of sentinels.
var mainLine = []int{0}

// collatedMatches turns the matches of the witness being merged against
// already merged witnesses into candidates over the collation graph. Matches
// that resolve to the same (node, vertex) pair are reported once.
func collatedMatches(g *collation.Graph, placed map[string][]collation.NodeID, w *witness.Graph, matches []Match) []CollatedMatch {
	sigil := w.Sigil()
	ranking := g.Ranking()
	order := newMatchOrder(g, w)

	type key struct {
		n collation.NodeID
		v witness.VertexID
	}
	seen := make(map[key]bool)
	var out []CollatedMatch

	for _, m := range MatchesFor(matches, sigil) {
		v, _ := m.Vertex(sigil)
		vr, _ := m.Rank(sigil)
		for _, e := range m.entries {
			nodes, merged := placed[e.Sigil]
			if e.Sigil == sigil || !merged {
				continue
			}
			n := nodes[e.Vertex]
			if seen[key{n, v}] {
				continue
			}
			seen[key{n, v}] = true

			paths := g.Node(n).BranchPaths()
			if tok := w.Token(v); tok != nil {
				paths[sigil] = slices.Clone(tok.BranchPath)
			} else {
				paths[sigil] = slices.Clone(mainLine)
			}
			out = append(out, CollatedMatch{
				Node:        n,
				Vertex:      v,
				NodeRank:    ranking.MustOf(n),
				VertexRank:  vr,
				BranchPaths: paths,
				order:       order,
			})
		}
	}
	return out
}
