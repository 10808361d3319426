package collation

import (
	"slices"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
)

// Validate checks the structural invariants of the graph:
//
//   - every markup node has exactly one hyperedge
//   - there is at most one edge per node pair and direction, and every edge
//     carries at least one registered sigil
//   - every token sits under its own sigil and every node sigil is registered
//   - every registered sigil leaves the start delimiter and reaches the end
//   - every node is reachable from the start and the graph has no cycles
//
// Violations are reported as INVARIANT_VIOLATION errors. Validate also
// caches the ranking, so a validated graph can be read concurrently.
func (g *Graph) Validate() error {
	for _, m := range g.markups {
		if n := len(g.hyperByNode[m.ID]); n != 1 {
			return hcerrors.Invariant("markup node %d (%s of %s) has %d hyperedges", m.ID, m.Markup.Tag, m.Sigil, n)
		}
	}

	seen := make(map[[2]NodeID]bool, len(g.edges))
	for _, e := range g.edges {
		key := [2]NodeID{e.From, e.To}
		if seen[key] {
			return hcerrors.Invariant("duplicate edge %d -> %d", e.From, e.To)
		}
		seen[key] = true
		if len(e.sigils) == 0 {
			return hcerrors.Invariant("edge %d -> %d carries no sigils", e.From, e.To)
		}
		for _, s := range e.sigils {
			if !slices.Contains(g.sigils, s) {
				return hcerrors.Invariant("edge %d -> %d carries unregistered sigil %q", e.From, e.To, s)
			}
		}
	}

	for _, n := range g.nodes {
		for _, s := range n.sigils {
			if !slices.Contains(g.sigils, s) {
				return hcerrors.Invariant("node %d carries unregistered sigil %q", n.ID, s)
			}
			if tok := n.tokens[s]; tok == nil || tok.Sigil != s {
				return hcerrors.Invariant("node %d: token for %q missing or mislabelled", n.ID, s)
			}
		}
		if n.Kind == NodeText && len(n.sigils) == 0 {
			return hcerrors.Invariant("text node %d holds no tokens", n.ID)
		}
	}

	for _, s := range g.sigils {
		if !g.hasSigilEdge(g.out[g.Start()], s) || !g.hasSigilEdge(g.in[g.End()], s) {
			return hcerrors.Invariant("witness %q does not span start to end", s)
		}
	}

	if r := g.Ranking(); r.Len() != len(g.nodes) {
		return hcerrors.Invariant("%d of %d nodes unreachable from start or on a cycle", len(g.nodes)-r.Len(), len(g.nodes))
	}
	return nil
}

func (g *Graph) hasSigilEdge(ids []EdgeID, sigil string) bool {
	for _, id := range ids {
		if g.edges[id].HasSigil(sigil) {
			return true
		}
	}
	return false
}
