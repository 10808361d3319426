package collation

import (
	"slices"

	"github.com/matzehuels/hypercollate/pkg/witness"
)

// Coalesce returns a copy of g in which each text node is merged into its
// predecessor when
//
//   - the node has exactly one incoming edge and the predecessor exactly
//     one outgoing edge
//   - neither node is a delimiter
//   - both carry the same sigils, and for every sigil the tokens share the
//     element path and branch path
//   - both are covered by the same markup nodes
//
// Token content and normalized content are concatenated in graph order.
// Reachability, sigils and markup coverage are unchanged. The input graph is
// not modified; coalescing a coalesced graph yields an equal graph.
//
// Coalesce validates g first and returns its invariant error, if any.
func Coalesce(g *Graph) (*Graph, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	out := NewGraph()
	for _, s := range g.sigils {
		out.AddSigil(s)
	}

	mapped := make(map[NodeID]NodeID, len(g.nodes))
	mapped[g.Start()] = out.Start()
	mapped[g.End()] = out.End()

	for _, n := range g.Traverse() {
		node := g.nodes[n]
		if node.IsDelimiter() {
			continue
		}
		if p, ok := g.mergeTarget(n); ok {
			target := out.nodes[mapped[p]]
			for _, s := range node.sigils {
				tok := target.tokens[s]
				tok.Content += node.tokens[s].Content
				tok.Normalized += node.tokens[s].Normalized
			}
			mapped[n] = target.ID
			continue
		}

		id := out.AddTextNode()
		for _, s := range node.sigils {
			tok := copyToken(node.tokens[s])
			tok.BranchPath = node.branchPaths[s]
			if err := out.AddToken(id, tok); err != nil {
				return nil, err
			}
		}
		mapped[n] = id
	}

	for _, e := range g.edges {
		from, to := mapped[e.From], mapped[e.To]
		if from == to {
			continue
		}
		for _, s := range e.sigils {
			if _, err := out.Connect(from, to, s); err != nil {
				return nil, err
			}
		}
	}

	for _, m := range g.markups {
		id := out.MarkupNode(m.Sigil, m.Markup)
		for _, t := range g.Covered(m.ID) {
			if err := out.Cover(id, mapped[t]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func copyToken(tok *witness.Token) *witness.Token {
	c := *tok
	c.BranchPath = slices.Clone(tok.BranchPath)
	return &c
}

// mergeTarget returns the predecessor n merges into, if any.
func (g *Graph) mergeTarget(n NodeID) (NodeID, bool) {
	if len(g.in[n]) != 1 {
		return 0, false
	}
	p := g.edges[g.in[n][0]].From
	pred, node := g.nodes[p], g.nodes[n]
	if pred.IsDelimiter() || len(g.out[p]) != 1 {
		return 0, false
	}
	if !slices.Equal(sortedSigils(pred), sortedSigils(node)) {
		return 0, false
	}
	for _, s := range node.sigils {
		if pred.tokens[s].Path != node.tokens[s].Path ||
			!slices.Equal(pred.branchPaths[s], node.branchPaths[s]) {
			return 0, false
		}
	}
	return p, slices.Equal(sortedMarkup(g.covering[p]), sortedMarkup(g.covering[n]))
}

func sortedSigils(n *TextNode) []string { return slices.Sorted(slices.Values(n.sigils)) }

func sortedMarkup(ids []MarkupNodeID) []MarkupNodeID { return slices.Sorted(slices.Values(ids)) }
