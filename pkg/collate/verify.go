package collate

import (
	"fmt"
	"slices"

	"github.com/matzehuels/hypercollate/pkg/collation"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// Property names reported by Verify.
const (
	PropertyRankMonotonicity  = "rank-monotonicity"
	PropertyBijection         = "bijection"
	PropertyBranchExclusivity = "branch-exclusivity"
	PropertySigilCompleteness = "sigil-completeness"
)

// Violation is a failed property check.
type Violation struct {
	Property string
	Detail   string
}

func (v Violation) String() string { return v.Property + ": " + v.Detail }

// Verify checks the properties every collation result must have:
//
//   - every edge of the graph leads to a node of strictly higher rank, and
//     every node is ranked
//   - no node or vertex appears in two chosen matches of one merge, and no
//     two chosen matches cross unless they sit on parallel branches
//   - the edges labelled with a sigil are exactly the edges of that
//     witness, so tokens on exclusive branches are never joined by its path
//   - the graph's sigils are exactly the collated witnesses, and every node
//     carries only those
//
// Both the result graph and the uncoalesced graph are checked for ranks and
// sigils; branches are checked on the uncoalesced graph. Verify returns nil
// when all properties hold.
func Verify(res *Result) []Violation {
	var out []Violation
	graphs := []*collation.Graph{res.Graph}
	if res.Uncoalesced != nil && res.Uncoalesced != res.Graph {
		graphs = append(graphs, res.Uncoalesced)
	}
	for _, g := range graphs {
		out = append(out, verifyRanks(g)...)
		out = append(out, verifySigils(g, res.Sigils)...)
	}
	for _, w := range res.Witnesses {
		out = append(out, verifyBranches(graphs[len(graphs)-1], w)...)
	}
	for _, m := range res.Merges {
		out = append(out, verifyChosen(m)...)
	}
	return out
}

func verifyRanks(g *collation.Graph) []Violation {
	var out []Violation
	r := g.Ranking()
	if r.Len() != g.Len() {
		out = append(out, Violation{PropertyRankMonotonicity,
			fmt.Sprintf("%d of %d nodes unranked", g.Len()-r.Len(), g.Len())})
	}
	for _, e := range g.Edges() {
		from, okF := r.Of(e.From)
		to, okT := r.Of(e.To)
		if okF && okT && to <= from {
			out = append(out, Violation{PropertyRankMonotonicity,
				fmt.Sprintf("edge %d -> %d goes from rank %d to rank %d", e.From, e.To, from, to)})
		}
	}
	return out
}

func verifySigils(g *collation.Graph, want []string) []Violation {
	var out []Violation
	got := slices.Sorted(slices.Values(g.Sigils()))
	exp := slices.Sorted(slices.Values(want))
	if !slices.Equal(got, exp) {
		out = append(out, Violation{PropertySigilCompleteness,
			fmt.Sprintf("graph sigils %v, want %v", got, exp)})
	}
	for _, n := range g.TextNodes() {
		for _, s := range g.Node(n).Sigils() {
			if !slices.Contains(exp, s) {
				out = append(out, Violation{PropertySigilCompleteness,
					fmt.Sprintf("node %d carries unknown sigil %q", n, s)})
			}
		}
	}
	return out
}

func verifyChosen(m MergeStats) []Violation {
	var out []Violation
	nodes := make(map[collation.NodeID]int)
	vertices := make(map[witness.VertexID]int)
	for i, c := range m.Chosen {
		if j, ok := nodes[c.Node]; ok {
			out = append(out, Violation{PropertyBijection,
				fmt.Sprintf("%s: node %d chosen by matches %d and %d", m.Sigil, c.Node, j, i)})
		} else {
			nodes[c.Node] = i
		}
		if j, ok := vertices[c.Vertex]; ok {
			out = append(out, Violation{PropertyBijection,
				fmt.Sprintf("%s: vertex %d chosen by matches %d and %d", m.Sigil, c.Vertex, j, i)})
		} else {
			vertices[c.Vertex] = i
		}
		for _, p := range m.Chosen[:i] {
			if c.Crosses(p) && (c.Overlaps(p) || c.order.ordered(c, p)) {
				out = append(out, Violation{PropertyBranchExclusivity,
					fmt.Sprintf("%s: matches %v and %v cross outside parallel branches", m.Sigil, p, c)})
			}
		}
	}
	return out
}

// verifyBranches checks that the edges labelled with w's sigil join the
// nodes of w's tokens exactly as w joins its vertices.
func verifyBranches(g *collation.Graph, w *witness.Graph) []Violation {
	var out []Violation
	sigil := w.Sigil()

	vertexOf := make(map[*witness.Token]witness.VertexID, w.Len())
	for _, v := range w.ContentVertices() {
		vertexOf[w.Token(v)] = v
	}
	placed := map[collation.NodeID]witness.VertexID{
		g.Start(): w.Start(),
		g.End():   w.End(),
	}
	for _, n := range g.TextNodes() {
		tok := g.Node(n).Token(sigil)
		if tok == nil {
			continue
		}
		v, ok := vertexOf[tok]
		if !ok {
			out = append(out, Violation{PropertyBranchExclusivity,
				fmt.Sprintf("%s: node %d holds a token not in the witness", sigil, n)})
			continue
		}
		if !slices.Equal(g.Node(n).BranchPath(sigil), tok.BranchPath) {
			out = append(out, Violation{PropertyBranchExclusivity,
				fmt.Sprintf("%s: node %d has branch path %v, token has %v",
					sigil, n, g.Node(n).BranchPath(sigil), tok.BranchPath)})
		}
		placed[n] = v
	}
	if got := len(placed) - 2; got != len(vertexOf) {
		out = append(out, Violation{PropertyBranchExclusivity,
			fmt.Sprintf("%s: %d of %d tokens placed", sigil, got, len(vertexOf))})
	}

	want := 0
	for v := range w.Len() {
		want += len(w.Next(witness.VertexID(v)))
	}
	got := 0
	for _, e := range g.Edges() {
		if !e.HasSigil(sigil) {
			continue
		}
		got++
		from, okF := placed[e.From]
		to, okT := placed[e.To]
		if !okF || !okT || !slices.Contains(w.Next(from), to) {
			out = append(out, Violation{PropertyBranchExclusivity,
				fmt.Sprintf("%s: edge %d -> %d has no counterpart in the witness", sigil, e.From, e.To)})
		}
	}
	if got != want {
		out = append(out, Violation{PropertyBranchExclusivity,
			fmt.Sprintf("%s: %d labelled edges, witness has %d", sigil, got, want)})
	}
	return out
}
