package collate

import (
	"github.com/matzehuels/hypercollate/pkg/collation"
	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// assembler merges witnesses into a collation graph one at a time and
// remembers where every witness vertex was placed.
type assembler struct {
	g      *collation.Graph
	placed map[string][]collation.NodeID // sigil -> vertex -> node
}

func newAssembler() *assembler {
	return &assembler{
		g:      collation.NewGraph(),
		placed: make(map[string][]collation.NodeID),
	}
}

// merge adds w to the graph. Vertices that are the target of a chosen
// match join the matched node; all others get new nodes. The first witness
// is merged with no matches.
func (a *assembler) merge(w *witness.Graph, chosen []CollatedMatch) error {
	sigil := w.Sigil()
	if _, ok := a.placed[sigil]; ok {
		return hcerrors.Invariant("witness %q merged twice", sigil)
	}
	a.g.AddSigil(sigil)

	matched := make(map[witness.VertexID]collation.NodeID, len(chosen))
	for _, c := range chosen {
		matched[c.Vertex] = c.Node
	}

	placed := make([]collation.NodeID, w.Len())
	placed[w.Start()] = a.g.Start()
	placed[w.End()] = a.g.End()

	order := w.Ranking().Order()
	for _, v := range order {
		tok := w.Token(v)
		if tok == nil {
			continue
		}
		n, ok := matched[v]
		if !ok {
			n = a.g.AddTextNode()
		}
		if err := a.g.AddToken(n, tok); err != nil {
			return err
		}
		placed[v] = n

		for _, m := range w.MarkupsFor(v) {
			if err := a.g.Cover(a.g.MarkupNode(sigil, m), n); err != nil {
				return err
			}
		}
	}

	for _, v := range order {
		for _, p := range w.Prev(v) {
			if _, err := a.g.Connect(placed[p], placed[v], sigil); err != nil {
				return err
			}
		}
	}

	a.placed[sigil] = placed
	return a.g.Validate()
}
