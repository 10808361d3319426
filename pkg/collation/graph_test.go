package collation

import (
	"slices"
	"testing"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

func tok(sigil, content, path string, branch ...int) *witness.Token {
	if len(branch) == 0 {
		branch = []int{0}
	}
	return &witness.Token{
		Content:    content,
		Normalized: witness.Normalize(content),
		Sigil:      sigil,
		Path:       path,
		BranchPath: branch,
	}
}

// chain builds start -> n1 -> ... -> end for one witness and returns the
// text nodes.
func chain(t *testing.T, g *Graph, sigil string, words ...string) []NodeID {
	t.Helper()
	g.AddSigil(sigil)
	prev := g.Start()
	var ids []NodeID
	for _, w := range words {
		n := g.AddTextNode()
		if err := g.AddToken(n, tok(sigil, w, "/text")); err != nil {
			t.Fatalf("AddToken() error = %v", err)
		}
		mustConnect(t, g, prev, n, sigil)
		prev = n
		ids = append(ids, n)
	}
	mustConnect(t, g, prev, g.End(), sigil)
	return ids
}

func mustConnect(t *testing.T, g *Graph, from, to NodeID, sigil string) {
	t.Helper()
	if _, err := g.Connect(from, to, sigil); err != nil {
		t.Fatalf("Connect(%d, %d, %s) error = %v", from, to, sigil, err)
	}
}

func TestConnect_AugmentsExistingEdge(t *testing.T) {
	g := NewGraph()
	g.AddSigil("A")
	g.AddSigil("B")
	n := g.AddTextNode()
	first, _ := g.Connect(g.Start(), n, "A")
	second, _ := g.Connect(g.Start(), n, "B")
	again, _ := g.Connect(g.Start(), n, "A")

	if first != second || first != again {
		t.Fatalf("edge IDs = %d, %d, %d; want one edge", first, second, again)
	}
	e, ok := g.Edge(g.Start(), n)
	if !ok {
		t.Fatal("Edge() not found")
	}
	if got := e.Sigils(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Sigils() = %v, want [A B]", got)
	}
	if len(g.Edges()) != 1 {
		t.Errorf("len(Edges()) = %d, want 1", len(g.Edges()))
	}
}

func TestConnect_Errors(t *testing.T) {
	g := NewGraph()
	n := g.AddTextNode()
	tests := []struct {
		name     string
		from, to NodeID
	}{
		{"self loop", n, n},
		{"into start", n, g.Start()},
		{"out of end", g.End(), n},
		{"unknown node", n, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Connect(tt.from, tt.to, "A")
			if !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
				t.Errorf("Connect() error = %v, want invariant violation", err)
			}
		})
	}
}

func TestAddToken(t *testing.T) {
	g := NewGraph()
	g.AddSigil("A")
	n := g.AddTextNode()

	if err := g.AddToken(n, tok("A", "x", "/t", 0, 2)); err != nil {
		t.Fatalf("AddToken() error = %v", err)
	}
	if err := g.AddToken(n, tok("A", "y", "/t")); err == nil {
		t.Error("second token of the same witness accepted")
	}
	if err := g.AddToken(n, tok("B", "x", "/t")); err == nil {
		t.Error("token of an unregistered witness accepted")
	}
	if err := g.AddToken(g.Start(), tok("A", "x", "/t")); err == nil {
		t.Error("token on the start delimiter accepted")
	}

	node := g.Node(n)
	if got := node.BranchPath("A"); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("BranchPath(A) = %v, want [0 2]", got)
	}
	if node.Token("A").Content != "x" || node.Token("B") != nil {
		t.Errorf("Token lookup wrong: %+v", node.Token("A"))
	}
}

func TestHyperEdges(t *testing.T) {
	g := NewGraph()
	ids := chain(t, g, "A", "a", "b", "c")
	m := g.MarkupNode("A", witness.Markup{ID: 0, Tag: "s"})
	if again := g.MarkupNode("A", witness.Markup{ID: 0, Tag: "s"}); again != m {
		t.Fatalf("MarkupNode() not idempotent: %d != %d", again, m)
	}

	for _, n := range []NodeID{ids[1], ids[0], ids[1]} {
		if err := g.Cover(m, n); err != nil {
			t.Fatalf("Cover() error = %v", err)
		}
	}
	if got := g.Covered(m); !slices.Equal(got, []NodeID{ids[1], ids[0]}) {
		t.Errorf("Covered() = %v, want [%d %d]", got, ids[1], ids[0])
	}
	if got := g.CoveringMarkup(ids[0]); len(got) != 1 || got[0].Markup.Tag != "s" {
		t.Errorf("CoveringMarkup() = %+v", got)
	}
	if err := g.AddHyperEdge(m, ids[2]); !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
		t.Errorf("second hyperedge error = %v, want invariant violation", err)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := NewGraph()
		chain(t, g, "A", "a", "b")
		chain(t, g, "B", "c")
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("markup without hyperedge", func(t *testing.T) {
		g := NewGraph()
		chain(t, g, "A", "a")
		g.MarkupNode("A", witness.Markup{ID: 3, Tag: "p"})
		if err := g.Validate(); !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
			t.Errorf("Validate() error = %v, want invariant violation", err)
		}
	})

	t.Run("witness not spanning", func(t *testing.T) {
		g := NewGraph()
		chain(t, g, "A", "a")
		g.AddSigil("B")
		if err := g.Validate(); !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
			t.Errorf("Validate() error = %v, want invariant violation", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		g := NewGraph()
		ids := chain(t, g, "A", "a", "b")
		mustConnect(t, g, ids[1], ids[0], "A")
		if err := g.Validate(); !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
			t.Errorf("Validate() error = %v, want invariant violation", err)
		}
	})

	t.Run("empty text node", func(t *testing.T) {
		g := NewGraph()
		chain(t, g, "A", "a")
		n := g.AddTextNode()
		mustConnect(t, g, g.Start(), n, "A")
		mustConnect(t, g, n, g.End(), "A")
		if err := g.Validate(); !hcerrors.Is(err, hcerrors.ErrCodeInvariant) {
			t.Errorf("Validate() error = %v, want invariant violation", err)
		}
	})
}

func TestTraverseAndRanking(t *testing.T) {
	g := NewGraph()
	a := chain(t, g, "A", "x", "y")
	b := g.AddTextNode()
	g.AddSigil("B")
	if err := g.AddToken(a[0], tok("B", "x", "/text")); err != nil {
		t.Fatal(err)
	}
	if err := g.AddToken(b, tok("B", "z", "/text")); err != nil {
		t.Fatal(err)
	}
	mustConnect(t, g, g.Start(), a[0], "B")
	mustConnect(t, g, a[0], b, "B")
	mustConnect(t, g, b, g.End(), "B")

	r := g.Ranking()
	if got := r.MustOf(g.End()); got != 3 {
		t.Errorf("rank(end) = %d, want 3", got)
	}
	if r.MustOf(a[1]) != r.MustOf(b) {
		t.Errorf("parallel nodes ranked %d and %d", r.MustOf(a[1]), r.MustOf(b))
	}
	order := g.Traverse()
	if order[0] != g.Start() || order[len(order)-1] != g.End() {
		t.Errorf("Traverse() = %v", order)
	}
	if got := g.Successors(a[0]); !slices.Equal(got, []NodeID{a[1], b}) {
		t.Errorf("Successors() = %v", got)
	}
	if got := g.Predecessors(g.End()); !slices.Equal(got, []NodeID{a[1], b}) {
		t.Errorf("Predecessors(end) = %v", got)
	}
}
