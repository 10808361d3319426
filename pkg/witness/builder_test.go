package witness

import (
	"errors"
	"slices"
	"testing"
)

func contents(g *Graph, ids []VertexID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if tok := g.Token(id); tok != nil {
			out[i] = tok.Content
		} else if id == g.Start() {
			out[i] = "#start"
		} else {
			out[i] = "#end"
		}
	}
	return out
}

func TestBuilder_Linear(t *testing.T) {
	b := NewBuilder("W1")
	b.OpenMarkup("text", nil)
	a := b.AddToken("Hello ")
	w := b.AddToken("World")
	b.CloseMarkup()

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := contents(g, g.Next(g.Start())); !slices.Equal(got, []string{"Hello "}) {
		t.Errorf("Next(start) = %v", got)
	}
	if got := g.Next(a); !slices.Equal(got, []VertexID{w}) {
		t.Errorf("Next(a) = %v, want [%d]", got, w)
	}
	if got := contents(g, g.Next(w)); !slices.Equal(got, []string{"#end"}) {
		t.Errorf("Next(w) = %v, want [#end]", got)
	}

	tok := g.Token(w)
	if tok.Sigil != "W1" || tok.Index != 1 || tok.Path != "/text" {
		t.Errorf("token = %+v", tok)
	}
	if tok.Normalized != "world" {
		t.Errorf("Normalized = %q, want %q", tok.Normalized, "world")
	}
	if !slices.Equal(tok.BranchPath, []int{0}) {
		t.Errorf("BranchPath = %v, want [0]", tok.BranchPath)
	}
}

func TestBuilder_DelAdd(t *testing.T) {
	b := NewBuilder("W1")
	pre := b.AddToken("a ")
	b.BeginVariation()
	b.BeginBranch()
	b.OpenMarkup("del", nil)
	x := b.AddToken("x ")
	b.CloseMarkup()
	b.EndBranch()
	b.BeginBranch()
	b.OpenMarkup("add", nil)
	y := b.AddToken("y ")
	b.CloseMarkup()
	b.EndBranch()
	b.EndVariation()
	post := b.AddToken("b")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := g.Next(pre); !slices.Equal(got, []VertexID{x, y}) {
		t.Errorf("Next(pre) = %v, want fan-out to x and y", got)
	}
	if got := g.Prev(post); !slices.Equal(got, []VertexID{x, y}) {
		t.Errorf("Prev(post) = %v, want reconvergence from x and y", got)
	}

	bx, by := g.Token(x).BranchPath, g.Token(y).BranchPath
	if !slices.Equal(bx, []int{0, 1}) || !slices.Equal(by, []int{0, 2}) {
		t.Errorf("branch paths = %v, %v; want [0 1], [0 2]", bx, by)
	}
	if Related(bx, by) {
		t.Error("sibling readings must not be prefix-related")
	}
	if !Related(g.Token(pre).BranchPath, bx) {
		t.Error("main line must be a prefix of a nested branch")
	}
	if g.Token(x).Path != "/del" {
		t.Errorf("Path = %q, want /del", g.Token(x).Path)
	}

	r := g.Ranking()
	if r.MustOf(x) != r.MustOf(y) {
		t.Errorf("parallel readings ranked %d and %d", r.MustOf(x), r.MustOf(y))
	}
}

func TestBuilder_EmptyBranchSkips(t *testing.T) {
	b := NewBuilder("W1")
	pre := b.AddToken("a ")
	b.BeginVariation()
	b.BeginBranch()
	b.OpenMarkup("del", map[string]string{"instant": "true"})
	x := b.AddToken("x ")
	b.CloseMarkup()
	b.EndBranch()
	b.BeginBranch()
	b.EndBranch()
	b.EndVariation()
	post := b.AddToken("b")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := g.Next(pre); !slices.Equal(got, []VertexID{x, post}) {
		t.Errorf("Next(pre) = %v, want [x post]", got)
	}
	if got := g.Token(x).Path; got != "/"+ImmediateDeletionSegment {
		t.Errorf("Path = %q, want /%s", got, ImmediateDeletionSegment)
	}
}

func TestBuilder_NestedBranchPaths(t *testing.T) {
	b := NewBuilder("W1")
	b.BeginVariation()
	b.BeginBranch() // 1
	b.BeginVariation()
	b.BeginBranch() // 2
	inner := b.AddToken("p ")
	b.EndBranch()
	b.BeginBranch() // 3
	other := b.AddToken("q ")
	b.EndBranch()
	b.EndVariation()
	b.EndBranch()
	b.BeginBranch() // 4
	sib := b.AddToken("r ")
	b.EndBranch()
	b.EndVariation()

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tests := []struct {
		v    VertexID
		want []int
	}{
		{inner, []int{0, 1, 2}},
		{other, []int{0, 1, 3}},
		{sib, []int{0, 4}},
	}
	for _, tt := range tests {
		if got := g.Token(tt.v).BranchPath; !slices.Equal(got, tt.want) {
			t.Errorf("BranchPath(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestBuilder_Milestone(t *testing.T) {
	b := NewBuilder("W1")
	b.AddToken("a ")
	b.OpenMarkup("lb", nil)
	lb := b.AddToken("")
	b.CloseMarkup()
	b.AddToken("b")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !g.Token(lb).IsMilestone() {
		t.Error("empty token should be a milestone")
	}
	if got := g.EnclosingTag(lb); got != "lb" {
		t.Errorf("EnclosingTag() = %q, want lb", got)
	}
}

func TestBuilder_Unbalanced(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{"close without open", func(b *Builder) { b.CloseMarkup() }, ErrUnbalancedMarkup},
		{"open markup at end", func(b *Builder) { b.OpenMarkup("p", nil) }, ErrUnbalancedMarkup},
		{"branch outside variation", func(b *Builder) { b.BeginBranch() }, ErrUnbalancedVariation},
		{"end branch twice", func(b *Builder) {
			b.BeginVariation()
			b.BeginBranch()
			b.EndBranch()
			b.EndBranch()
		}, ErrUnbalancedVariation},
		{"variation left open", func(b *Builder) { b.BeginVariation() }, ErrUnbalancedVariation},
		{"end variation inside branch", func(b *Builder) {
			b.BeginVariation()
			b.BeginBranch()
			b.EndVariation()
		}, ErrUnbalancedVariation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("W1")
			tt.build(b)
			if _, err := b.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_EmptyWitness(t *testing.T) {
	g, err := NewBuilder("W1").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := g.Next(g.Start()); !slices.Equal(got, []VertexID{g.End()}) {
		t.Errorf("Next(start) = %v, want [end]", got)
	}
	if len(g.ContentVertices()) != 0 {
		t.Errorf("ContentVertices() = %v, want none", g.ContentVertices())
	}
}
