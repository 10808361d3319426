package witness

import (
	"errors"
	"slices"
	"testing"
)

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph("W1")
	a := g.AddContent(Token{Content: "a"})

	tests := []struct {
		name     string
		from, to VertexID
		want     error
	}{
		{"valid", g.Start(), a, nil},
		{"duplicate is no-op", g.Start(), a, nil},
		{"unknown", a, 99, ErrUnknownVertex},
		{"self loop", a, a, ErrSelfLoop},
		{"into start", a, g.Start(), ErrSentinelEdge},
		{"out of end", g.End(), a, ErrSentinelEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
	if got := g.Next(g.Start()); len(got) != 1 {
		t.Errorf("duplicate edge recorded: %v", got)
	}
}

func TestGraph_Validate(t *testing.T) {
	t.Run("dangling", func(t *testing.T) {
		g := NewGraph("W1")
		a := g.AddContent(Token{Content: "a"})
		_ = g.AddEdge(g.Start(), a)
		if err := g.Validate(); !errors.Is(err, ErrDangling) {
			t.Errorf("Validate() = %v, want ErrDangling", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		g := NewGraph("W1")
		a := g.AddContent(Token{Content: "a"})
		b := g.AddContent(Token{Content: "b"})
		_ = g.AddEdge(g.Start(), a)
		_ = g.AddEdge(a, b)
		_ = g.AddEdge(b, a)
		_ = g.AddEdge(b, g.End())
		if err := g.Validate(); !errors.Is(err, ErrUnreachable) {
			t.Errorf("Validate() = %v, want ErrUnreachable", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		g := NewGraph("W1")
		a := g.AddContent(Token{Content: "a"})
		_ = g.AddEdge(g.Start(), a)
		_ = g.AddEdge(a, g.End())
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
		if got := g.Ranking().MustOf(g.End()); got != 2 {
			t.Errorf("rank(end) = %d, want 2", got)
		}
	})
}

func TestGraph_Markup(t *testing.T) {
	g := NewGraph("W1")
	a := g.AddContent(Token{Content: "a"})
	outer := g.AddMarkup("text", nil, 0)
	inner := g.AddMarkup("hi", map[string]string{"rend": "bold"}, 1)
	_ = g.Annotate(outer, a)
	_ = g.Annotate(inner, a)
	_ = g.Annotate(inner, a)

	ms := g.MarkupsFor(a)
	if len(ms) != 2 || ms[0].Tag != "text" || ms[1].Tag != "hi" {
		t.Fatalf("MarkupsFor() = %+v", ms)
	}
	if ms[1].Attributes["rend"] != "bold" || ms[1].Depth != 1 {
		t.Errorf("inner markup = %+v", ms[1])
	}
	if got := g.VerticesFor(inner); !slices.Equal(got, []VertexID{a}) {
		t.Errorf("VerticesFor() = %v", got)
	}
	if err := g.Annotate(42, a); !errors.Is(err, ErrUnknownMarkup) {
		t.Errorf("Annotate(unknown) = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello ", "hello"},
		{"  ÄBC\n", "äbc"},
		{"é", "é"},
		{"two  words", "two words"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := NormalizeExact("Hello "); got != "Hello" {
		t.Errorf("NormalizeExact() = %q, want Hello", got)
	}
}

func TestRelated(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{[]int{0}, []int{0}, true},
		{[]int{0}, []int{0, 3}, true},
		{[]int{0, 3, 4}, []int{0, 3}, true},
		{[]int{0, 1}, []int{0, 2}, false},
		{[]int{0, 1, 2}, []int{0, 1, 3}, false},
	}
	for _, tt := range tests {
		if got := Related(tt.a, tt.b); got != tt.want {
			t.Errorf("Related(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
