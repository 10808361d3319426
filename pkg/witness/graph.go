package witness

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/hypercollate/pkg/rank"
)

var (
	// ErrUnknownVertex is returned when a VertexID does not belong to the graph.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrUnknownMarkup is returned when a MarkupID does not belong to the graph.
	ErrUnknownMarkup = errors.New("unknown markup")

	// ErrSentinelEdge is returned by AddEdge for edges into the start vertex
	// or out of the end vertex.
	ErrSentinelEdge = errors.New("edge violates sentinel direction")

	// ErrSelfLoop is returned by AddEdge when from == to.
	ErrSelfLoop = errors.New("self loop")

	// ErrDangling is returned by Validate when a content vertex lacks an
	// incoming or outgoing edge.
	ErrDangling = errors.New("content vertex without incoming or outgoing edge")

	// ErrUnreachable is returned by Validate when a vertex cannot be reached
	// from the start vertex, or lies on a cycle.
	ErrUnreachable = errors.New("vertex unreachable from start or on a cycle")
)

// VertexID addresses a vertex inside one Graph.
type VertexID int

// MarkupID addresses a markup instance inside one Graph.
type MarkupID int

// VertexKind distinguishes sentinels from content vertices.
type VertexKind int

const (
	// VertexContent carries exactly one Token.
	VertexContent VertexKind = iota
	// VertexStart is the witness's unique source.
	VertexStart
	// VertexEnd is the witness's unique sink.
	VertexEnd
)

// Vertex is a node of a witness graph.
type Vertex struct {
	ID    VertexID
	Kind  VertexKind
	Token *Token // nil for sentinels
}

// Markup is one element occurrence. Two Markups with the same tag are
// still distinct elements.
type Markup struct {
	ID         MarkupID
	Tag        string
	Attributes map[string]string
	Depth      int // Nesting depth when the element was opened
}

// Graph is the token graph of a single witness.
type Graph struct {
	sigil    string
	vertices []Vertex
	out      [][]VertexID
	in       [][]VertexID
	markups  []Markup

	markupsByVertex  map[VertexID][]MarkupID
	verticesByMarkup map[MarkupID][]VertexID

	contentCount int
	ranking      *rank.Ranking[VertexID]
}

// NewGraph creates an empty witness graph holding only its start and end
// sentinels. The sentinels are not connected.
func NewGraph(sigil string) *Graph {
	g := &Graph{
		sigil:            sigil,
		markupsByVertex:  make(map[VertexID][]MarkupID),
		verticesByMarkup: make(map[MarkupID][]VertexID),
	}
	g.addVertex(VertexStart, nil)
	g.addVertex(VertexEnd, nil)
	return g
}

func (g *Graph) addVertex(kind VertexKind, tok *Token) VertexID {
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, Vertex{ID: id, Kind: kind, Token: tok})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.ranking = nil
	return id
}

// Sigil returns the witness identifier.
func (g *Graph) Sigil() string { return g.sigil }

// Start returns the start sentinel.
func (g *Graph) Start() VertexID { return 0 }

// End returns the end sentinel.
func (g *Graph) End() VertexID { return 1 }

// AddContent appends a content vertex. The token's Sigil and Index are
// assigned by the graph; all other fields are kept as given.
func (g *Graph) AddContent(tok Token) VertexID {
	tok.Sigil = g.sigil
	tok.Index = g.contentCount
	tok.BranchPath = slices.Clone(tok.BranchPath)
	if len(tok.BranchPath) == 0 {
		tok.BranchPath = []int{0}
	}
	g.contentCount++
	return g.addVertex(VertexContent, &tok)
}

// AddEdge adds a directed edge. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to VertexID) error {
	if !g.has(from) || !g.has(to) {
		return fmt.Errorf("edge %d->%d: %w", from, to, ErrUnknownVertex)
	}
	if from == to {
		return fmt.Errorf("edge %d->%d: %w", from, to, ErrSelfLoop)
	}
	if to == g.Start() || from == g.End() {
		return fmt.Errorf("edge %d->%d: %w", from, to, ErrSentinelEdge)
	}
	if slices.Contains(g.out[from], to) {
		return nil
	}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	g.ranking = nil
	return nil
}

// AddMarkup registers an element occurrence and returns its identifier.
func (g *Graph) AddMarkup(tag string, attrs map[string]string, depth int) MarkupID {
	id := MarkupID(len(g.markups))
	if attrs == nil {
		attrs = map[string]string{}
	}
	g.markups = append(g.markups, Markup{ID: id, Tag: tag, Attributes: maps.Clone(attrs), Depth: depth})
	return id
}

// Annotate records that markup m encloses vertex v. Markups must be
// annotated outermost first; MarkupsFor returns them in that order.
func (g *Graph) Annotate(m MarkupID, v VertexID) error {
	if int(m) < 0 || int(m) >= len(g.markups) {
		return fmt.Errorf("markup %d: %w", m, ErrUnknownMarkup)
	}
	if !g.has(v) {
		return fmt.Errorf("vertex %d: %w", v, ErrUnknownVertex)
	}
	if slices.Contains(g.markupsByVertex[v], m) {
		return nil
	}
	g.markupsByVertex[v] = append(g.markupsByVertex[v], m)
	g.verticesByMarkup[m] = append(g.verticesByMarkup[m], v)
	return nil
}

func (g *Graph) has(v VertexID) bool { return int(v) >= 0 && int(v) < len(g.vertices) }

// Vertex returns the vertex with the given ID.
func (g *Graph) Vertex(v VertexID) (Vertex, bool) {
	if !g.has(v) {
		return Vertex{}, false
	}
	return g.vertices[v], true
}

// Token returns the token of a content vertex, or nil for sentinels and
// unknown IDs.
func (g *Graph) Token(v VertexID) *Token {
	if !g.has(v) {
		return nil
	}
	return g.vertices[v].Token
}

// Next returns the direct successors of v. The slice must not be modified.
func (g *Graph) Next(v VertexID) []VertexID {
	if !g.has(v) {
		return nil
	}
	return g.out[v]
}

// Prev returns the direct predecessors of v. The slice must not be modified.
func (g *Graph) Prev(v VertexID) []VertexID {
	if !g.has(v) {
		return nil
	}
	return g.in[v]
}

// Len returns the number of vertices including both sentinels.
func (g *Graph) Len() int { return len(g.vertices) }

// ContentVertices returns all content vertices in insertion (document) order.
func (g *Graph) ContentVertices() []VertexID {
	ids := make([]VertexID, 0, g.contentCount)
	for _, v := range g.vertices {
		if v.Kind == VertexContent {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// Markups returns all markup instances in the order they were opened.
func (g *Graph) Markups() []Markup { return slices.Clone(g.markups) }

// Markup returns the markup with the given ID.
func (g *Graph) Markup(m MarkupID) (Markup, bool) {
	if int(m) < 0 || int(m) >= len(g.markups) {
		return Markup{}, false
	}
	return g.markups[m], true
}

// MarkupsFor returns the markup enclosing v, outermost first.
func (g *Graph) MarkupsFor(v VertexID) []Markup {
	ids := g.markupsByVertex[v]
	out := make([]Markup, len(ids))
	for i, id := range ids {
		out[i] = g.markups[id]
	}
	return out
}

// VerticesFor returns the vertices enclosed by markup m in document order.
func (g *Graph) VerticesFor(m MarkupID) []VertexID {
	return g.verticesByMarkup[m]
}

// EnclosingTag returns the tag of the innermost markup enclosing v, or ""
// if v is not enclosed by any markup.
func (g *Graph) EnclosingTag(v VertexID) string {
	ids := g.markupsByVertex[v]
	if len(ids) == 0 {
		return ""
	}
	return g.markups[ids[len(ids)-1]].Tag
}

// Ranking returns the longest-path ranking of the graph from its start
// vertex. The result is cached until the graph is mutated; Validate
// populates the cache, so a validated graph can be ranked concurrently.
func (g *Graph) Ranking() *rank.Ranking[VertexID] {
	if g.ranking == nil {
		g.ranking = rank.Compute(g.Start(), g.Next, g.Prev)
	}
	return g.ranking
}

// Validate checks the structural contract every collation input must meet:
//
//  1. The start vertex has no incoming edges and the end vertex no outgoing ones
//  2. Every content vertex has at least one incoming and one outgoing edge
//  3. Every vertex is reachable from the start vertex and no cycle exists
//
// A vertex on a cycle never has all of its incoming edges settled by the
// ranking traversal, so condition 3 is checked by ranking the graph.
func (g *Graph) Validate() error {
	for _, v := range g.vertices {
		if v.Kind == VertexContent && (len(g.in[v.ID]) == 0 || len(g.out[v.ID]) == 0) {
			return fmt.Errorf("witness %s vertex %d: %w", g.sigil, v.ID, ErrDangling)
		}
	}
	r := g.Ranking()
	for _, v := range g.vertices {
		if _, ok := r.Of(v.ID); !ok {
			return fmt.Errorf("witness %s vertex %d: %w", g.sigil, v.ID, ErrUnreachable)
		}
	}
	return nil
}
