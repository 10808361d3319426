package collation

import (
	"slices"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/rank"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// NodeID addresses a node inside one Graph.
type NodeID int

// EdgeID addresses a text edge inside one Graph.
type EdgeID int

// MarkupNodeID addresses a markup node inside one Graph.
type MarkupNodeID int

// NodeKind distinguishes the delimiters from text nodes.
type NodeKind int

const (
	// NodeText holds tokens of one or more witnesses.
	NodeText NodeKind = iota
	// NodeStart is the start delimiter shared by all witnesses.
	NodeStart
	// NodeEnd is the end delimiter shared by all witnesses.
	NodeEnd
)

func (k NodeKind) String() string {
	switch k {
	case NodeStart:
		return "start"
	case NodeEnd:
		return "end"
	default:
		return "text"
	}
}

// TextNode is a position of the collation. It holds at most one token per
// witness together with the token's branch path.
type TextNode struct {
	ID   NodeID
	Kind NodeKind

	sigils      []string // insertion order
	tokens      map[string]*witness.Token
	branchPaths map[string][]int
}

// IsDelimiter reports whether n is the start or end delimiter.
func (n *TextNode) IsDelimiter() bool { return n.Kind != NodeText }

// Sigils returns the witnesses with a token in this node, in the order they
// were added.
func (n *TextNode) Sigils() []string { return slices.Clone(n.sigils) }

// HasSigil reports whether the witness has a token in this node.
func (n *TextNode) HasSigil(sigil string) bool {
	_, ok := n.tokens[sigil]
	return ok
}

// Token returns the token of the witness, or nil.
func (n *TextNode) Token(sigil string) *witness.Token { return n.tokens[sigil] }

// BranchPath returns the branch path of the witness's token, or nil.
func (n *TextNode) BranchPath(sigil string) []int { return n.branchPaths[sigil] }

// BranchPaths returns a copy of the branch paths of all witnesses.
func (n *TextNode) BranchPaths() map[string][]int {
	out := make(map[string][]int, len(n.branchPaths))
	for s, p := range n.branchPaths {
		out[s] = slices.Clone(p)
	}
	return out
}

// TextEdge is a directed edge between two nodes, labelled with the sigils
// of the witnesses that traverse it.
type TextEdge struct {
	ID     EdgeID
	From   NodeID
	To     NodeID
	sigils []string
}

// Sigils returns the witnesses traversing the edge in the order they were added.
func (e *TextEdge) Sigils() []string { return slices.Clone(e.sigils) }

// HasSigil reports whether the witness traverses the edge.
func (e *TextEdge) HasSigil(sigil string) bool { return slices.Contains(e.sigils, sigil) }

// MarkupNode is one markup element of one witness.
type MarkupNode struct {
	ID     MarkupNodeID
	Sigil  string
	Markup witness.Markup
}

// MarkupHyperEdge connects a markup node to the text nodes it covers, in
// document order.
type MarkupHyperEdge struct {
	Source  MarkupNodeID
	Targets []NodeID
}

type markupKey struct {
	sigil string
	id    witness.MarkupID
}

// Graph is the collation hypergraph.
//
// The zero value is not usable; use NewGraph.
type Graph struct {
	nodes     []*TextNode
	edges     []*TextEdge
	out       [][]EdgeID
	in        [][]EdgeID
	edgeIndex map[[2]NodeID]EdgeID

	markups     []MarkupNode
	markupIndex map[markupKey]MarkupNodeID
	hyperedges  []MarkupHyperEdge
	hyperByNode map[MarkupNodeID][]int // markup node -> indexes into hyperedges
	covering    map[NodeID][]MarkupNodeID

	sigils  []string
	ranking *rank.Ranking[NodeID]
}

// NewGraph creates a graph holding only the start and end delimiters.
func NewGraph() *Graph {
	g := &Graph{
		edgeIndex:   make(map[[2]NodeID]EdgeID),
		markupIndex: make(map[markupKey]MarkupNodeID),
		hyperByNode: make(map[MarkupNodeID][]int),
		covering:    make(map[NodeID][]MarkupNodeID),
	}
	g.addNode(NodeStart)
	g.addNode(NodeEnd)
	return g
}

func (g *Graph) addNode(kind NodeKind) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &TextNode{
		ID:          id,
		Kind:        kind,
		tokens:      make(map[string]*witness.Token),
		branchPaths: make(map[string][]int),
	})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.ranking = nil
	return id
}

func (g *Graph) has(n NodeID) bool { return int(n) >= 0 && int(n) < len(g.nodes) }

// Start returns the start delimiter.
func (g *Graph) Start() NodeID { return 0 }

// End returns the end delimiter.
func (g *Graph) End() NodeID { return 1 }

// AddSigil registers a witness with the graph. Registering a sigil twice is
// a no-op.
func (g *Graph) AddSigil(sigil string) {
	if !slices.Contains(g.sigils, sigil) {
		g.sigils = append(g.sigils, sigil)
	}
}

// Sigils returns the registered witnesses in merge order.
func (g *Graph) Sigils() []string { return slices.Clone(g.sigils) }

// AddTextNode creates an empty text node.
func (g *Graph) AddTextNode() NodeID { return g.addNode(NodeText) }

// AddToken attaches a witness token to a text node. The token's sigil must
// be registered and must not already have a token in the node.
func (g *Graph) AddToken(n NodeID, tok *witness.Token) error {
	if !g.has(n) {
		return hcerrors.Invariant("add token: unknown node %d", n)
	}
	node := g.nodes[n]
	switch {
	case node.IsDelimiter():
		return hcerrors.Invariant("add token: node %d is the %s delimiter", n, node.Kind)
	case !slices.Contains(g.sigils, tok.Sigil):
		return hcerrors.Invariant("add token: sigil %q not registered", tok.Sigil)
	case node.HasSigil(tok.Sigil):
		return hcerrors.Invariant("add token: node %d already holds a token of %q", n, tok.Sigil)
	}
	node.sigils = append(node.sigils, tok.Sigil)
	node.tokens[tok.Sigil] = tok
	node.branchPaths[tok.Sigil] = slices.Clone(tok.BranchPath)
	return nil
}

// Connect adds sigil to the edge from -> to, creating the edge if needed.
func (g *Graph) Connect(from, to NodeID, sigil string) (EdgeID, error) {
	switch {
	case !g.has(from) || !g.has(to):
		return -1, hcerrors.Invariant("connect: unknown node in %d -> %d", from, to)
	case from == to:
		return -1, hcerrors.Invariant("connect: self loop on node %d", from)
	case to == g.Start() || from == g.End():
		return -1, hcerrors.Invariant("connect: edge %d -> %d violates delimiter direction", from, to)
	}
	key := [2]NodeID{from, to}
	if id, ok := g.edgeIndex[key]; ok {
		e := g.edges[id]
		if !e.HasSigil(sigil) {
			e.sigils = append(e.sigils, sigil)
		}
		return id, nil
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, &TextEdge{ID: id, From: from, To: to, sigils: []string{sigil}})
	g.edgeIndex[key] = id
	g.out[from] = append(g.out[from], id)
	g.in[to] = append(g.in[to], id)
	g.ranking = nil
	return id, nil
}

// MarkupNode returns the markup node of a witness's markup element,
// creating it on first use.
func (g *Graph) MarkupNode(sigil string, m witness.Markup) MarkupNodeID {
	key := markupKey{sigil, m.ID}
	if id, ok := g.markupIndex[key]; ok {
		return id
	}
	id := MarkupNodeID(len(g.markups))
	g.markups = append(g.markups, MarkupNode{ID: id, Sigil: sigil, Markup: m})
	g.markupIndex[key] = id
	return id
}

// AddHyperEdge creates the hyperedge of a markup node. A markup node has
// exactly one hyperedge; a second one is an invariant violation.
func (g *Graph) AddHyperEdge(m MarkupNodeID, targets ...NodeID) error {
	if int(m) < 0 || int(m) >= len(g.markups) {
		return hcerrors.Invariant("hyperedge: unknown markup node %d", m)
	}
	if len(g.hyperByNode[m]) > 0 {
		return hcerrors.Invariant("hyperedge: markup node %d already has a hyperedge", m)
	}
	g.hyperByNode[m] = append(g.hyperByNode[m], len(g.hyperedges))
	g.hyperedges = append(g.hyperedges, MarkupHyperEdge{Source: m})
	for _, t := range targets {
		if err := g.Cover(m, t); err != nil {
			return err
		}
	}
	return nil
}

// Cover adds n to the targets of the markup node's hyperedge, creating the
// hyperedge if the markup node has none yet.
func (g *Graph) Cover(m MarkupNodeID, n NodeID) error {
	if !g.has(n) {
		return hcerrors.Invariant("cover: unknown node %d", n)
	}
	idx := g.hyperByNode[m]
	switch len(idx) {
	case 0:
		return g.AddHyperEdge(m, n)
	case 1:
	default:
		return hcerrors.Invariant("cover: markup node %d has %d hyperedges", m, len(idx))
	}
	h := &g.hyperedges[idx[0]]
	if slices.Contains(h.Targets, n) {
		return nil
	}
	h.Targets = append(h.Targets, n)
	g.covering[n] = append(g.covering[n], m)
	return nil
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(n NodeID) *TextNode {
	if !g.has(n) {
		return nil
	}
	return g.nodes[n]
}

// Len returns the number of nodes including the delimiters.
func (g *Graph) Len() int { return len(g.nodes) }

// TextNodes returns the IDs of all non-delimiter nodes in creation order.
func (g *Graph) TextNodes() []NodeID {
	out := make([]NodeID, 0, len(g.nodes)-2)
	for _, n := range g.nodes {
		if !n.IsDelimiter() {
			out = append(out, n.ID)
		}
	}
	return out
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*TextEdge { return slices.Clone(g.edges) }

// Edge returns the edge from -> to, if any.
func (g *Graph) Edge(from, to NodeID) (*TextEdge, bool) {
	id, ok := g.edgeIndex[[2]NodeID{from, to}]
	if !ok {
		return nil, false
	}
	return g.edges[id], true
}

// OutEdges returns the edges leaving n.
func (g *Graph) OutEdges(n NodeID) []*TextEdge { return g.edgeList(g.out, n) }

// InEdges returns the edges entering n.
func (g *Graph) InEdges(n NodeID) []*TextEdge { return g.edgeList(g.in, n) }

func (g *Graph) edgeList(adj [][]EdgeID, n NodeID) []*TextEdge {
	if !g.has(n) {
		return nil
	}
	out := make([]*TextEdge, len(adj[n]))
	for i, id := range adj[n] {
		out[i] = g.edges[id]
	}
	return out
}

// Successors returns the targets of the edges leaving n.
func (g *Graph) Successors(n NodeID) []NodeID {
	if !g.has(n) {
		return nil
	}
	out := make([]NodeID, len(g.out[n]))
	for i, id := range g.out[n] {
		out[i] = g.edges[id].To
	}
	return out
}

// Predecessors returns the sources of the edges entering n.
func (g *Graph) Predecessors(n NodeID) []NodeID {
	if !g.has(n) {
		return nil
	}
	out := make([]NodeID, len(g.in[n]))
	for i, id := range g.in[n] {
		out[i] = g.edges[id].From
	}
	return out
}

// MarkupNodes returns all markup nodes in creation order.
func (g *Graph) MarkupNodes() []MarkupNode { return slices.Clone(g.markups) }

// HyperEdge returns the hyperedge of a markup node.
func (g *Graph) HyperEdge(m MarkupNodeID) (MarkupHyperEdge, bool) {
	idx := g.hyperByNode[m]
	if len(idx) == 0 {
		return MarkupHyperEdge{}, false
	}
	h := g.hyperedges[idx[0]]
	h.Targets = slices.Clone(h.Targets)
	return h, true
}

// Covered returns the text nodes covered by a markup node in document order.
func (g *Graph) Covered(m MarkupNodeID) []NodeID {
	h, _ := g.HyperEdge(m)
	return h.Targets
}

// CoveringMarkup returns the markup nodes covering a text node, outermost
// first within each witness.
func (g *Graph) CoveringMarkup(n NodeID) []MarkupNode {
	ids := g.covering[n]
	out := make([]MarkupNode, len(ids))
	for i, id := range ids {
		out[i] = g.markups[id]
	}
	return out
}

// Ranking returns the longest-path ranking of the nodes from the start
// delimiter. The ranking is cached until the next structural change.
func (g *Graph) Ranking() *rank.Ranking[NodeID] {
	if g.ranking == nil {
		g.ranking = rank.Compute(g.Start(), g.Successors, g.Predecessors)
	}
	return g.ranking
}

// Traverse returns the nodes reachable from the start delimiter in
// topological order, start first.
func (g *Graph) Traverse() []NodeID { return g.Ranking().Order() }
