package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hypercollate/pkg/buildinfo"
	"github.com/matzehuels/hypercollate/pkg/collation"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

type graph struct {
	Generator string   `json:"generator,omitempty"`
	Sigils    []string `json:"sigils"`
	Nodes     []node   `json:"nodes"`
	Edges     []edge   `json:"edges"`
	Markup    []markup `json:"markup,omitempty"`
}

type node struct {
	ID     int              `json:"id"`
	Kind   string           `json:"kind"`
	Rank   int              `json:"rank"`
	Tokens map[string]token `json:"tokens,omitempty"`
}

type token struct {
	Content    string `json:"content"`
	Normalized string `json:"normalized"`
	Index      int    `json:"index"`
	Path       string `json:"path"`
	BranchPath []int  `json:"branch_path"`
}

type edge struct {
	From   int      `json:"from"`
	To     int      `json:"to"`
	Sigils []string `json:"sigils"`
}

type markup struct {
	ID         int               `json:"id"`
	Sigil      string            `json:"sigil"`
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Depth      int               `json:"depth"`
	Targets    []int             `json:"targets"`
}

func exportToken(t *witness.Token, branch []int) token {
	return token{
		Content:    t.Content,
		Normalized: t.Normalized,
		Index:      t.Index,
		Path:       t.Path,
		BranchPath: branch,
	}
}

// WriteJSON encodes a collation graph as JSON and writes it to w.
// Nodes are written in topological order.
func WriteJSON(g *collation.Graph, w io.Writer) error {
	r := g.Ranking()
	out := graph{Generator: "hypercollate " + buildinfo.Short(), Sigils: g.Sigils()}

	for _, id := range g.Traverse() {
		n := g.Node(id)
		nd := node{ID: int(id), Kind: n.Kind.String(), Rank: r.MustOf(id)}
		if sigils := n.Sigils(); len(sigils) > 0 {
			nd.Tokens = make(map[string]token, len(sigils))
			for _, s := range sigils {
				nd.Tokens[s] = exportToken(n.Token(s), n.BranchPath(s))
			}
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: int(e.From), To: int(e.To), Sigils: e.Sigils()})
	}
	for _, m := range g.MarkupNodes() {
		mk := markup{
			ID:         int(m.ID),
			Sigil:      m.Sigil,
			Tag:        m.Markup.Tag,
			Attributes: m.Markup.Attributes,
			Depth:      m.Markup.Depth,
		}
		for _, t := range g.Covered(m.ID) {
			mk.Targets = append(mk.Targets, int(t))
		}
		out.Markup = append(out.Markup, mk)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a collation graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *collation.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// WriteWitnessJSON encodes a witness graph in the format read by
// [ReadWitnessJSON]. Content vertices are named "t<index>".
func WriteWitnessJSON(g *witness.Graph, w io.Writer) error {
	out := witnessDoc{Sigil: g.Sigil()}
	for _, m := range g.Markups() {
		out.Markup = append(out.Markup, witnessMarkup{Tag: m.Tag, Attributes: m.Attributes, Depth: m.Depth})
	}

	name := func(v witness.VertexID) string {
		switch v {
		case g.Start():
			return startID
		case g.End():
			return endID
		}
		return fmt.Sprintf("t%d", g.Token(v).Index)
	}

	for _, v := range g.ContentVertices() {
		t := g.Token(v)
		normalized := t.Normalized
		wv := witnessVertex{
			ID:         name(v),
			Content:    t.Content,
			Normalized: &normalized,
			Path:       t.Path,
			BranchPath: t.BranchPath,
		}
		for _, m := range g.MarkupsFor(v) {
			wv.Markup = append(wv.Markup, int(m.ID))
		}
		out.Vertices = append(out.Vertices, wv)
	}
	for _, v := range g.Ranking().Order() {
		for _, next := range g.Next(v) {
			out.Edges = append(out.Edges, witnessEdge{From: name(v), To: name(next)})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
