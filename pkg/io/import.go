package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

const (
	startID = "start"
	endID   = "end"
)

type witnessDoc struct {
	Sigil    string          `json:"sigil"`
	Markup   []witnessMarkup `json:"markup,omitempty"`
	Vertices []witnessVertex `json:"vertices"`
	Edges    []witnessEdge   `json:"edges"`
}

type witnessMarkup struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Depth      int               `json:"depth,omitempty"`
}

type witnessVertex struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Normalized *string `json:"normalized,omitempty"`
	Path       string  `json:"path,omitempty"`
	BranchPath []int   `json:"branch_path,omitempty"`
	Markup     []int   `json:"markup,omitempty"`
}

type witnessEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReadWitnessJSON decodes a witness graph from r.
//
// ReadWitnessJSON returns an INVALID_FORMAT error if the JSON is malformed
// and an INVALID_WITNESS error if:
//   - The sigil is missing or invalid
//   - A vertex ID is empty, reserved or duplicated
//   - An edge or markup reference names an unknown vertex or markup
//   - The resulting graph fails [witness.Graph.Validate]
//
// ReadWitnessJSON does not close r.
func ReadWitnessJSON(r io.Reader) (*witness.Graph, error) {
	var doc witnessDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidFormat, err, "decode witness")
	}
	if err := hcerrors.ValidateSigil(doc.Sigil); err != nil {
		return nil, err
	}

	g := witness.NewGraph(doc.Sigil)
	invalid := func(err error, format string, args ...any) error {
		return hcerrors.Wrap(hcerrors.ErrCodeInvalidWitness, err, "witness %s: %s", doc.Sigil, fmt.Sprintf(format, args...))
	}

	markups := make([]witness.MarkupID, len(doc.Markup))
	for i, m := range doc.Markup {
		markups[i] = g.AddMarkup(m.Tag, m.Attributes, m.Depth)
	}

	ids := map[string]witness.VertexID{startID: g.Start(), endID: g.End()}
	for _, v := range doc.Vertices {
		if _, dup := ids[v.ID]; dup || v.ID == "" {
			return nil, invalid(nil, "vertex id %q empty, reserved or duplicated", v.ID)
		}
		tok := witness.Token{
			Content:    v.Content,
			Path:       v.Path,
			BranchPath: v.BranchPath,
		}
		if v.Normalized != nil {
			tok.Normalized = *v.Normalized
		} else {
			tok.Normalized = witness.Normalize(v.Content)
		}
		vid := g.AddContent(tok)
		ids[v.ID] = vid

		for _, m := range v.Markup {
			if m < 0 || m >= len(markups) {
				return nil, invalid(nil, "vertex %s references unknown markup %d", v.ID, m)
			}
			if err := g.Annotate(markups[m], vid); err != nil {
				return nil, invalid(err, "vertex %s", v.ID)
			}
		}
	}

	for _, e := range doc.Edges {
		from, okF := ids[e.From]
		to, okT := ids[e.To]
		if !okF || !okT {
			return nil, invalid(nil, "edge %s->%s references unknown vertex", e.From, e.To)
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, invalid(err, "edge %s->%s", e.From, e.To)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, invalid(err, "invalid graph")
	}
	return g, nil
}

// ImportWitnessJSON reads a witness graph from the JSON file at path.
func ImportWitnessJSON(path string) (*witness.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hcerrors.Wrap(hcerrors.ErrCodeFileNotFound, err, "witness %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadWitnessJSON(f)
}
