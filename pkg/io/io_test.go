package io_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/hypercollate/pkg/collate"
	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	hcio "github.com/matzehuels/hypercollate/pkg/io"
	"github.com/matzehuels/hypercollate/pkg/witness"
	"github.com/matzehuels/hypercollate/pkg/witness/xmlwitness"
)

const witnessJSON = `{
  "sigil": "A",
  "markup": [{"tag": "text"}, {"tag": "del", "depth": 1}],
  "vertices": [
    {"id": "t1", "content": "The ", "path": "/text", "markup": [0]},
    {"id": "t2", "content": "black ", "path": "/text/del", "branch_path": [0, 1], "markup": [0, 1]},
    {"id": "t3", "content": "Cat", "normalized": "cat", "path": "/text", "markup": [0]}
  ],
  "edges": [
    {"from": "start", "to": "t1"},
    {"from": "t1", "to": "t2"},
    {"from": "t1", "to": "t3"},
    {"from": "t2", "to": "t3"},
    {"from": "t3", "to": "end"}
  ]
}`

func TestReadWitnessJSON(t *testing.T) {
	g, err := hcio.ReadWitnessJSON(strings.NewReader(witnessJSON))
	if err != nil {
		t.Fatalf("ReadWitnessJSON: %v", err)
	}
	if g.Sigil() != "A" {
		t.Errorf("sigil = %q", g.Sigil())
	}
	vs := g.ContentVertices()
	if len(vs) != 3 {
		t.Fatalf("content vertices = %d, want 3", len(vs))
	}

	black := g.Token(vs[1])
	if black.Normalized != "black" {
		t.Errorf("normalized = %q, want computed %q", black.Normalized, "black")
	}
	if !slices.Equal(black.BranchPath, []int{0, 1}) {
		t.Errorf("branch path = %v", black.BranchPath)
	}
	if got := g.EnclosingTag(vs[1]); got != "del" {
		t.Errorf("enclosing tag = %q, want del", got)
	}
	if !slices.Equal(g.Token(vs[0]).BranchPath, []int{0}) {
		t.Errorf("default branch path = %v", g.Token(vs[0]).BranchPath)
	}
	if g.Token(vs[2]).Normalized != "cat" {
		t.Errorf("explicit normalized = %q", g.Token(vs[2]).Normalized)
	}
}

func TestReadWitnessJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code hcerrors.Code
	}{
		{"malformed", `{"sigil":`, hcerrors.ErrCodeInvalidFormat},
		{"no sigil", `{"vertices":[],"edges":[]}`, hcerrors.ErrCodeInvalidWitness},
		{"reserved id", `{"sigil":"A","vertices":[{"id":"end","content":"x"}]}`, hcerrors.ErrCodeInvalidWitness},
		{"duplicate id", `{"sigil":"A","vertices":[{"id":"a","content":"x"},{"id":"a","content":"y"}]}`, hcerrors.ErrCodeInvalidWitness},
		{"unknown vertex", `{"sigil":"A","vertices":[{"id":"a","content":"x"}],"edges":[{"from":"start","to":"b"}]}`, hcerrors.ErrCodeInvalidWitness},
		{"unknown markup", `{"sigil":"A","vertices":[{"id":"a","content":"x","markup":[3]}]}`, hcerrors.ErrCodeInvalidWitness},
		{"disconnected", `{"sigil":"A","vertices":[{"id":"a","content":"x"}],"edges":[{"from":"start","to":"a"}]}`, hcerrors.ErrCodeInvalidWitness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hcio.ReadWitnessJSON(strings.NewReader(tt.in))
			if !hcerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWitnessJSONRoundTrip(t *testing.T) {
	g, err := xmlwitness.ImportString("B", `<text>The <subst><del>black</del><add>white</add></subst> cat<lb/></text>`, xmlwitness.Options{})
	if err != nil {
		t.Fatalf("ImportString: %v", err)
	}

	var buf bytes.Buffer
	if err := hcio.WriteWitnessJSON(g, &buf); err != nil {
		t.Fatalf("WriteWitnessJSON: %v", err)
	}
	back, err := hcio.ReadWitnessJSON(&buf)
	if err != nil {
		t.Fatalf("ReadWitnessJSON: %v", err)
	}

	if back.Len() != g.Len() {
		t.Fatalf("vertices = %d, want %d", back.Len(), g.Len())
	}
	want, got := g.ContentVertices(), back.ContentVertices()
	for i := range want {
		a, b := g.Token(want[i]), back.Token(got[i])
		if a.Content != b.Content || a.Path != b.Path || !slices.Equal(a.BranchPath, b.BranchPath) {
			t.Errorf("token %d = %+v, want %+v", i, *b, *a)
		}
		if g.EnclosingTag(want[i]) != back.EnclosingTag(got[i]) {
			t.Errorf("token %d enclosing tag differs", i)
		}
	}
}

func collated(t *testing.T) *collate.Result {
	t.Helper()
	var ws []*witness.Graph
	for _, src := range []struct{ sigil, xml string }{
		{"A", `<text>The <del>black</del> cat</text>`},
		{"B", `<text>The <hi rend="it">black</hi> cat</text>`},
	} {
		g, err := xmlwitness.ImportString(src.sigil, src.xml, xmlwitness.Options{})
		if err != nil {
			t.Fatalf("ImportString(%s): %v", src.sigil, err)
		}
		ws = append(ws, g)
	}
	res, err := collate.Collate(context.Background(), collate.Options{}, ws...)
	if err != nil {
		t.Fatalf("Collate: %v", err)
	}
	return res
}

type exported struct {
	Sigils []string `json:"sigils"`
	Nodes  []struct {
		ID     int    `json:"id"`
		Kind   string `json:"kind"`
		Rank   int    `json:"rank"`
		Tokens map[string]struct {
			Content    string `json:"content"`
			BranchPath []int  `json:"branch_path"`
		} `json:"tokens"`
	} `json:"nodes"`
	Edges []struct {
		From   int      `json:"from"`
		To     int      `json:"to"`
		Sigils []string `json:"sigils"`
	} `json:"edges"`
	Markup []struct {
		Sigil   string `json:"sigil"`
		Tag     string `json:"tag"`
		Targets []int  `json:"targets"`
	} `json:"markup"`
}

func TestWriteJSON(t *testing.T) {
	res := collated(t)

	var buf bytes.Buffer
	if err := hcio.WriteJSON(res.Graph, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var out exported
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !slices.Equal(out.Sigils, []string{"A", "B"}) {
		t.Errorf("sigils = %v", out.Sigils)
	}
	if n := len(out.Nodes); n != res.Graph.Len() {
		t.Fatalf("nodes = %d, want %d", n, res.Graph.Len())
	}
	if out.Nodes[0].Kind != "start" || out.Nodes[len(out.Nodes)-1].Kind != "end" {
		t.Errorf("first/last kinds = %s/%s", out.Nodes[0].Kind, out.Nodes[len(out.Nodes)-1].Kind)
	}
	for i := 1; i < len(out.Nodes); i++ {
		if out.Nodes[i].Rank < out.Nodes[i-1].Rank {
			t.Errorf("node %d rank %d after rank %d", out.Nodes[i].ID, out.Nodes[i].Rank, out.Nodes[i-1].Rank)
		}
	}

	var shared bool
	for _, n := range out.Nodes {
		if a, ok := n.Tokens["A"]; ok && strings.TrimSpace(a.Content) == "black" {
			if _, ok := n.Tokens["B"]; ok {
				shared = true
			}
		}
	}
	if !shared {
		t.Error("expected a node shared by A and B for \"black\"")
	}

	var hi bool
	for _, m := range out.Markup {
		if m.Sigil == "B" && m.Tag == "hi" && len(m.Targets) > 0 {
			hi = true
		}
	}
	if !hi {
		t.Error("missing B:hi markup with targets")
	}
	if len(out.Edges) == 0 {
		t.Error("no edges exported")
	}
}

func TestExportJSON(t *testing.T) {
	res := collated(t)
	path := filepath.Join(t.TempDir(), "out.json")
	if err := hcio.ExportJSON(res.Graph, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("exported file is not valid JSON")
	}
}

func TestImportWitnessJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	if err := os.WriteFile(path, []byte(witnessJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := hcio.ImportWitnessJSON(path); err != nil {
		t.Fatalf("ImportWitnessJSON: %v", err)
	}
	_, err := hcio.ImportWitnessJSON(filepath.Join(dir, "missing.json"))
	if !hcerrors.Is(err, hcerrors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}
