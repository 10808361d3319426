package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hypercollate/pkg/collation"
)

// Options configures collation diagram rendering.
type Options struct {
	// Detailed adds the rank and per-witness branch paths to node labels.
	Detailed bool
}

// ToDOT converts a collation graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g *collation.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=grey40];\n")
	buf.WriteString("\n")

	r := g.Ranking()
	for _, id := range g.Traverse() {
		n := g.Node(id)
		label := fmtLabel(n, r.MustOf(id), opts.Detailed)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(id), strings.Join(fmtAttrs(n, label), ", "))
	}

	buf.WriteString("\n")
	for _, rk := range r.Ranks() {
		ids := r.At(rk)
		if len(ids) < 2 {
			continue
		}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = nodeName(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(names, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", nodeName(e.From), nodeName(e.To), strings.Join(e.Sigils(), ","))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id collation.NodeID) string { return "n" + strconv.Itoa(int(id)) }

func fmtLabel(n *collation.TextNode, rank int, detailed bool) string {
	if n.IsDelimiter() {
		return n.Kind.String()
	}

	sigils := n.Sigils()
	var forms []string
	for _, s := range sigils {
		c := strings.TrimSpace(n.Token(s).Content)
		if c == "" {
			c = "∅"
		}
		if !slices.Contains(forms, c) {
			forms = append(forms, c)
		}
	}
	label := strings.Join(forms, " | ") + "\n" + strings.Join(sigils, ",")
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("rank: %d", rank)}
	for _, s := range sigils {
		parts = append(parts, fmt.Sprintf("%s: %v", s, n.BranchPath(s)))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *collation.TextNode, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsDelimiter() {
		attrs = append(attrs, "shape=circle", "fillcolor=lightgrey", "fontsize=10")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the point-sized root element emitted by
// Graphviz with one whose width and height equal the viewBox, so the SVG
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
