// Package dot renders collation graphs as Graphviz diagrams.
//
// # Usage
//
// Convert a collation graph to DOT, then render to SVG:
//
//	src := dot.ToDOT(res.Graph, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Layout
//
// The diagram runs left to right. Each text node is a rounded box labelled
// with its content and, below it, the sigils of the witnesses that read it.
// When witnesses differ in the raw form of a matched token (case or
// punctuation variants), every distinct form is listed. Edges are labelled
// with the sigils that traverse them. Nodes of equal rank are placed in the
// same column.
//
// With [Options.Detailed], labels also carry the node rank and the branch
// path of every witness, which helps when debugging variation handling.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package dot
