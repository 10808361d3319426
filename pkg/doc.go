// Package pkg provides the core libraries for Hypercollate variant-graph
// collation.
//
// # Overview
//
// Hypercollate aligns two or more witnesses of a text. A witness may carry
// its own in-text variation (deletions, additions, apparatus readings), so
// each witness is a small graph rather than a token sequence. The result is
// a collation hypergraph whose text nodes hold one token per witness that
// reads them and whose markup hyperedges record each witness's elements.
//
// The pkg directory is organized as follows:
//
//  1. [witness] - Per-witness token graphs and the builder producing them
//  2. [rank] - Longest-path ranking of any acyclic graph
//  3. [collation] - The collation hypergraph, validation and coalescing
//  4. [collate] - Match discovery, optimal match selection and assembly
//  5. [io], [render/dot] - JSON export/import and Graphviz output
//
// # Architecture
//
// The data flow through Hypercollate:
//
//	XML or JSON witness
//	         ↓
//	    [witness] package (token graph with branch paths)
//	         ↓
//	    [collate] package (matches → search → merge, one witness at a time)
//	         ↓
//	    [collation] package (hypergraph, optionally coalesced)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
//	a, _ := xmlwitness.ImportString("A", `<text>The <del>black</del> cat</text>`, xmlwitness.Options{})
//	b, _ := xmlwitness.ImportString("B", `<text>The black cat</text>`, xmlwitness.Options{})
//
//	res, err := collate.Collate(ctx, collate.Options{Coalesce: true}, a, b)
//	if err != nil {
//	    return err
//	}
//	io.WriteJSON(res.Graph, os.Stdout)
//
// [witness]: github.com/matzehuels/hypercollate/pkg/witness
// [rank]: github.com/matzehuels/hypercollate/pkg/rank
// [collation]: github.com/matzehuels/hypercollate/pkg/collation
// [collate]: github.com/matzehuels/hypercollate/pkg/collate
// [io]: github.com/matzehuels/hypercollate/pkg/io
// [render/dot]: github.com/matzehuels/hypercollate/pkg/render/dot
package pkg
