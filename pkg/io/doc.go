// Package io provides JSON export of collation graphs and JSON import of
// witness graphs.
//
// # Overview
//
// The export format is meant for downstream tools (table renderers, web
// viewers, notebooks) that consume a finished collation. The import format
// lets tools that already tokenize and segment a text hand their witness
// graphs to the collator without going through XML.
//
// # Collation Graph Format
//
//	{
//	  "generator": "hypercollate v0.3.0 (1a2b3c4)",
//	  "sigils": ["A", "B"],
//	  "nodes": [
//	    {"id": 0, "kind": "start", "rank": 0},
//	    {"id": 2, "kind": "text", "rank": 1, "tokens": {
//	      "A": {"content": "The ", "normalized": "the", "index": 0,
//	            "path": "/text", "branch_path": [0]}
//	    }},
//	    {"id": 1, "kind": "end", "rank": 2}
//	  ],
//	  "edges": [{"from": 0, "to": 2, "sigils": ["A", "B"]}],
//	  "markup": [{"id": 0, "sigil": "A", "tag": "text", "depth": 0, "targets": [2]}]
//	}
//
// Nodes are listed in topological order, start first.
//
// # Witness Format
//
//	{
//	  "sigil": "A",
//	  "markup": [{"tag": "text"}, {"tag": "del", "depth": 1}],
//	  "vertices": [
//	    {"id": "t1", "content": "The ", "path": "/text", "markup": [0]},
//	    {"id": "t2", "content": "black ", "path": "/text/del",
//	     "branch_path": [0, 1], "markup": [0, 1]}
//	  ],
//	  "edges": [
//	    {"from": "start", "to": "t1"}, {"from": "t1", "to": "t2"},
//	    {"from": "t1", "to": "end"}, {"from": "t2", "to": "end"}
//	  ]
//	}
//
// Vertex IDs "start" and "end" are reserved for the sentinels. Markup
// entries are referenced by their position and must be listed outermost
// first in each vertex. A missing "normalized" field is computed with
// [witness.Normalize]; a missing "branch_path" means the main line.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the
// same graph, but not with concurrent modifications.
package io
