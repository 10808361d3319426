// Package collate aligns witnesses of a text into a collation graph.
//
// # Pipeline
//
// A collation run proceeds in four stages:
//
//  1. Discovery: [FindMatches] compares every pair of witnesses and records
//     a [Match] for each pair of vertices with equal normalized content (or
//     equally tagged milestones), plus a forced match of the end vertices.
//  2. Selection: for every witness after the first, the matches against the
//     witnesses already merged become [CollatedMatch] candidates, and
//     [SelectMatches] searches for the largest consistent subset.
//  3. Assembly: the witness is merged into the [collation.Graph], reusing
//     the text nodes of the chosen matches and creating new nodes for the
//     rest.
//  4. Coalescing (optional): runs of nodes with identical witnesses and
//     markup are merged with [collation.Coalesce].
//
// [Collate] runs all four stages.
//
// # Consistency
//
// A chosen match set is a partial bijection between collation nodes and
// witness vertices. It respects rank order, and two readings of one
// variation point are never matched onto one another's positions when
// their branch paths overlap.
//
// # Determinism
//
// The search generates neighbors in a fixed order and breaks priority ties
// first in, first out. The same input always produces the same graph.
//
// # Bounds
//
// The search is the only step whose running time can grow quickly.
// [Options.MaxExpansions], [Options.Timeout] and the caller's context bound
// it; exceeding any of them fails the run with a SEARCH_EXHAUSTED error.
package collate
