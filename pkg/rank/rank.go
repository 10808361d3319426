package rank

import (
	"maps"
	"slices"
)

// Ranking maps nodes to their longest-path rank from a root.
// It also indexes nodes by rank, preserving the order in which the
// traversal settled them.
//
// A Ranking is a snapshot: mutating the underlying graph does not update it.
// Recompute after structural changes.
type Ranking[N comparable] struct {
	byNode map[N]int
	byRank map[int][]N
	order  []N
}

// Compute ranks every node reachable from root.
//
// next returns the direct successors of a node and prev its direct
// predecessors. Both are called once per ranked node. Parallel edges must
// not be reported twice: a successor is admitted once its settled-edge
// count equals len(prev(successor)).
//
// # Algorithm
//
//  1. Start with a frontier holding only root (rank 0)
//  2. Pop a node; its rank is 1 + max(rank of predecessors), 0 for root
//  3. Settle each outgoing edge; admit a successor once all of its
//     incoming edges are settled
//  4. Repeat until the frontier is empty
//
// Time complexity is O(V + E).
func Compute[N comparable](root N, next, prev func(N) []N) *Ranking[N] {
	r := &Ranking[N]{
		byNode: make(map[N]int),
		byRank: make(map[int][]N),
	}

	settled := make(map[N]int)
	queue := []N{root}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		rank := 0
		if curr != root {
			for _, p := range prev(curr) {
				if pr, ok := r.byNode[p]; ok && pr+1 > rank {
					rank = pr + 1
				}
			}
		}
		r.byNode[curr] = rank
		r.byRank[rank] = append(r.byRank[rank], curr)
		r.order = append(r.order, curr)

		for _, child := range next(curr) {
			settled[child]++
			if settled[child] == len(prev(child)) {
				queue = append(queue, child)
			}
		}
	}
	return r
}

// Of returns the rank of n, or false if n was not reachable from the root.
func (r *Ranking[N]) Of(n N) (int, bool) {
	rank, ok := r.byNode[n]
	return rank, ok
}

// MustOf returns the rank of n, or -1 if n is unranked.
func (r *Ranking[N]) MustOf(n N) int {
	if rank, ok := r.byNode[n]; ok {
		return rank
	}
	return -1
}

// At returns the nodes with the given rank in settle order.
// The returned slice should not be modified.
func (r *Ranking[N]) At(rank int) []N { return r.byRank[rank] }

// Ranks returns all occupied ranks in ascending order.
func (r *Ranking[N]) Ranks() []int {
	return slices.Sorted(maps.Keys(r.byRank))
}

// Max returns the highest rank, or 0 for a ranking with only a root.
func (r *Ranking[N]) Max() int {
	ranks := r.Ranks()
	if len(ranks) == 0 {
		return 0
	}
	return ranks[len(ranks)-1]
}

// Len returns the number of ranked nodes.
func (r *Ranking[N]) Len() int { return len(r.byNode) }

// Order returns the ranked nodes in the order the traversal settled them.
// This is a topological order of the reachable subgraph.
func (r *Ranking[N]) Order() []N { return slices.Clone(r.order) }

// Check reports the first edge whose target is not ranked strictly higher
// than its source. Edges touching unranked nodes are ignored.
func (r *Ranking[N]) Check(edges [][2]N) (violation [2]N, ok bool) {
	for _, e := range edges {
		from, okF := r.byNode[e[0]]
		to, okT := r.byNode[e[1]]
		if okF && okT && to <= from {
			return e, false
		}
	}
	return violation, true
}
