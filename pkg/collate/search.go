package collate

import (
	"cmp"
	"container/heap"
	"context"
	"encoding/binary"
	"slices"
	"time"

	"github.com/zeebo/blake3"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
)

// SearchOptions bounds SelectMatches.
type SearchOptions struct {
	// MaxExpansions caps the number of expanded states. Zero means no cap.
	MaxExpansions int
}

// SearchStats describes one search run.
type SearchStats struct {
	Candidates int           // Candidate matches
	Expanded   int           // States taken off the frontier
	Generated  int           // Neighbor states created
	Duplicates int           // Neighbors dropped as already seen
	Duration   time.Duration // Wall time
}

// QuantumCollatedMatchList is a search state: the matches chosen so far and
// the matches still undecided. Matches are referred to by their index in
// the candidate list the search runs over. States are immutable.
type QuantumCollatedMatchList struct {
	chosen    []int
	potential []int // ascending
}

func newQuantumList(n int) QuantumCollatedMatchList {
	potential := make([]int, n)
	for i := range potential {
		potential[i] = i
	}
	return QuantumCollatedMatchList{potential: potential}
}

// Chosen returns the indexes of the chosen matches in the order they were chosen.
func (q QuantumCollatedMatchList) Chosen() []int { return slices.Clone(q.chosen) }

// Potential returns the indexes of the undecided matches in ascending order.
func (q QuantumCollatedMatchList) Potential() []int { return slices.Clone(q.potential) }

// IsDetermined reports whether no undecided matches remain.
func (q QuantumCollatedMatchList) IsDetermined() bool { return len(q.potential) == 0 }

// Fingerprint identifies the state by its chosen set and undecided list.
// States reached along different paths with the same decisions share a
// fingerprint.
func (q QuantumCollatedMatchList) Fingerprint() [32]byte {
	chosen := slices.Sorted(slices.Values(q.chosen))
	buf := make([]byte, 0, 4*(len(chosen)+len(q.potential)+1))
	for _, i := range chosen {
		buf = binary.BigEndian.AppendUint32(buf, uint32(i))
	}
	buf = binary.BigEndian.AppendUint32(buf, ^uint32(0))
	for _, i := range q.potential {
		buf = binary.BigEndian.AppendUint32(buf, uint32(i))
	}
	return blake3.Sum256(buf)
}

// choose moves candidate i to the chosen list and drops every undecided
// match that conflicts with it.
func (q QuantumCollatedMatchList) choose(candidates []CollatedMatch, i int) QuantumCollatedMatchList {
	c := candidates[i]
	potential := make([]int, 0, len(q.potential))
	for _, j := range q.potential {
		if j != i && !c.conflicts(candidates[j]) {
			potential = append(potential, j)
		}
	}
	return QuantumCollatedMatchList{
		chosen:    append(slices.Clone(q.chosen), i),
		potential: potential,
	}
}

// discard drops the given candidates from the undecided list.
func (q QuantumCollatedMatchList) discard(drop ...int) QuantumCollatedMatchList {
	return QuantumCollatedMatchList{
		chosen: q.chosen,
		potential: slices.DeleteFunc(slices.Clone(q.potential), func(j int) bool {
			return slices.Contains(drop, j)
		}),
	}
}

func (q QuantumCollatedMatchList) undecided(i int) bool {
	_, ok := slices.BinarySearch(q.potential, i)
	return ok
}

// upperBound is the largest total a completion of q can reach: the chosen
// count plus the smaller of the distinct nodes and distinct vertices among
// the undecided matches.
func (q QuantumCollatedMatchList) upperBound(candidates []CollatedMatch) int {
	nodes := make(map[int]bool, len(q.potential))
	vertices := make(map[int]bool, len(q.potential))
	for _, j := range q.potential {
		nodes[int(candidates[j].Node)] = true
		vertices[int(candidates[j].Vertex)] = true
	}
	return len(q.chosen) + min(len(nodes), len(vertices))
}

// neighbors expands q. The undecided matches are ordered by node rank and
// by vertex rank; the longest prefix on which both orders agree is chosen
// as a whole in one neighbor and discarded as a whole in another. Without
// such a prefix the first match of each order is chosen or discarded.
func (q QuantumCollatedMatchList) neighbors(candidates []CollatedMatch) []QuantumCollatedMatchList {
	byNode := slices.Clone(q.potential)
	slices.SortFunc(byNode, func(a, b int) int {
		x, y := candidates[a], candidates[b]
		return cmp.Or(cmp.Compare(x.NodeRank, y.NodeRank), cmp.Compare(x.VertexRank, y.VertexRank), cmp.Compare(a, b))
	})
	byVertex := slices.Clone(q.potential)
	slices.SortFunc(byVertex, func(a, b int) int {
		x, y := candidates[a], candidates[b]
		return cmp.Or(cmp.Compare(x.VertexRank, y.VertexRank), cmp.Compare(x.NodeRank, y.NodeRank), cmp.Compare(a, b))
	})

	prefix := 0
	for prefix < len(byNode) && byNode[prefix] == byVertex[prefix] {
		prefix++
	}

	if prefix > 0 {
		agreed := byNode[:prefix]
		chooseAll := q
		for _, i := range agreed {
			if chooseAll.undecided(i) {
				chooseAll = chooseAll.choose(candidates, i)
			}
		}
		return []QuantumCollatedMatchList{chooseAll, q.discard(agreed...)}
	}

	first, second := byNode[0], byVertex[0]
	return []QuantumCollatedMatchList{
		q.choose(candidates, first),
		q.discard(first),
		q.choose(candidates, second),
		q.discard(second),
	}
}

// searchEntry is a frontier element. States with a higher upper bound are
// expanded first; equal bounds are expanded in insertion order.
type searchEntry struct {
	state QuantumCollatedMatchList
	cost  int // initial upper bound minus the state's upper bound
	seq   int
}

type frontier []*searchEntry

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*searchEntry)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}

// SelectMatches chooses the largest consistent subset of candidates. A
// subset is consistent when no node or vertex appears twice and ranks
// increase together on both sides. Two matches may cross only when their
// branch paths do not overlap and no path joins their nodes or their
// vertices, so merging a consistent subset never creates a cycle.
//
// The result is sorted by vertex rank. An empty candidate list yields an
// empty result. When ctx is done or opts.MaxExpansions is exceeded before a
// goal is reached, SelectMatches returns a SEARCH_EXHAUSTED error.
func SelectMatches(ctx context.Context, candidates []CollatedMatch, opts SearchOptions) ([]CollatedMatch, SearchStats, error) {
	start := time.Now()
	stats := SearchStats{Candidates: len(candidates)}

	initial := newQuantumList(len(candidates))
	best := initial.upperBound(candidates)

	open := &frontier{{state: initial}}
	seen := map[[32]byte]bool{initial.Fingerprint(): true}
	seq := 1

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return nil, stats, hcerrors.Wrap(hcerrors.ErrCodeSearchExhausted, err,
				"match search stopped after %d expansions", stats.Expanded)
		}
		if opts.MaxExpansions > 0 && stats.Expanded >= opts.MaxExpansions {
			stats.Duration = time.Since(start)
			return nil, stats, hcerrors.New(hcerrors.ErrCodeSearchExhausted,
				"match search exceeded %d expansions", opts.MaxExpansions)
		}

		curr := heap.Pop(open).(*searchEntry).state
		if curr.IsDetermined() {
			stats.Duration = time.Since(start)
			return result(candidates, curr), stats, nil
		}
		stats.Expanded++

		for _, next := range curr.neighbors(candidates) {
			stats.Generated++
			fp := next.Fingerprint()
			if seen[fp] {
				stats.Duplicates++
				continue
			}
			seen[fp] = true
			heap.Push(open, &searchEntry{state: next, cost: best - next.upperBound(candidates), seq: seq})
			seq++
		}
	}

	// Every state has a determined descendant, so the frontier never
	// empties before a goal is popped.
	stats.Duration = time.Since(start)
	return nil, stats, hcerrors.Invariant("match search ended without a determined state")
}

func result(candidates []CollatedMatch, q QuantumCollatedMatchList) []CollatedMatch {
	out := make([]CollatedMatch, len(q.chosen))
	for i, j := range q.chosen {
		out[i] = candidates[j]
	}
	slices.SortStableFunc(out, func(a, b CollatedMatch) int {
		return cmp.Or(cmp.Compare(a.VertexRank, b.VertexRank), cmp.Compare(a.NodeRank, b.NodeRank))
	})
	return out
}
