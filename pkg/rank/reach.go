package rank

// Reachability answers whether one ranked node can reach another.
// It is built once from a Ranking and stores one bit row per node, so
// memory grows with the square of the node count.
type Reachability[N comparable] struct {
	index map[N]int
	rows  [][]uint64
}

// Reach computes the descendants of every node in r. next must be the
// successor function r was computed with.
func Reach[N comparable](r *Ranking[N], next func(N) []N) *Reachability[N] {
	n := len(r.order)
	words := (n + 63) / 64
	x := &Reachability[N]{
		index: make(map[N]int, n),
		rows:  make([][]uint64, n),
	}
	for i, v := range r.order {
		x.index[v] = i
	}
	// Reverse topological order settles every successor row first.
	for i := n - 1; i >= 0; i-- {
		row := make([]uint64, words)
		for _, c := range next(r.order[i]) {
			j, ok := x.index[c]
			if !ok {
				continue
			}
			row[j/64] |= 1 << (j % 64)
			for w, b := range x.rows[j] {
				row[w] |= b
			}
		}
		x.rows[i] = row
	}
	return x
}

// Reaches reports whether a path of at least one edge leads from a to b.
// Unranked nodes reach nothing and are reached by nothing.
func (x *Reachability[N]) Reaches(a, b N) bool {
	i, okA := x.index[a]
	j, okB := x.index[b]
	if !okA || !okB {
		return false
	}
	return x.rows[i][j/64]&(1<<(j%64)) != 0
}

// Ordered reports whether a path leads between a and b in either direction.
func (x *Reachability[N]) Ordered(a, b N) bool {
	return x.Reaches(a, b) || x.Reaches(b, a)
}
