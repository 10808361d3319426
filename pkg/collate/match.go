package collate

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hypercollate/pkg/witness"
)

// MatchEntry is one witness's side of a Match.
type MatchEntry struct {
	Sigil  string
	Vertex witness.VertexID
	Rank   int
}

// Match is a candidate correspondence between vertices of different
// witnesses, keyed by sigil. Discovery produces matches with exactly two
// entries.
type Match struct {
	entries []MatchEntry
}

// NewMatch creates a match from its entries.
func NewMatch(entries ...MatchEntry) Match {
	return Match{entries: slices.Clone(entries)}
}

// Entries returns the participating vertices in discovery order.
func (m Match) Entries() []MatchEntry { return slices.Clone(m.entries) }

// Sigils returns the participating witnesses.
func (m Match) Sigils() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Sigil
	}
	return out
}

func (m Match) entry(sigil string) (MatchEntry, bool) {
	for _, e := range m.entries {
		if e.Sigil == sigil {
			return e, true
		}
	}
	return MatchEntry{}, false
}

// Has reports whether the witness participates in the match.
func (m Match) Has(sigil string) bool {
	_, ok := m.entry(sigil)
	return ok
}

// Vertex returns the vertex the witness contributes.
func (m Match) Vertex(sigil string) (witness.VertexID, bool) {
	e, ok := m.entry(sigil)
	return e.Vertex, ok
}

// Rank returns the rank of the witness's vertex in its own graph.
func (m Match) Rank(sigil string) (int, bool) {
	e, ok := m.entry(sigil)
	return e.Rank, ok
}

// lowestRankExcept returns the lowest rank among the other witnesses.
func (m Match) lowestRankExcept(sigil string) int {
	lowest := -1
	for _, e := range m.entries {
		if e.Sigil != sigil && (lowest < 0 || e.Rank < lowest) {
			lowest = e.Rank
		}
	}
	return lowest
}

func (m Match) String() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = fmt.Sprintf("%s:%d@%d", e.Sigil, e.Vertex, e.Rank)
	}
	return strings.Join(parts, "~")
}

// TokensMatch reports whether vertex va of a and vertex vb of b correspond.
// Tokens with content match when their normalized content is equal.
// Milestones match when both are empty and their innermost elements have
// the same tag. Sentinels never match here.
func TokensMatch(a *witness.Graph, va witness.VertexID, b *witness.Graph, vb witness.VertexID) bool {
	ta, tb := a.Token(va), b.Token(vb)
	if ta == nil || tb == nil {
		return false
	}
	if ta.IsMilestone() || tb.IsMilestone() {
		return ta.IsMilestone() && tb.IsMilestone() && a.EnclosingTag(va) == b.EnclosingTag(vb)
	}
	return ta.Normalized != "" && ta.Normalized == tb.Normalized
}

// PairMatches scans every content vertex of a against every content vertex
// of b and returns the matches, followed by the forced match of the two end
// vertices.
func PairMatches(a, b *witness.Graph) []Match {
	ra, rb := a.Ranking(), b.Ranking()
	var out []Match
	for _, va := range a.ContentVertices() {
		for _, vb := range b.ContentVertices() {
			if TokensMatch(a, va, b, vb) {
				out = append(out, NewMatch(
					MatchEntry{a.Sigil(), va, ra.MustOf(va)},
					MatchEntry{b.Sigil(), vb, rb.MustOf(vb)},
				))
			}
		}
	}
	return append(out, NewMatch(
		MatchEntry{a.Sigil(), a.End(), ra.MustOf(a.End())},
		MatchEntry{b.Sigil(), b.End(), rb.MustOf(b.End())},
	))
}

// FindMatches runs PairMatches for every pair (i, j), i < j, of witnesses.
// Pairs are scanned concurrently; the result is ordered by pair and is the
// same on every call. Witness graphs must be validated beforehand.
func FindMatches(ctx context.Context, witnesses []*witness.Graph) ([]Match, error) {
	type pair struct{ i, j int }
	var pairs []pair
	for i := range witnesses {
		for j := i + 1; j < len(witnesses); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	results := make([][]Match, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for k, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[k] = PairMatches(witnesses[p.i], witnesses[p.j])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// MatchesFor returns the matches involving sigil, sorted by the witness's
// rank. Ties are broken by the lowest rank any other participating witness
// has, then by discovery order.
func MatchesFor(matches []Match, sigil string) []Match {
	var out []Match
	for _, m := range matches {
		if m.Has(sigil) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(x, y Match) int {
		rx, _ := x.Rank(sigil)
		ry, _ := y.Rank(sigil)
		return cmp.Or(
			cmp.Compare(rx, ry),
			cmp.Compare(x.lowestRankExcept(sigil), y.lowestRankExcept(sigil)),
		)
	})
	return out
}
