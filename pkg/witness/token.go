package witness

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Token is the smallest unit of a witness text.
// Tokens are immutable once added to a graph.
type Token struct {
	Content    string // Raw text including trailing whitespace
	Normalized string // Comparison form, see Normalize
	Sigil      string // Owning witness
	Index      int    // Position among the witness's content vertices
	Path       string // Slash-separated tag path of the enclosing markup, e.g. "/text/s/del"
	BranchPath []int  // [0] plus one branch identifier per enclosing variation branch
}

// IsMilestone reports whether the token carries no text. Milestones stand
// for empty elements such as <lb/> or <pb/>.
func (t *Token) IsMilestone() bool { return t.Content == "" }

// NormalizeFunc maps raw token content to its comparison form.
type NormalizeFunc func(string) string

// Normalize is the default NormalizeFunc. It applies Unicode NFC
// composition, full case folding and whitespace trimming, and collapses
// internal whitespace runs to one space.
func Normalize(content string) string {
	return cases.Fold().String(NormalizeExact(content))
}

// NormalizeExact is like Normalize but keeps case distinctions.
func NormalizeExact(content string) string {
	return strings.Join(strings.Fields(norm.NFC.String(content)), " ")
}

// IsPrefix reports whether a is a prefix of b.
func IsPrefix(a, b []int) bool {
	return len(a) <= len(b) && slices.Equal(a, b[:len(a)])
}

// Related reports whether two branch paths lie on one line of text,
// i.e. one is a prefix of the other.
func Related(a, b []int) bool {
	return IsPrefix(a, b) || IsPrefix(b, a)
}
