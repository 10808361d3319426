package witness

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnbalancedMarkup is returned when CloseMarkup has nothing to close
	// or Build finds markup still open.
	ErrUnbalancedMarkup = errors.New("unbalanced markup")

	// ErrUnbalancedVariation is returned when branch and variation calls are
	// not properly nested.
	ErrUnbalancedVariation = errors.New("unbalanced variation")
)

// ImmediateDeletionSegment is the path segment used for <del> elements
// marked as instant (immediate) deletions.
const ImmediateDeletionSegment = "del:immediate"

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNormalizer sets the function used to compute Token.Normalized.
// The default is Normalize.
func WithNormalizer(fn NormalizeFunc) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.normalize = fn
		}
	}
}

// variation tracks one open variation point.
type variation struct {
	entry    []VertexID // tails when the variation opened
	exits    []VertexID // tails collected from finished branches
	inBranch bool
	branches int
}

// Builder assembles a witness Graph from a stream of markup and text
// events. Vertices are wired as they are added: every token is connected
// from the current tails (the vertices the text has reached so far).
//
// Builder methods record the first error and turn later calls into
// no-ops; Build returns it.
type Builder struct {
	g         *Graph
	normalize NormalizeFunc

	tails    []VertexID
	open     []MarkupID
	segments []string
	branch   []int
	frames   []*variation
	branchID int
	err      error
}

// NewBuilder creates a builder for the witness with the given sigil.
func NewBuilder(sigil string, opts ...BuilderOption) *Builder {
	b := &Builder{
		g:         NewGraph(sigil),
		normalize: Normalize,
		branch:    []int{0},
	}
	b.tails = []VertexID{b.g.Start()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// OpenMarkup opens an element. Tokens added until the matching CloseMarkup
// are annotated with it.
func (b *Builder) OpenMarkup(tag string, attrs map[string]string) MarkupID {
	id := b.g.AddMarkup(tag, attrs, len(b.open))
	b.open = append(b.open, id)
	b.segments = append(b.segments, pathSegment(tag, attrs))
	return id
}

func pathSegment(tag string, attrs map[string]string) string {
	if tag == "del" && (attrs["instant"] == "true" || attrs["type"] == "instant") {
		return ImmediateDeletionSegment
	}
	return tag
}

// CloseMarkup closes the innermost open element.
func (b *Builder) CloseMarkup() {
	if len(b.open) == 0 {
		b.fail(ErrUnbalancedMarkup)
		return
	}
	b.open = b.open[:len(b.open)-1]
	b.segments = b.segments[:len(b.segments)-1]
}

// AddToken appends a token after the current tails. An empty content
// string adds a milestone token.
func (b *Builder) AddToken(content string) VertexID {
	if b.err != nil {
		return -1
	}
	v := b.g.AddContent(Token{
		Content:    content,
		Normalized: b.normalize(content),
		Path:       "/" + strings.Join(b.segments, "/"),
		BranchPath: b.branch,
	})
	for _, t := range b.tails {
		if err := b.g.AddEdge(t, v); err != nil {
			b.fail(err)
			return -1
		}
	}
	for _, m := range b.open {
		if err := b.g.Annotate(m, v); err != nil {
			b.fail(err)
			return -1
		}
	}
	b.tails = []VertexID{v}
	return v
}

// BeginVariation opens a variation point. Every branch of the variation
// starts from the tails current at this call.
func (b *Builder) BeginVariation() {
	b.frames = append(b.frames, &variation{entry: slices.Clone(b.tails)})
}

func (b *Builder) top() *variation {
	if len(b.frames) == 0 {
		return nil
	}
	return b.frames[len(b.frames)-1]
}

// BeginBranch opens the next branch of the innermost variation and assigns
// it a fresh branch identifier.
func (b *Builder) BeginBranch() {
	f := b.top()
	if f == nil || f.inBranch {
		b.fail(fmt.Errorf("begin branch: %w", ErrUnbalancedVariation))
		return
	}
	b.branchID++
	f.inBranch = true
	f.branches++
	b.branch = append(slices.Clone(b.branch), b.branchID)
	b.tails = slices.Clone(f.entry)
}

// EndBranch closes the current branch. A branch without tokens leaves its
// entry tails as exits, which becomes a skip edge past the variation.
func (b *Builder) EndBranch() {
	f := b.top()
	if f == nil || !f.inBranch {
		b.fail(fmt.Errorf("end branch: %w", ErrUnbalancedVariation))
		return
	}
	f.inBranch = false
	for _, t := range b.tails {
		if !slices.Contains(f.exits, t) {
			f.exits = append(f.exits, t)
		}
	}
	b.branch = b.branch[:len(b.branch)-1]
}

// EndVariation closes the innermost variation; its branches reconverge at
// the next token.
func (b *Builder) EndVariation() {
	f := b.top()
	if f == nil || f.inBranch {
		b.fail(fmt.Errorf("end variation: %w", ErrUnbalancedVariation))
		return
	}
	b.frames = b.frames[:len(b.frames)-1]
	if f.branches == 0 {
		b.tails = f.entry
		return
	}
	b.tails = f.exits
}

// Depth returns the number of open variation points.
func (b *Builder) Depth() int { return len(b.frames) }

// Build connects the current tails to the end vertex, validates the graph
// and returns it. The Builder must not be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.frames) > 0 {
		return nil, fmt.Errorf("build: %d open variations: %w", len(b.frames), ErrUnbalancedVariation)
	}
	if len(b.open) > 0 {
		return nil, fmt.Errorf("build: %d open elements: %w", len(b.open), ErrUnbalancedMarkup)
	}
	for _, t := range b.tails {
		if err := b.g.AddEdge(t, b.g.End()); err != nil {
			return nil, err
		}
	}
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}
