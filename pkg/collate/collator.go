package collate

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hypercollate/pkg/collation"
	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/observability"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxExpansions caps the match search per merged witness.
	DefaultMaxExpansions = 200_000

	// DefaultTimeout is the per-witness search deadline. Zero disables it.
	DefaultTimeout = 0
)

// =============================================================================
// Options
// =============================================================================

// Options configures a collation run.
type Options struct {
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger

	// Hooks receives run, discovery and merge events. Nil means no-op.
	Hooks observability.CollationHooks

	// RunID identifies the run in logs and hook events. Empty means a
	// random UUID.
	RunID string

	// MaxExpansions caps the search states expanded per merged witness.
	// Zero means DefaultMaxExpansions; negative means no cap.
	MaxExpansions int

	// Timeout bounds the search per merged witness. Zero means no deadline.
	Timeout time.Duration

	// Coalesce merges runs of equivalent nodes in the result graph.
	Coalesce bool

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Timeout < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidInput, "timeout must not be negative")
	}
	if o.MaxExpansions == 0 {
		o.MaxExpansions = DefaultMaxExpansions
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Hooks = observability.OrNoop(o.Hooks)
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	o.validated = true
	return nil
}

func (o *Options) searchOptions() SearchOptions {
	return SearchOptions{MaxExpansions: max(o.MaxExpansions, 0)}
}

// =============================================================================
// Result
// =============================================================================

// MergeStats describes how one witness was merged.
type MergeStats struct {
	Sigil    string
	Chosen   []CollatedMatch // Sorted by vertex rank
	Search   SearchStats
	Duration time.Duration
}

// Result is the outcome of a collation run.
type Result struct {
	// RunID identifies the run.
	RunID string

	// Sigils lists the witnesses in merge order.
	Sigils []string

	// Witnesses holds the collated witnesses in merge order.
	Witnesses []*witness.Graph

	// Graph is the collation graph, coalesced if requested.
	Graph *collation.Graph

	// Uncoalesced is the graph before coalescing. It equals Graph when
	// coalescing was not requested.
	Uncoalesced *collation.Graph

	// Matches holds all pairwise matches found by discovery.
	Matches []Match

	// Merges holds one entry per witness after the first, in merge order.
	Merges []MergeStats

	Duration time.Duration
}

// =============================================================================
// Collation
// =============================================================================

// Collate merges witnesses in the given order into one collation graph.
//
// The first witness initializes the graph. Each further witness is matched
// against all witnesses merged before it and merged with the largest
// consistent match set. Witnesses must carry distinct sigils and valid
// graphs; they are not modified and may be shared between runs.
//
// Errors carry a code: INVALID_INPUT or INVALID_WITNESS for bad input,
// SEARCH_EXHAUSTED when a bound is hit, and INVARIANT_VIOLATION for
// internal defects. No partial graph is returned on error.
func Collate(ctx context.Context, opts Options, witnesses ...*witness.Graph) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(witnesses) == 0 {
		return nil, hcerrors.New(hcerrors.ErrCodeInvalidInput, "no witnesses to collate")
	}

	sigils := make([]string, len(witnesses))
	for i, w := range witnesses {
		if w == nil {
			return nil, hcerrors.New(hcerrors.ErrCodeInvalidInput, "witness %d is nil", i)
		}
		sigils[i] = w.Sigil()
	}
	if err := hcerrors.ValidateSigils(sigils); err != nil {
		return nil, err
	}
	for _, w := range witnesses {
		if err := w.Validate(); err != nil {
			return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidWitness, err, "witness %s", w.Sigil())
		}
	}

	c := &collator{opts: opts, logger: opts.Logger.With("run", opts.RunID)}
	start := time.Now()
	opts.Hooks.OnCollateStart(ctx, opts.RunID, sigils)

	res, err := c.run(ctx, witnesses)

	elapsed := time.Since(start)
	nodes := 0
	if res != nil {
		res.Duration = elapsed
		nodes = res.Graph.Len()
	}
	opts.Hooks.OnCollateComplete(ctx, opts.RunID, nodes, elapsed, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type collator struct {
	opts   Options
	logger *log.Logger
}

func (c *collator) run(ctx context.Context, witnesses []*witness.Graph) (*Result, error) {
	res := &Result{RunID: c.opts.RunID, Witnesses: slices.Clone(witnesses)}
	for _, w := range witnesses {
		res.Sigils = append(res.Sigils, w.Sigil())
	}

	start := time.Now()
	matches, err := FindMatches(ctx, witnesses)
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeSearchExhausted, err, "match discovery interrupted")
	}
	res.Matches = matches
	pairs := len(witnesses) * (len(witnesses) - 1) / 2
	c.opts.Hooks.OnDiscoveryComplete(ctx, pairs, len(matches), time.Since(start))
	c.logger.Debug("discovery complete", "pairs", pairs, "matches", len(matches))

	asm := newAssembler()
	if err := asm.merge(witnesses[0], nil); err != nil {
		return nil, err
	}
	c.logger.Debug("graph initialized", "sigil", witnesses[0].Sigil(), "nodes", asm.g.Len())

	for _, w := range witnesses[1:] {
		stats, err := c.mergeWitness(ctx, asm, w, matches)
		if err != nil {
			return nil, err
		}
		res.Merges = append(res.Merges, stats)
	}

	res.Uncoalesced = asm.g
	res.Graph = asm.g
	if c.opts.Coalesce {
		if res.Graph, err = collation.Coalesce(asm.g); err != nil {
			return nil, err
		}
		c.logger.Debug("graph coalesced", "before", asm.g.Len(), "after", res.Graph.Len())
	}
	return res, nil
}

func (c *collator) mergeWitness(ctx context.Context, asm *assembler, w *witness.Graph, matches []Match) (MergeStats, error) {
	sigil := w.Sigil()
	start := time.Now()
	stats := MergeStats{Sigil: sigil}

	candidates := collatedMatches(asm.g, asm.placed, w, matches)
	c.opts.Hooks.OnMergeStart(ctx, sigil, len(candidates))

	searchCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	chosen, search, err := SelectMatches(searchCtx, candidates, c.opts.searchOptions())
	stats.Search = search
	if err == nil {
		stats.Chosen = slices.Clone(chosen)
		err = asm.merge(w, chosen)
	}
	stats.Duration = time.Since(start)
	c.opts.Hooks.OnMergeComplete(ctx, sigil, len(chosen), search.Expanded, stats.Duration, err)
	if err != nil {
		return stats, fmt.Errorf("merge witness %s: %w", sigil, err)
	}

	c.logger.Debug("witness merged",
		"sigil", sigil,
		"candidates", len(candidates),
		"chosen", len(chosen),
		"expanded", search.Expanded,
		"nodes", asm.g.Len())
	return stats, nil
}
