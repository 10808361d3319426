// Package observability provides hooks for logging and metrics of collation runs.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. A caller passes a [CollationHooks]
// value with the options of each collation run; there is no process-wide
// registry, so concurrent runs can report to different sinks.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define a hook interface for collation events
//   - Provide a no-op default implementation
//   - Provide a logging adapter and a fan-out combinator
//
// # Usage
//
//	hooks := observability.Multi(
//	    observability.NewLogHooks(logger),
//	    &myMetrics{},
//	)
//	res, err := collate.Collate(ctx, collate.Options{Hooks: hooks}, witnesses...)
package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Collation Hooks
// =============================================================================

// CollationHooks receives events from a collation run. Implementations must
// be safe for concurrent use when shared between runs.
type CollationHooks interface {
	// Run events
	OnCollateStart(ctx context.Context, runID string, sigils []string)
	OnCollateComplete(ctx context.Context, runID string, nodeCount int, duration time.Duration, err error)

	// Discovery events
	OnDiscoveryComplete(ctx context.Context, pairs, matches int, duration time.Duration)

	// Merge events, one pair per witness after the first
	OnMergeStart(ctx context.Context, sigil string, candidates int)
	OnMergeComplete(ctx context.Context, sigil string, chosen, expansions int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopCollationHooks is a no-op implementation of CollationHooks.
type NoopCollationHooks struct{}

func (NoopCollationHooks) OnCollateStart(context.Context, string, []string) {}
func (NoopCollationHooks) OnCollateComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopCollationHooks) OnDiscoveryComplete(context.Context, int, int, time.Duration) {}
func (NoopCollationHooks) OnMergeStart(context.Context, string, int)                   {}
func (NoopCollationHooks) OnMergeComplete(context.Context, string, int, int, time.Duration, error) {
}

// OrNoop returns h, or NoopCollationHooks if h is nil.
func OrNoop(h CollationHooks) CollationHooks {
	if h == nil {
		return NoopCollationHooks{}
	}
	return h
}

// =============================================================================
// Logging
// =============================================================================

// LogHooks forwards collation events to a charm logger: run boundaries at
// info level, discovery and merges at debug level, failures at error level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnCollateStart(_ context.Context, runID string, sigils []string) {
	h.logger.Info("collation started", "run", runID, "witnesses", len(sigils))
}

func (h *LogHooks) OnCollateComplete(_ context.Context, runID string, nodeCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error("collation failed", "run", runID, "error", err, "elapsed", duration)
		return
	}
	h.logger.Info("collation complete", "run", runID, "nodes", nodeCount, "elapsed", duration)
}

func (h *LogHooks) OnDiscoveryComplete(_ context.Context, pairs, matches int, duration time.Duration) {
	h.logger.Debug("matches discovered", "pairs", pairs, "matches", matches, "elapsed", duration)
}

func (h *LogHooks) OnMergeStart(_ context.Context, sigil string, candidates int) {
	h.logger.Debug("merging witness", "sigil", sigil, "candidates", candidates)
}

func (h *LogHooks) OnMergeComplete(_ context.Context, sigil string, chosen, expansions int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error("merge failed", "sigil", sigil, "expansions", expansions, "error", err)
		return
	}
	h.logger.Debug("witness merged", "sigil", sigil, "chosen", chosen, "expansions", expansions, "elapsed", duration)
}

// =============================================================================
// Fan-out
// =============================================================================

type multiHooks []CollationHooks

// Multi returns hooks that forward every event to each of hs in order.
// Nil entries are skipped.
func Multi(hs ...CollationHooks) CollationHooks {
	var m multiHooks
	for _, h := range hs {
		if h != nil {
			m = append(m, h)
		}
	}
	if len(m) == 0 {
		return NoopCollationHooks{}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiHooks) OnCollateStart(ctx context.Context, runID string, sigils []string) {
	for _, h := range m {
		h.OnCollateStart(ctx, runID, sigils)
	}
}

func (m multiHooks) OnCollateComplete(ctx context.Context, runID string, nodeCount int, duration time.Duration, err error) {
	for _, h := range m {
		h.OnCollateComplete(ctx, runID, nodeCount, duration, err)
	}
}

func (m multiHooks) OnDiscoveryComplete(ctx context.Context, pairs, matches int, duration time.Duration) {
	for _, h := range m {
		h.OnDiscoveryComplete(ctx, pairs, matches, duration)
	}
}

func (m multiHooks) OnMergeStart(ctx context.Context, sigil string, candidates int) {
	for _, h := range m {
		h.OnMergeStart(ctx, sigil, candidates)
	}
}

func (m multiHooks) OnMergeComplete(ctx context.Context, sigil string, chosen, expansions int, duration time.Duration, err error) {
	for _, h := range m {
		h.OnMergeComplete(ctx, sigil, chosen, expansions, duration, err)
	}
}
