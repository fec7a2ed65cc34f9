// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import "github.com/pdiddy/grant-mapper/pkg/types"

// Aggregator keeps the single best judgment seen for one publication under
// the confidence total order. The first result observed wins ties, so
// candidates must be fed in selection order.
type Aggregator struct {
	best types.JudgmentResult
	seen bool
}

// Observe considers one judgment. A later result replaces the current best
// only when its confidence ranks strictly higher.
func (a *Aggregator) Observe(result types.JudgmentResult) {
	if !a.seen || result.Confidence.Rank() > a.best.Confidence.Rank() {
		a.best = result
		a.seen = true
	}
}

// Best returns the retained judgment. ok is false when nothing was
// observed, leaving the publication unmapped for this run.
func (a *Aggregator) Best() (types.JudgmentResult, bool) {
	return a.best, a.seen
}
