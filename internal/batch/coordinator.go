// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the end-to-end mapping run in fixed-size batches,
// persisting progress and partial results so a rate-limited or interrupted
// run can resume without redoing completed work or losing results.
package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/grant-mapper/internal/httputil"
	"github.com/pdiddy/grant-mapper/internal/judge"
	"github.com/pdiddy/grant-mapper/internal/match"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

// Default coordinator settings, overridable via BatchConfig.
const (
	DefaultBatchSize    = 20
	DefaultProgressFile = "progress.yaml"
	DefaultResultsFile  = "results.csv"
	DefaultCheckpoint   = "checkpoint.csv"
)

// Coordinator owns the batch state machine. Execution is single-threaded
// and strictly ordered: one publication is fully resolved before the next
// begins, which is what makes the processed-count prefix a valid resume
// point.
type Coordinator struct {
	judge    *judge.Judge
	matchCfg types.MatchConfig
	cfg      types.BatchConfig
	w        io.Writer

	progress   ProgressStore
	results    rowStore
	checkpoint rowStore
}

// New returns a Coordinator writing progress output to w.
func New(j *judge.Judge, matchCfg types.MatchConfig, cfg types.BatchConfig, w io.Writer) *Coordinator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ProgressFile == "" {
		cfg.ProgressFile = DefaultProgressFile
	}
	if cfg.ResultsFile == "" {
		cfg.ResultsFile = DefaultResultsFile
	}
	if cfg.CheckpointFile == "" {
		cfg.CheckpointFile = DefaultCheckpoint
	}

	return &Coordinator{
		judge:      j,
		matchCfg:   matchCfg,
		cfg:        cfg,
		w:          w,
		progress:   NewProgressStore(cfg.ProgressFile),
		results:    rowStore{path: cfg.ResultsFile},
		checkpoint: rowStore{path: cfg.CheckpointFile},
	}
}

// Run executes the mapping pipeline over all publications, resuming from a
// persisted progress document if one exists. On completion the progress
// and checkpoint stores are deleted and the final counters returned. If
// the context is cancelled mid-run, progress and partial results are
// persisted before returning so the run can resume later.
func (c *Coordinator) Run(ctx context.Context, grants []types.Grant, pubs []types.Publication) (types.RunProgress, error) {
	progress, err := c.progress.Load()
	if err != nil {
		return types.RunProgress{}, err
	}

	if progress == nil {
		progress = &types.RunProgress{
			TotalPublications:  len(pubs),
			BatchNumber:        1,
			LastProcessedIndex: -1,
		}
		if err := c.results.EnsureHeader(); err != nil {
			return *progress, err
		}
		fmt.Fprintf(c.w, "starting fresh run: %d publications, %d grants\n", len(pubs), len(grants))
	} else {
		if progress.TotalPublications != len(pubs) {
			return *progress, fmt.Errorf("progress file covers %d publications but input has %d; delete %s to start over",
				progress.TotalPublications, len(pubs), c.cfg.ProgressFile)
		}
		fmt.Fprintf(c.w, "resuming run: %d/%d publications processed, %d mapped, %d API calls made\n",
			progress.ProcessedCount, progress.TotalPublications, progress.MappedCount, progress.APICallsMade)
	}

	for progress.ProcessedCount < progress.TotalPublications {
		start := progress.ProcessedCount
		end := min(start+c.cfg.BatchSize, progress.TotalPublications)

		fmt.Fprintf(c.w, "\nbatch %d: publications %d-%d of %d\n",
			progress.BatchNumber, start+1, end, progress.TotalPublications)

		rateLimited, err := c.processBatch(ctx, grants, pubs, start, end, progress)
		if err != nil {
			return *progress, err
		}

		if rateLimited {
			fmt.Fprintf(c.w, "rate limit encountered: %d/%d processed, results and progress persisted\n",
				progress.ProcessedCount, progress.TotalPublications)
			fmt.Fprintf(c.w, "waiting %s before retrying\n", c.cfg.RetryDelay)
			if err := httputil.Wait(ctx, c.cfg.RetryDelay); err != nil {
				return *progress, err
			}
			fmt.Fprintf(c.w, "retrying batch %d\n", progress.BatchNumber)
		}
	}

	c.writeSummary(*progress)

	if err := c.progress.Delete(); err != nil {
		return *progress, err
	}
	if err := c.checkpoint.Delete(); err != nil {
		return *progress, err
	}
	return *progress, nil
}

// processBatch resolves publications pubs[start:end] in order. It returns
// rateLimited=true when a judgment call hit the backend's rate limit; in
// that case progress and the batch's completed rows are already persisted
// and the interrupted publication is left for re-evaluation. A context
// cancellation persists the same state before returning the error.
func (c *Coordinator) processBatch(ctx context.Context, grants []types.Grant, pubs []types.Publication, start, end int, progress *types.RunProgress) (bool, error) {
	var completed []types.MatchRecord
	batchMapped := 0

	// pause persists everything a later resume needs: counters advanced by
	// the publications fully completed so far, and their result rows merged
	// into the checkpoint store.
	pause := func(interruptedIndex int) error {
		progress.ProcessedCount += len(completed)
		progress.MappedCount += batchMapped
		progress.LastProcessedIndex = interruptedIndex
		if err := c.progress.Save(*progress); err != nil {
			return err
		}
		return c.checkpoint.Append(completed)
	}

	for i := start; i < end; i++ {
		pub := pubs[i]
		fmt.Fprintf(c.w, "  [%d/%d] %s\n", i+1, progress.TotalPublications, truncateTitle(pub.Title))

		candidates := match.SelectCandidates(pub, grants, c.matchCfg.MaxCandidates)
		record := types.MatchRecord{Publication: pub}

		if len(candidates) == 0 {
			fmt.Fprintf(c.w, "    no candidates after pre-filtering\n")
			completed = append(completed, record)
			progress.LastProcessedIndex = i
			continue
		}

		var agg Aggregator
		for _, cand := range candidates {
			result, outcome := c.judge.Evaluate(ctx, pub, cand)
			progress.APICallsMade++

			if outcome == judge.OutcomeRateLimited {
				progress.APICallsFailed++
				if err := pause(i); err != nil {
					return false, err
				}
				return true, nil
			}

			agg.Observe(result)

			if err := httputil.Wait(ctx, c.cfg.CallDelay); err != nil {
				if perr := pause(i); perr != nil {
					return false, perr
				}
				return false, err
			}
		}

		if best, ok := agg.Best(); ok {
			record.GrantTitle = best.GrantTitle
			record.GrantCode = best.GrantCode
			record.Confidence = best.Confidence
			record.Reasoning = best.Reasoning
			batchMapped++
			fmt.Fprintf(c.w, "    mapped with %s confidence\n", best.Confidence)
		}

		completed = append(completed, record)
		progress.LastProcessedIndex = i
	}

	// Batch complete: fold any checkpointed rows from earlier interruptions
	// of this batch ahead of the rows finished now, keeping the results
	// file in input order.
	prior, err := c.checkpoint.Read()
	if err != nil {
		return false, err
	}
	if err := c.results.Append(append(prior, completed...)); err != nil {
		return false, err
	}
	if err := c.checkpoint.Delete(); err != nil {
		return false, err
	}

	progress.ProcessedCount += len(completed)
	progress.MappedCount += batchMapped
	progress.BatchNumber++
	if err := c.progress.Save(*progress); err != nil {
		return false, err
	}

	fmt.Fprintf(c.w, "batch complete: %d/%d processed, %d mapped so far\n",
		progress.ProcessedCount, progress.TotalPublications, progress.MappedCount)
	return false, nil
}

// writeSummary reports the completed run's counters and rates.
func (c *Coordinator) writeSummary(p types.RunProgress) {
	fmt.Fprintf(c.w, "\nrun complete: %d publications processed, %d mapped (%.1f%%)\n",
		p.ProcessedCount, p.MappedCount, rate(p.MappedCount, p.ProcessedCount))
	fmt.Fprintf(c.w, "API calls: %d made, %d rate-limited (%.1f%% success)\n",
		p.APICallsMade, p.APICallsFailed, rate(p.APICallsMade-p.APICallsFailed, p.APICallsMade))
	fmt.Fprintf(c.w, "results written to %s\n", c.cfg.ResultsFile)
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// truncateTitle keeps per-publication progress lines on one line.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 60 {
		return title
	}
	return string(runes[:60]) + "..."
}
