// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-mapper/internal/httputil"
	"github.com/pdiddy/grant-mapper/internal/judge"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

// fakeBackend answers judgment prompts deterministically from the grant
// title embedded in the prompt, and can inject a single rate-limit error
// at a chosen call number.
type fakeBackend struct {
	mu          sync.Mutex
	calls       int
	limitAtCall int // 1-based; 0 disables
}

func (b *fakeBackend) Judge(ctx context.Context, system, user string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.limitAtCall > 0 && b.calls == b.limitAtCall {
		return "", &httputil.StatusError{StatusCode: 429, Body: "rate limited"}
	}
	switch {
	case strings.Contains(user, "Memory consolidation"):
		return `{"confidence": "High", "reasoning": "Topic and team align."}`, nil
	case strings.Contains(user, "Protein folding"):
		return `{"confidence": "Low", "reasoning": "Weak topical overlap."}`, nil
	default:
		return `{"confidence": "Medium", "reasoning": "Partial alignment."}`, nil
	}
}

func testGrants() []types.Grant {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	return []types.Grant{
		{
			Code:             "G-MEM",
			Title:            "Memory consolidation during sleep",
			Description:      "Hippocampal replay and systems consolidation.",
			LeadInvestigator: "Dr. Martin Williams",
			StartDate:        start,
			EndDate:          end,
		},
		{
			Code:             "G-FOLD",
			Title:            "Protein folding dynamics",
			Description:      "Chaperone-assisted folding pathways.",
			LeadInvestigator: "Prof. Sarah Chen",
			StartDate:        start,
			EndDate:          end,
		},
	}
}

func testPublications() []types.Publication {
	return []types.Publication{
		{Title: "Replay of waking experience during sleep", Year: 2019,
			Authors: []string{"Martin Williams", "A. Student"}},
		{Title: "Chaperone kinetics revisited", Year: 2020,
			Authors: []string{"Sarah Chen"}},
		{Title: "Unrelated editorial", Year: 2019,
			Authors: []string{"Nobody Known"}},
		{Title: "Sleep, memory, and the hippocampus", Year: 2021,
			Authors: []string{"Martin Williams", "Sarah Chen"}},
	}
}

func testCoordinator(t *testing.T, backend judge.Backend, batchSize int) (*Coordinator, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := types.BatchConfig{
		BatchSize:      batchSize,
		ProgressFile:   filepath.Join(dir, "progress.yaml"),
		ResultsFile:    filepath.Join(dir, "results.csv"),
		CheckpointFile: filepath.Join(dir, "checkpoint.csv"),
	}
	c := New(judge.New(backend), types.MatchConfig{MaxCandidates: 2}, cfg, io.Discard)
	return c, dir
}

func TestCoordinatorCompletesRun(t *testing.T) {
	backend := &fakeBackend{}
	c, dir := testCoordinator(t, backend, 2)

	progress, err := c.Run(context.Background(), testGrants(), testPublications())
	require.NoError(t, err)

	assert.Equal(t, 4, progress.TotalPublications)
	assert.Equal(t, 4, progress.ProcessedCount)
	assert.Equal(t, 3, progress.MappedCount, "the editorial has no candidates")
	assert.Equal(t, 0, progress.APICallsFailed)

	records, err := rowStore{path: filepath.Join(dir, "results.csv")}.Read()
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Rows stay in input order.
	assert.Equal(t, "Replay of waking experience during sleep", records[0].Publication.Title)
	assert.Equal(t, "G-MEM", records[0].GrantCode)
	assert.Equal(t, types.ConfidenceHigh, records[0].Confidence)
	assert.Equal(t, "G-FOLD", records[1].GrantCode)
	assert.Equal(t, types.ConfidenceLow, records[1].Confidence)
	assert.False(t, records[2].Mapped())

	// Both grants qualify for the joint paper; the aggregator keeps the
	// higher-confidence judgment.
	assert.Equal(t, "G-MEM", records[3].GrantCode)
	assert.Equal(t, types.ConfidenceHigh, records[3].Confidence)

	// Transient state is cleaned up on completion.
	_, err = os.Stat(filepath.Join(dir, "progress.yaml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "checkpoint.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestCoordinatorPersistsStateOnRateLimit(t *testing.T) {
	// Third judgment call is rate limited: publication 1 (one call) and
	// publication 2 (one call) complete, then the joint paper's first
	// candidate call fails. RetryDelay is left zero so Run retries
	// immediately and finishes.
	backend := &fakeBackend{limitAtCall: 3}
	c, dir := testCoordinator(t, backend, 10)

	progress, err := c.Run(context.Background(), testGrants(), testPublications())
	require.NoError(t, err)

	assert.Equal(t, 4, progress.ProcessedCount)
	assert.Equal(t, 1, progress.APICallsFailed)
	// The interrupted publication is re-evaluated from scratch after the
	// pause: two calls before the failure, the failed call itself, then
	// both of the joint paper's candidates judged fresh.
	assert.Equal(t, 5, progress.APICallsMade)

	records, err := rowStore{path: filepath.Join(dir, "results.csv")}.Read()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "G-MEM", records[3].GrantCode)

	_, err = os.Stat(filepath.Join(dir, "checkpoint.csv"))
	assert.True(t, os.IsNotExist(err), "checkpoint folded into results on completion")
}

func TestCoordinatorResumeAfterCancellation(t *testing.T) {
	grants := testGrants()
	pubs := testPublications()

	// Reference run with no interruption.
	refBackend := &fakeBackend{}
	ref, refDir := testCoordinator(t, refBackend, 2)
	_, err := ref.Run(context.Background(), grants, pubs)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(refDir, "results.csv"))
	require.NoError(t, err)

	// Interrupted run: cancel the context after the second judgment call's
	// inter-call delay begins.
	ctx, cancel := context.WithCancel(context.Background())
	backend := &fakeBackend{}
	c, dir := testCoordinator(t, backend, 2)
	c.cfg.CallDelay = 50 * time.Millisecond
	go func() {
		for {
			backend.mu.Lock()
			n := backend.calls
			backend.mu.Unlock()
			if n >= 2 {
				cancel()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	_, err = c.Run(ctx, grants, pubs)
	require.ErrorIs(t, err, context.Canceled)

	// The run left a resumable progress document behind.
	saved, err := NewProgressStore(filepath.Join(dir, "progress.yaml")).Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Less(t, saved.ProcessedCount, saved.TotalPublications)

	// Resume with a fresh coordinator over the same files and no delays.
	resumed := New(judge.New(&fakeBackend{}), types.MatchConfig{MaxCandidates: 2}, types.BatchConfig{
		BatchSize:      2,
		ProgressFile:   filepath.Join(dir, "progress.yaml"),
		ResultsFile:    filepath.Join(dir, "results.csv"),
		CheckpointFile: filepath.Join(dir, "checkpoint.csv"),
	}, io.Discard)

	progress, err := resumed.Run(context.Background(), grants, pubs)
	require.NoError(t, err)
	assert.Equal(t, progress.TotalPublications, progress.ProcessedCount)

	got, err := os.ReadFile(filepath.Join(dir, "results.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got), "resumed run produces the same results file")
}

func TestCoordinatorRejectsMismatchedInput(t *testing.T) {
	c, dir := testCoordinator(t, &fakeBackend{}, 2)
	require.NoError(t, NewProgressStore(filepath.Join(dir, "progress.yaml")).Save(types.RunProgress{
		TotalPublications: 99,
	}))

	_, err := c.Run(context.Background(), testGrants(), testPublications())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete")
}

func TestCoordinatorNoCandidatesStillRecorded(t *testing.T) {
	c, dir := testCoordinator(t, &fakeBackend{}, 2)
	pubs := []types.Publication{
		{Title: "Anonymous report", Year: 2019, Authors: []string{"Nobody Known"}},
	}

	progress, err := c.Run(context.Background(), testGrants(), pubs)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.ProcessedCount)
	assert.Equal(t, 0, progress.MappedCount)
	assert.Equal(t, 0, progress.APICallsMade)

	records, err := rowStore{path: filepath.Join(dir, "results.csv")}.Read()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Mapped())
}
