// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Confidence is one of five ordinal topical-alignment categories. The
// categories form a total order: Very Low < Low < Medium < High < Very High.
type Confidence string

const (
	ConfidenceVeryLow  Confidence = "Very Low"
	ConfidenceLow      Confidence = "Low"
	ConfidenceMedium   Confidence = "Medium"
	ConfidenceHigh     Confidence = "High"
	ConfidenceVeryHigh Confidence = "Very High"
)

// confidenceRanks orders the five categories for comparison.
var confidenceRanks = map[Confidence]int{
	ConfidenceVeryLow:  0,
	ConfidenceLow:      1,
	ConfidenceMedium:   2,
	ConfidenceHigh:     3,
	ConfidenceVeryHigh: 4,
}

// Rank returns the position of c in the total order, with Very Low at 0.
// An unrecognized value ranks below Very Low.
func (c Confidence) Rank() int {
	if r, ok := confidenceRanks[c]; ok {
		return r
	}
	return -1
}

// ParseConfidence canonicalizes a confidence token from a judge reply.
// Matching is case-insensitive and tolerant of surrounding whitespace.
// Returns false if the token is not one of the five categories.
func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "very low":
		return ConfidenceVeryLow, true
	case "low":
		return ConfidenceLow, true
	case "medium":
		return ConfidenceMedium, true
	case "high":
		return ConfidenceHigh, true
	case "very high":
		return ConfidenceVeryHigh, true
	}
	return "", false
}

// InvestigatorMatch records one author-to-investigator pairing that passed
// the name-matching heuristic.
type InvestigatorMatch struct {
	// Author is the publication author display name as given.
	Author string `json:"author" yaml:"author"`

	// Investigator is the grant investigator name that matched.
	Investigator string `json:"investigator" yaml:"investigator"`
}

// CandidateGrant is a (publication, grant) pairing that survived both
// heuristic gates and is eligible for external judgment. Candidates are
// transient: built per publication, discarded once its best match resolves.
type CandidateGrant struct {
	// Grant references the candidate grant.
	Grant *Grant

	// Matches holds the author-to-investigator evidence, in author order.
	Matches []InvestigatorMatch

	// TemporalScore is the temporal alignment score in (0, 1].
	TemporalScore float64
}

// RankScore is the candidate ordering key: temporal score weighted by the
// number of matched author pairs.
func (c CandidateGrant) RankScore() float64 {
	return c.TemporalScore * float64(len(c.Matches))
}

// JudgmentResult is the outcome of one external relevance judgment for a
// (publication, candidate) pair.
type JudgmentResult struct {
	// GrantTitle is the judged grant's title.
	GrantTitle string `json:"grant_title" yaml:"grant_title"`

	// GrantCode is the judged grant's identifier.
	GrantCode string `json:"grant_code" yaml:"grant_code"`

	// Confidence is the topical-alignment category assigned by the judge.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Reasoning is the judge's short justification, or a note describing
	// how a failed call degraded to a low-confidence answer.
	Reasoning string `json:"reasoning" yaml:"reasoning"`
}

// MatchRecord pairs an input publication with its resolved best judgment.
// A publication with no surviving candidates has an empty judgment.
type MatchRecord struct {
	Publication Publication
	GrantTitle  string
	GrantCode   string
	Confidence  Confidence
	Reasoning   string
}

// Mapped reports whether the publication was linked to a grant.
func (r MatchRecord) Mapped() bool {
	return r.GrantTitle != ""
}

// RunProgress is the durable state of a mapping run. It is the single
// source of truth for resuming an interrupted run.
type RunProgress struct {
	// TotalPublications is the size of the input publication set.
	TotalPublications int `json:"total_publications" yaml:"total_publications"`

	// ProcessedCount is the number of publications fully resolved so far.
	// Monotonically non-decreasing; equals TotalPublications at completion.
	ProcessedCount int `json:"processed_count" yaml:"processed_count"`

	// MappedCount is the number of processed publications that were linked
	// to a grant. Never exceeds ProcessedCount.
	MappedCount int `json:"mapped_count" yaml:"mapped_count"`

	// BatchNumber is the 1-based number of the batch currently in flight
	// (or next to run).
	BatchNumber int `json:"batch_number" yaml:"batch_number"`

	// LastProcessedIndex is the input index of the last publication touched.
	LastProcessedIndex int `json:"last_processed_index" yaml:"last_processed_index"`

	// APICallsMade counts external judgment calls issued.
	APICallsMade int `json:"api_calls_made" yaml:"api_calls_made"`

	// APICallsFailed counts external calls that failed due to rate limiting.
	APICallsFailed int `json:"api_calls_failed" yaml:"api_calls_failed"`

	// UpdatedAt is the time the progress document was last persisted.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
