// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package judge spends the expensive external relevance judgment on
// candidate pairings that survived heuristic filtering, and classifies
// every call into exactly two outcomes: an answer (possibly degraded to
// low confidence) or a rate limit that must pause the run.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/grant-mapper/internal/httputil"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

// Outcome classifies one judgment call. Only OutcomeRateLimited may
// interrupt batch progress; every other failure degrades to a
// low-confidence answer so the candidate loop always terminates.
type Outcome int

const (
	// OutcomeSuccess means a usable JudgmentResult was produced, whether
	// from a parsed reply or a local degrade-to-Low fallback.
	OutcomeSuccess Outcome = iota

	// OutcomeRateLimited means the backend returned HTTP 429. The caller
	// must stop issuing calls and enter the recovery path.
	OutcomeRateLimited
)

// Judge evaluates candidate pairings against the external scoring backend.
type Judge struct {
	backend Backend
}

// New returns a Judge using the given backend.
func New(backend Backend) *Judge {
	return &Judge{backend: backend}
}

// reply is the JSON object expected inside the backend's answer text.
type reply struct {
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Evaluate judges the topical alignment of one (publication, candidate)
// pair. The returned JudgmentResult always carries the candidate's grant
// title and code; on any failure other than rate limiting the confidence
// defaults to Low with the failure noted in the reasoning.
func (j *Judge) Evaluate(ctx context.Context, pub types.Publication, cand types.CandidateGrant) (types.JudgmentResult, Outcome) {
	result := types.JudgmentResult{
		GrantTitle: cand.Grant.Title,
		GrantCode:  cand.Grant.Code,
		Confidence: types.ConfidenceLow,
	}

	prompt, err := renderPrompt(pub, cand)
	if err != nil {
		result.Reasoning = fmt.Sprintf("Error rendering prompt: %v", err)
		return result, OutcomeSuccess
	}

	answer, err := j.backend.Judge(ctx, systemPrompt, prompt)
	if err != nil {
		if httputil.IsRateLimited(err) {
			result.Reasoning = "Rate limit exceeded"
			return result, OutcomeRateLimited
		}
		result.Reasoning = fmt.Sprintf("Error in analysis: %s", truncateErr(err))
		return result, OutcomeSuccess
	}

	parsed, ok := parseReply(answer)
	if !ok {
		result.Reasoning = "Failed to parse judgment reply"
		return result, OutcomeSuccess
	}

	confidence, ok := types.ParseConfidence(parsed.Confidence)
	if !ok {
		result.Reasoning = fmt.Sprintf("Unrecognized confidence %q in judgment reply", parsed.Confidence)
		return result, OutcomeSuccess
	}

	result.Confidence = confidence
	result.Reasoning = parsed.Reasoning
	return result, OutcomeSuccess
}

// parseReply extracts the first {...} span from the answer text and
// unmarshals it. Models occasionally wrap the JSON in prose or code
// fences; the span extraction tolerates both.
func parseReply(answer string) (reply, bool) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start == -1 || end <= start {
		return reply{}, false
	}

	var r reply
	if err := json.Unmarshal([]byte(answer[start:end+1]), &r); err != nil {
		return reply{}, false
	}
	return r, true
}

// truncateErr keeps degraded-answer reasoning readable.
func truncateErr(err error) string {
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:100]
	}
	return msg
}
