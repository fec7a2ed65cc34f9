// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"sort"

	"github.com/pdiddy/grant-mapper/pkg/types"
)

// DefaultMaxCandidates bounds the judgment calls spent per publication when
// no explicit cap is configured.
const DefaultMaxCandidates = 2

// SelectCandidates scans all grants for one publication and returns the
// surviving candidates, best first, truncated to maxCandidates.
//
// Both heuristics are mandatory gates: a grant with no matched author is
// skipped outright, as is a grant whose temporal score is 0. Survivors are
// ordered by temporal score weighted by the number of matched author pairs;
// ties keep the original grant order.
func SelectCandidates(pub types.Publication, grants []types.Grant, maxCandidates int) []types.CandidateGrant {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	var candidates []types.CandidateGrant

	for i := range grants {
		grant := &grants[i]
		investigators := grant.Investigators()
		if len(investigators) == 0 {
			continue
		}

		var matches []types.InvestigatorMatch
		for _, author := range pub.Authors {
			if ok, inv := MatchInvestigator(author, investigators); ok {
				matches = append(matches, types.InvestigatorMatch{Author: author, Investigator: inv})
			}
		}
		if len(matches) == 0 {
			continue
		}

		score := TemporalScore(pub.Year, grant.StartDate, grant.EndDate)
		if score == 0 {
			continue
		}

		candidates = append(candidates, types.CandidateGrant{
			Grant:         grant,
			Matches:       matches,
			TemporalScore: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RankScore() > candidates[j].RankScore()
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}
