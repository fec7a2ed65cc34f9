// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "strings"

// MatchInvestigator reports whether a publication author matches any of the
// given grant investigator names, and returns the first investigator that
// matched (as given, not normalized).
//
// Two names match when their normalized forms are identical, or when both
// split into at least two tokens and the token sets share at least
// min(2, len(author tokens), len(investigator tokens)) members. The token
// rule is deliberately permissive: this is only a pre-filter, and the
// external judgment step is the precision backstop. A single-token name
// (e.g. a bare surname) can only match by exact equality.
func MatchInvestigator(author string, investigators []string) (bool, string) {
	authorNorm := NormalizeName(author)

	for _, inv := range investigators {
		invNorm := NormalizeName(inv)

		if authorNorm == invNorm && authorNorm != "" {
			return true, inv
		}

		authorParts := tokenSet(authorNorm)
		invParts := tokenSet(invNorm)
		if len(authorParts) < 2 || len(invParts) < 2 {
			continue
		}

		common := 0
		for tok := range authorParts {
			if invParts[tok] {
				common++
			}
		}
		need := min(2, len(authorParts), len(invParts))
		if common >= need {
			return true, inv
		}
	}

	return false, ""
}

// tokenSet splits a normalized name into its set of whitespace-delimited
// tokens, ignoring duplicates.
func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(name) {
		set[tok] = true
	}
	return set
}
