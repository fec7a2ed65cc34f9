// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "time"

// graceDays is the fixed grace window after a grant's end date during which
// a publication is still considered a plausible outcome of the grant. The
// window is computed in calendar days, not whole years, so leap-year and
// date-boundary effects are preserved.
const graceDays = 730

// TemporalScore scores how well a publication year fits a grant's active
// window plus the grace period. Returns a value in [0, 1]:
//
//	0    — outside [start year, grace end year]; excluded from candidacy
//	1    — within the grant's nominal active years
//	else — linear decay of 0.25 per year past the end year, floored at 0.5
func TemporalScore(publicationYear int, grantStart, grantEnd time.Time) float64 {
	startYear := grantStart.Year()
	endYear := grantEnd.Year()
	graceEndYear := grantEnd.AddDate(0, 0, graceDays).Year()

	if publicationYear < startYear || publicationYear > graceEndYear {
		return 0.0
	}

	if startYear <= publicationYear && publicationYear <= endYear {
		return 1.0
	}

	if endYear < publicationYear && publicationYear <= graceEndYear {
		yearsAfter := publicationYear - endYear
		return max(0.5, 1.0-float64(yearsAfter)*0.25)
	}

	return 0.5
}
