// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestTemporalScore(t *testing.T) {
	tests := []struct {
		name    string
		pubYear int
		start   time.Time
		end     time.Time
		want    float64
	}{
		{"before start year", 2016, date(2017, 3, 1), date(2019, 2, 28), 0.0},
		{"start year", 2017, date(2017, 3, 1), date(2019, 2, 28), 1.0},
		{"middle of active period", 2018, date(2017, 3, 1), date(2019, 2, 28), 1.0},
		{"end year", 2019, date(2017, 3, 1), date(2019, 2, 28), 1.0},
		{"one year into grace", 2020, date(2017, 3, 1), date(2019, 2, 28), 0.75},
		{"two years into grace", 2021, date(2017, 3, 1), date(2019, 2, 28), 0.5},
		{"past grace window", 2022, date(2017, 3, 1), date(2019, 2, 28), 0.0},
		// End 2020-01-01 + 730 days lands on 2021-12-31, not 2022-01-01:
		// the day-based rule keeps 2022 out of the window even though a
		// naive +2-to-the-year rule would let it in.
		{"day-based grace boundary in", 2021, date(2018, 1, 1), date(2020, 1, 1), 0.75},
		{"day-based grace boundary out", 2022, date(2018, 1, 1), date(2020, 1, 1), 0.0},
		// End 2019-07-01 + 730 days lands on 2021-06-30, so 2021 is the
		// last eligible year.
		{"mid-year end keeps second grace year", 2021, date(2017, 7, 1), date(2019, 7, 1), 0.5},
		{"single-year grant", 2020, date(2020, 1, 15), date(2020, 11, 30), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TemporalScore(tt.pubYear, tt.start, tt.end)
			if got != tt.want {
				t.Errorf("TemporalScore(%d, %v, %v) = %v, want %v",
					tt.pubYear, tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestTemporalScoreZeroExcludesCandidacy(t *testing.T) {
	// Any year strictly outside [start year, grace end year] scores 0.
	start, end := date(2015, 6, 1), date(2018, 5, 31)
	for year := 2000; year <= 2030; year++ {
		score := TemporalScore(year, start, end)
		inWindow := year >= 2015 && year <= end.AddDate(0, 0, 730).Year()
		if inWindow && score == 0 {
			t.Errorf("year %d inside window scored 0", year)
		}
		if !inWindow && score != 0 {
			t.Errorf("year %d outside window scored %v", year, score)
		}
	}
}
