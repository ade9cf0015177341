package stats

import (
	"sort"

	"github.com/evmartin/katatrack/internal/codewars"
)

// DailyHistogram groups records by UTC calendar date (YYYY-MM-DD) and
// counts completions per day. Days with no completions get no key; gaps
// are not zero-filled. Counts are whole-day totals, not an hour-of-day
// breakdown.
func DailyHistogram(records []codewars.CompletionRecord) map[string]int {
	hist := make(map[string]int)
	for _, rec := range records {
		day := rec.CompletedAt.UTC().Format("2006-01-02")
		hist[day]++
	}
	return hist
}

// HistogramDays returns the union of days across histograms, sorted
// ascending. The YYYY-MM-DD form makes lexical order chronological.
func HistogramDays(histograms []map[string]int) []string {
	seen := make(map[string]struct{})
	for _, h := range histograms {
		for day := range h {
			seen[day] = struct{}{}
		}
	}
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
