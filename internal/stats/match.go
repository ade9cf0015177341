package stats

import (
	"time"

	"github.com/evmartin/katatrack/internal/codewars"
)

// MatchVector reports, per catalog id and in catalog order, whether the
// history contains a completion for that id: 1 for a match, 0 otherwise.
// Lookup takes the first record in record-set order whose kata id
// matches; record sets keep API page order, so with a cutoff the chosen
// record is whichever the source listed first, not necessarily the
// earliest or latest completion. With no cutoff any match counts; with a
// cutoff the matched record's UTC date must be on or after the cutoff
// date.
func MatchVector(records []codewars.CompletionRecord, ids []codewars.KataID, cutoff *time.Time) []int {
	vector := make([]int, len(ids))
	for i, id := range ids {
		rec, ok := firstByID(records, id)
		if !ok {
			continue
		}
		if cutoff == nil || !dateOf(rec.CompletedAt).Before(dateOf(*cutoff)) {
			vector[i] = 1
		}
	}
	return vector
}

// MatchCount is the number of catalog ids matched, i.e. the sum of
// MatchVector.
func MatchCount(records []codewars.CompletionRecord, ids []codewars.KataID, cutoff *time.Time) int {
	total := 0
	for _, v := range MatchVector(records, ids, cutoff) {
		total += v
	}
	return total
}

func firstByID(records []codewars.CompletionRecord, id codewars.KataID) (codewars.CompletionRecord, bool) {
	for _, rec := range records {
		if rec.KataID == id {
			return rec, true
		}
	}
	return codewars.CompletionRecord{}, false
}
