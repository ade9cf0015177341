// Package stats derives time-windowed counts, per-day histograms,
// catalog match vectors, and rankings from a user's completion history.
// All functions are pure over their inputs; "now" is always passed in.
// Calendar-date comparisons use UTC throughout.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/evmartin/katatrack/internal/codewars"
)

// WindowKind selects which time range a count is computed over.
type WindowKind string

const (
	WindowDaily   WindowKind = "daily"
	WindowWeekly  WindowKind = "weekly"
	WindowMonthly WindowKind = "monthly"
)

// ErrUnknownWindow reports an unrecognized window kind.
var ErrUnknownWindow = errors.New("unknown window kind")

const monthlySpan = 30 * 24 * time.Hour

// ParseWindowKind validates a user-supplied kind tag.
func ParseWindowKind(s string) (WindowKind, error) {
	switch WindowKind(s) {
	case WindowDaily, WindowWeekly, WindowMonthly:
		return WindowKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
}

// Daily counts records completed on now's UTC calendar date.
func Daily(records []codewars.CompletionRecord, now time.Time) int {
	today := dateOf(now)
	count := 0
	for _, rec := range records {
		if dateOf(rec.CompletedAt).Equal(today) {
			count++
		}
	}
	return count
}

// Weekly counts records completed in the inclusive window from the most
// recent Monday through now's date. If now is a Monday the window is a
// single day.
func Weekly(records []codewars.CompletionRecord, now time.Time) int {
	today := dateOf(now)
	monday := today.AddDate(0, 0, -mondayOffset(now))
	count := 0
	for _, rec := range records {
		day := dateOf(rec.CompletedAt)
		if !day.Before(monday) && !day.After(today) {
			count++
		}
	}
	return count
}

// Monthly counts records whose absolute distance from now is at most
// 30×86400 seconds, boundary inclusive. The comparison is deliberately
// two-sided: a record timestamped after now still counts if it is close
// enough.
func Monthly(records []codewars.CompletionRecord, now time.Time) int {
	count := 0
	for _, rec := range records {
		diff := now.Sub(rec.CompletedAt)
		if diff < 0 {
			diff = -diff
		}
		if diff <= monthlySpan {
			count++
		}
	}
	return count
}

// CompletedSince counts records completed on or after the given date,
// at day granularity. With a nil date it returns the profile-summary
// lifetime total, which can legitimately differ from len(Records)
// when the API total includes items pagination never returned.
func CompletedSince(h codewars.History, since *time.Time) int {
	if since == nil {
		return h.Profile.TotalCompleted
	}
	cutoff := dateOf(*since)
	count := 0
	for _, rec := range h.Records {
		if !dateOf(rec.CompletedAt).Before(cutoff) {
			count++
		}
	}
	return count
}

// ByWindow dispatches to Daily, Weekly, or Monthly by kind tag.
func ByWindow(records []codewars.CompletionRecord, kind WindowKind, now time.Time) (int, error) {
	switch kind {
	case WindowDaily:
		return Daily(records, now), nil
	case WindowWeekly:
		return Weekly(records, now), nil
	case WindowMonthly:
		return Monthly(records, now), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWindow, kind)
	}
}

// dateOf truncates t to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// mondayOffset returns the number of days since the most recent Monday,
// with Monday itself mapping to 0.
func mondayOffset(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
