package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/evmartin/katatrack/internal/codewars"
)

func rec(id string, at time.Time) codewars.CompletionRecord {
	return codewars.CompletionRecord{KataID: codewars.KataID(id), Name: id, CompletedAt: at}
}

func TestDaily(t *testing.T) {
	now := time.Date(2025, time.January, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		records []codewars.CompletionRecord
		want    int
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name: "one-today",
			records: []codewars.CompletionRecord{
				rec("a", time.Date(2025, time.January, 10, 6, 9, 32, 0, time.UTC)),
			},
			want: 1,
		},
		{
			name: "multiple-same-day-others-ignored",
			records: []codewars.CompletionRecord{
				rec("a", time.Date(2025, time.January, 10, 0, 0, 1, 0, time.UTC)),
				rec("b", time.Date(2025, time.January, 10, 23, 59, 59, 0, time.UTC)),
				rec("c", time.Date(2025, time.January, 9, 23, 59, 59, 0, time.UTC)),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Daily(tt.records, now); got != tt.want {
				t.Fatalf("daily count: got %d want %d", got, tt.want)
			}
		})
	}
}

func TestWeeklyMondayWindowIsOneDay(t *testing.T) {
	monday := time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC) // Monday
	records := []codewars.CompletionRecord{
		rec("today", time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)),
		rec("sunday", time.Date(2025, time.January, 5, 23, 0, 0, 0, time.UTC)),
	}
	if got := Weekly(records, monday); got != 1 {
		t.Fatalf("weekly on Monday: got %d want 1", got)
	}
}

func TestWeeklySundayCoversFullWeek(t *testing.T) {
	sunday := time.Date(2025, time.January, 12, 20, 0, 0, 0, time.UTC) // Sunday
	records := []codewars.CompletionRecord{
		rec("monday", time.Date(2025, time.January, 6, 0, 30, 0, 0, time.UTC)),
		rec("thursday", time.Date(2025, time.January, 9, 10, 0, 0, 0, time.UTC)),
		rec("sunday", time.Date(2025, time.January, 12, 19, 0, 0, 0, time.UTC)),
		rec("prev-sunday", time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)),
	}
	if got := Weekly(records, sunday); got != 3 {
		t.Fatalf("weekly on Sunday: got %d want 3", got)
	}
}

func TestMonthlyBoundary(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	exactly := now.Add(-30 * 24 * time.Hour)
	records := []codewars.CompletionRecord{
		rec("on-boundary", exactly),
		rec("one-second-past", exactly.Add(-time.Second)),
	}
	if got := Monthly(records, now); got != 1 {
		t.Fatalf("monthly boundary: got %d want 1", got)
	}
}

func TestMonthlyCountsNearbyFutureRecords(t *testing.T) {
	// The comparison is an absolute difference, so a record dated after
	// now counts as long as it is within the 30-day span.
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	records := []codewars.CompletionRecord{
		rec("future-near", now.Add(15*24*time.Hour)),
		rec("future-far", now.Add(31*24*time.Hour)),
	}
	if got := Monthly(records, now); got != 1 {
		t.Fatalf("monthly with future records: got %d want 1", got)
	}
}

func TestCompletedSince(t *testing.T) {
	history := codewars.History{
		Profile: codewars.ProfileSummary{TotalCompleted: 250},
		Records: []codewars.CompletionRecord{
			rec("a", time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)),
			rec("b", time.Date(2024, time.August, 2, 10, 0, 0, 0, time.UTC)),
			rec("c", time.Date(2024, time.August, 2, 11, 0, 0, 0, time.UTC)),
		},
	}

	if got := CompletedSince(history, nil); got != 250 {
		t.Fatalf("nil cutoff should return profile total, got %d", got)
	}

	cutoff := time.Date(2024, time.August, 2, 0, 0, 0, 0, time.UTC)
	if got := CompletedSince(history, &cutoff); got != 2 {
		t.Fatalf("cutoff count: got %d want 2", got)
	}

	future := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := CompletedSince(history, &future); got != 0 {
		t.Fatalf("future cutoff: got %d want 0", got)
	}
}

func TestByWindowDispatch(t *testing.T) {
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	records := []codewars.CompletionRecord{
		rec("a", time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)),
	}

	for _, kind := range []WindowKind{WindowDaily, WindowWeekly, WindowMonthly} {
		got, err := ByWindow(records, kind, now)
		if err != nil {
			t.Fatalf("dispatch %s failed: %v", kind, err)
		}
		if got != 1 {
			t.Fatalf("dispatch %s: got %d want 1", kind, got)
		}
	}

	if _, err := ByWindow(records, WindowKind("yearly"), now); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestParseWindowKind(t *testing.T) {
	if _, err := ParseWindowKind("weekly"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseWindowKind("hourly"); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}
