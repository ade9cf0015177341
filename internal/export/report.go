// Package export turns fetched histories into ranked report rows and
// writes the CSV and terminal outputs.
package export

import (
	"fmt"
	"time"

	"github.com/evmartin/katatrack/internal/fetch"
	"github.com/evmartin/katatrack/internal/roster"
	"github.com/evmartin/katatrack/internal/stats"
)

// Kind selects the report variant. It is decided once at configuration
// time, never inferred from the shape of the data.
type Kind int

const (
	// KindBasic ranks users by a completed-count metric.
	KindBasic Kind = iota
	// KindCatalog ranks users by catalog matches with per-kata columns.
	KindCatalog
)

// Row is one user's metric before ranking. Cells carries the per-kata
// 0/1 vector for catalog reports and is nil otherwise.
type Row struct {
	User  fetch.UserHistory
	Count int
	Cells []int
}

// BuildSinceRows computes the completed-count metric for each user:
// lifetime total when since is nil, otherwise completions on or after
// the date.
func BuildSinceRows(users []fetch.UserHistory, since *time.Time) []Row {
	rows := make([]Row, len(users))
	for i, user := range users {
		rows[i] = Row{User: user, Count: stats.CompletedSince(user.History, since)}
	}
	return rows
}

// BuildWindowRows computes a daily/weekly/monthly count per user.
func BuildWindowRows(users []fetch.UserHistory, kind stats.WindowKind, now time.Time) ([]Row, error) {
	rows := make([]Row, len(users))
	for i, user := range users {
		count, err := stats.ByWindow(user.History.Records, kind, now)
		if err != nil {
			return nil, fmt.Errorf("window count for %s: %w", user.Member.Username, err)
		}
		rows[i] = Row{User: user, Count: count}
	}
	return rows, nil
}

// BuildCatalogRows computes the catalog match vector and its sum per
// user.
func BuildCatalogRows(users []fetch.UserHistory, catalog []roster.CatalogEntry, since *time.Time) []Row {
	ids := roster.IDs(catalog)
	rows := make([]Row, len(users))
	for i, user := range users {
		vector := stats.MatchVector(user.History.Records, ids, since)
		total := 0
		for _, v := range vector {
			total += v
		}
		rows[i] = Row{User: user, Count: total, Cells: vector}
	}
	return rows
}

// RankRows orders rows by count descending, stable, with 1-based ids.
func RankRows(rows []Row) []stats.Ranked[Row] {
	return stats.Rank(rows, func(r Row) int { return r.Count })
}
