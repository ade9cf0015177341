package stats

import "sort"

// Ranked pairs a row with its metric and its 1-based position after
// sorting. IDs are recomputed on every call and never persisted.
type Ranked[T any] struct {
	ID     int
	Row    T
	Metric int
}

// Rank orders rows by metric descending with a stable sort, so
// equal-metric rows keep their input order, then assigns sequential
// 1-based ids. The input slice is not modified.
func Rank[T any](rows []T, metric func(T) int) []Ranked[T] {
	ranked := make([]Ranked[T], len(rows))
	for i, row := range rows {
		ranked[i] = Ranked[T]{Row: row, Metric: metric(row)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metric > ranked[j].Metric
	})
	for i := range ranked {
		ranked[i].ID = i + 1
	}
	return ranked
}
