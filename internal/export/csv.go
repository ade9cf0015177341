package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evmartin/katatrack/internal/fetch"
	"github.com/evmartin/katatrack/internal/roster"
	"github.com/evmartin/katatrack/internal/stats"
)

const kataBaseURL = "https://www.codewars.com/kata/"

// HyperlinkFormula renders the spreadsheet hyperlink cell for a catalog
// entry, linking its kata page under the display name.
func HyperlinkFormula(entry roster.CatalogEntry) string {
	return fmt.Sprintf("=HYPERLINK(%q; %q)", kataBaseURL+string(entry.KataID), entry.Name)
}

// WriteBasicCSV writes the ranked rows as id, Username, metric columns.
func WriteBasicCSV(w io.Writer, ranked []stats.Ranked[Row], metricHeader string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "Username", metricHeader}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range ranked {
		record := []string{
			strconv.Itoa(row.ID),
			row.Row.User.DisplayName(),
			strconv.Itoa(row.Metric),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCatalogCSV writes ranked rows with one hyperlink-headed column
// per catalog entry, cell values 0/1 from the match vector.
func WriteCatalogCSV(w io.Writer, ranked []stats.Ranked[Row], catalog []roster.CatalogEntry) error {
	writer := csv.NewWriter(w)
	header := []string{"id", "Username", "Solved Katas"}
	for _, entry := range catalog {
		header = append(header, HyperlinkFormula(entry))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range ranked {
		record := []string{
			strconv.Itoa(row.ID),
			row.Row.User.DisplayName(),
			strconv.Itoa(row.Metric),
		}
		for _, cell := range row.Row.Cells {
			record = append(record, strconv.Itoa(cell))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteHistogramCSV writes one row per calendar date (ascending) with a
// count column per user; days a user has no completions show 0.
func WriteHistogramCSV(w io.Writer, users []fetch.UserHistory) error {
	histograms := make([]map[string]int, len(users))
	header := []string{"Date"}
	for i, user := range users {
		histograms[i] = stats.DailyHistogram(user.History.Records)
		header = append(header, string(user.Member.Username))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, day := range stats.HistogramDays(histograms) {
		record := []string{day}
		for _, hist := range histograms {
			record = append(record, strconv.Itoa(hist[day]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write day %s: %w", day, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFile validates the output path, creates parent directories, and
// hands an open file to write. Paths must stay inside the working
// directory.
func WriteFile(path string, write func(io.Writer) error) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if strings.HasPrefix(clean, "..") {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	if mkErr := os.MkdirAll(filepath.Dir(abs), 0o750); mkErr != nil {
		return fmt.Errorf("create output directory: %w", mkErr)
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	if writeErr := write(f); writeErr != nil {
		return fmt.Errorf("write %s: %w", abs, writeErr)
	}
	return nil
}
