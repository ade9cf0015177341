package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/evmartin/katatrack/internal/export"
	"github.com/evmartin/katatrack/internal/fetch"
	"github.com/evmartin/katatrack/internal/rate"
	"github.com/evmartin/katatrack/internal/roster"
	"github.com/evmartin/katatrack/internal/runtime"
	"github.com/evmartin/katatrack/internal/stats"
)

type reportConfig struct {
	usersPath   string
	catalogPath string
	since       string
	window      string
	outPath     string
	baseURL     string
	rps         int
	timeout     time.Duration
	retries     uint64
	concurrency int
}

func main() {
	cfg := parseReportFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("katatrack-report failed", "error", err)
		os.Exit(1)
	}
}

func parseReportFlags() reportConfig {
	usersPath := flag.String("users", "input/users.csv", "CSV of tracked users (username,fullname)")
	catalogPath := flag.String("katas", "", "optional kata catalog CSV (name,kata_id); enables the detailed report")
	since := flag.String("since", "", "count completions on or after this date (YYYY-MM-DD)")
	window := flag.String("window", "", "count completions in a window: daily, weekly, or monthly")
	outPath := flag.String("out", "output/codewars_katas.csv", "output CSV path (relative)")
	baseURL := flag.String("base-url", "", "Codewars API root (default "+runtime.DefaultBaseURL+")")
	rps := flag.Int("rps", 4, "max requests per second")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	retries := flag.Uint64("retries", 3, "retry attempts for transient failures")
	concurrency := flag.Int("concurrency", 4, "users fetched in parallel")
	flag.Parse()

	return reportConfig{
		usersPath:   *usersPath,
		catalogPath: *catalogPath,
		since:       *since,
		window:      *window,
		outPath:     *outPath,
		baseURL:     *baseURL,
		rps:         *rps,
		timeout:     *timeout,
		retries:     *retries,
		concurrency: *concurrency,
	}
}

func run(cfg reportConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger().With("run", uuid.NewString()[:8])
	runtime.LoadEnv(logger)

	if cfg.window != "" && cfg.since != "" {
		return fmt.Errorf("-window and -since are mutually exclusive")
	}

	var since *time.Time
	if cfg.since != "" {
		parsed, err := time.Parse("2006-01-02", cfg.since)
		if err != nil {
			return fmt.Errorf("parse -since: %w", err)
		}
		since = &parsed
	}

	var windowKind stats.WindowKind
	if cfg.window != "" {
		kind, err := stats.ParseWindowKind(cfg.window)
		if err != nil {
			return fmt.Errorf("parse -window: %w", err)
		}
		windowKind = kind
	}

	members, err := roster.LoadMembers(cfg.usersPath)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	// The report variant is fixed here, before any fetching happens.
	kind := export.KindBasic
	var catalog []roster.CatalogEntry
	if cfg.catalogPath != "" {
		if cfg.window != "" {
			return fmt.Errorf("-katas and -window are mutually exclusive")
		}
		catalog, err = roster.LoadCatalog(cfg.catalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		kind = export.KindCatalog
	}

	client := runtime.NewAPIClient(runtime.BaseURL(cfg.baseURL), cfg.timeout, cfg.retries, logger)

	var (
		limiter rate.Limiter
		bucket  *rate.TokenBucket
	)
	if cfg.rps > 0 {
		bucket = rate.NewTokenBucket(cfg.rps)
		limiter = bucket
		defer bucket.Stop()
	}

	svc := fetch.NewService(client, limiter, logger)
	svc.Workers = cfg.concurrency

	result, err := svc.Run(ctx, members)
	if err != nil {
		return fmt.Errorf("fetch histories: %w", err)
	}

	now := time.Now()
	if writeErr := writeReport(cfg, kind, result, catalog, since, windowKind, now); writeErr != nil {
		return writeErr
	}
	logger.Info("report written", "path", cfg.outPath,
		"users", len(result.Users), "excluded", len(result.Excluded))

	if printErr := export.PrintSummary(result, os.Stdout); printErr != nil {
		return fmt.Errorf("print summary: %w", printErr)
	}
	return nil
}

func writeReport(
	cfg reportConfig,
	kind export.Kind,
	result fetch.Result,
	catalog []roster.CatalogEntry,
	since *time.Time,
	windowKind stats.WindowKind,
	now time.Time,
) error {
	switch kind {
	case export.KindCatalog:
		ranked := export.RankRows(export.BuildCatalogRows(result.Users, catalog, since))
		return export.WriteFile(cfg.outPath, func(w io.Writer) error {
			return export.WriteCatalogCSV(w, ranked, catalog)
		})
	case export.KindBasic:
		var (
			rows   []export.Row
			header string
			err    error
		)
		if windowKind != "" {
			rows, err = export.BuildWindowRows(result.Users, windowKind, now)
			if err != nil {
				return fmt.Errorf("build window rows: %w", err)
			}
			header = windowHeader(windowKind)
		} else {
			rows = export.BuildSinceRows(result.Users, since)
			header = "Solved Katas"
		}
		ranked := export.RankRows(rows)
		return export.WriteFile(cfg.outPath, func(w io.Writer) error {
			return export.WriteBasicCSV(w, ranked, header)
		})
	default:
		return fmt.Errorf("unknown report kind %d", kind)
	}
}

func windowHeader(kind stats.WindowKind) string {
	switch kind {
	case stats.WindowDaily:
		return "Daily Completed"
	case stats.WindowWeekly:
		return "Weekly Completed"
	case stats.WindowMonthly:
		return "Monthly Completed"
	default:
		return "Completed Tasks"
	}
}
