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
)

type histogramConfig struct {
	usersPath   string
	outPath     string
	baseURL     string
	rps         int
	timeout     time.Duration
	retries     uint64
	concurrency int
}

func main() {
	cfg := parseHistogramFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("katatrack-histogram failed", "error", err)
		os.Exit(1)
	}
}

func parseHistogramFlags() histogramConfig {
	usersPath := flag.String("users", "input/users.csv", "CSV of tracked users (username,fullname)")
	outPath := flag.String("out", "output/codewars_daily_histogram.csv", "output CSV path (relative)")
	baseURL := flag.String("base-url", "", "Codewars API root (default "+runtime.DefaultBaseURL+")")
	rps := flag.Int("rps", 4, "max requests per second")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	retries := flag.Uint64("retries", 3, "retry attempts for transient failures")
	concurrency := flag.Int("concurrency", 4, "users fetched in parallel")
	flag.Parse()

	return histogramConfig{
		usersPath:   *usersPath,
		outPath:     *outPath,
		baseURL:     *baseURL,
		rps:         *rps,
		timeout:     *timeout,
		retries:     *retries,
		concurrency: *concurrency,
	}
}

func run(cfg histogramConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger().With("run", uuid.NewString()[:8])
	runtime.LoadEnv(logger)

	members, err := roster.LoadMembers(cfg.usersPath)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
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

	writeErr := export.WriteFile(cfg.outPath, func(w io.Writer) error {
		return export.WriteHistogramCSV(w, result.Users)
	})
	if writeErr != nil {
		return writeErr
	}
	logger.Info("histogram written", "path", cfg.outPath,
		"users", len(result.Users), "excluded", len(result.Excluded))

	if printErr := export.PrintSummary(result, os.Stdout); printErr != nil {
		return fmt.Errorf("print summary: %w", printErr)
	}
	return nil
}
