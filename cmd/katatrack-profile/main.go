package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evmartin/katatrack/internal/codewars"
	"github.com/evmartin/katatrack/internal/export"
	"github.com/evmartin/katatrack/internal/fetch"
	"github.com/evmartin/katatrack/internal/rate"
	"github.com/evmartin/katatrack/internal/roster"
	"github.com/evmartin/katatrack/internal/runtime"
)

type profileConfig struct {
	username string
	fullName string
	baseURL  string
	rps      int
	timeout  time.Duration
	retries  uint64
}

func main() {
	cfg := parseProfileFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("katatrack-profile failed", "error", err)
		os.Exit(1)
	}
}

func parseProfileFlags() profileConfig {
	username := flag.String("user", "", "Codewars username (required)")
	fullName := flag.String("fullname", "", "display name override")
	baseURL := flag.String("base-url", "", "Codewars API root (default "+runtime.DefaultBaseURL+")")
	rps := flag.Int("rps", 4, "max requests per second")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	retries := flag.Uint64("retries", 3, "retry attempts for transient failures")
	flag.Parse()

	return profileConfig{
		username: *username,
		fullName: *fullName,
		baseURL:  *baseURL,
		rps:      *rps,
		timeout:  *timeout,
		retries:  *retries,
	}
}

func run(cfg profileConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.username == "" {
		return fmt.Errorf("-user is required")
	}

	logger := runtime.DefaultLogger()
	runtime.LoadEnv(logger)

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
	svc.Workers = 1

	member := roster.Member{Username: codewars.Username(cfg.username), FullName: cfg.fullName}
	result, err := svc.Run(ctx, []roster.Member{member})
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if len(result.Excluded) > 0 {
		return fmt.Errorf("fetch %s: %w", cfg.username, result.Excluded[0].Err)
	}

	if printErr := export.PrintProfile(result.Users[0], time.Now(), os.Stdout); printErr != nil {
		return fmt.Errorf("print profile: %w", printErr)
	}
	return nil
}
