// Package fetch assembles complete completion histories from the
// paginated Codewars API, one atomic History per user.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/evmartin/katatrack/internal/codewars"
	"github.com/evmartin/katatrack/internal/rate"
	"github.com/evmartin/katatrack/internal/roster"
)

const defaultWorkers = 4

// UserHistory is one tracked member with their assembled history.
type UserHistory struct {
	Member  roster.Member
	History codewars.History
}

// DisplayName prefers the roster full name and falls back to the
// profile's name, then to the raw username.
func (u UserHistory) DisplayName() string {
	if u.Member.FullName != "" {
		return u.Member.FullName
	}
	if u.History.Profile.Name != "" {
		return u.History.Profile.Name
	}
	return string(u.Member.Username)
}

// Failure records a member excluded from the run. Reports must show
// these separately from members with zero completions.
type Failure struct {
	Member roster.Member
	Err    error
}

// Result holds the outcome of a batch fetch. Users keeps the input
// order of the members that succeeded.
type Result struct {
	Users    []UserHistory
	Excluded []Failure
}

// Service fetches member histories with bounded concurrency. Pages for
// a single user are fetched sequentially in page order; one user's
// failure never aborts the others.
type Service struct {
	Client  codewars.Client
	Limiter rate.Limiter
	Logger  *slog.Logger
	Workers int
}

// NewService constructs a Service with sane defaults.
func NewService(client codewars.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{
		Client:  client,
		Limiter: limiter,
		Logger:  logger,
		Workers: defaultWorkers,
	}
}

// Run fetches every member's history. It only fails as a whole when the
// context is canceled; individual fetch failures land in
// Result.Excluded.
func (s *Service) Run(ctx context.Context, members []roster.Member) (Result, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(members) {
		workers = len(members)
	}

	type outcome struct {
		history codewars.History
		err     error
	}
	outcomes := make([]outcome, len(members))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				history, err := s.fetchHistory(ctx, members[idx])
				outcomes[idx] = outcome{history: history, err: err}
			}
		}()
	}

	for idx := range members {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("fetch canceled: %w", err)
	}

	result := Result{}
	for idx, member := range members {
		out := outcomes[idx]
		if out.err != nil {
			s.Logger.Warn("excluding user", "username", member.Username, "error", out.err)
			result.Excluded = append(result.Excluded, Failure{Member: member, Err: out.err})
			continue
		}
		if out.history.Skipped > 0 {
			s.Logger.Warn("skipped malformed records",
				"username", member.Username, "skipped", out.history.Skipped)
		}
		result.Users = append(result.Users, UserHistory{Member: member, History: out.history})
	}
	return result, nil
}

// fetchHistory assembles one member's History: profile, then page 0 to
// learn the page count, then the remaining pages in order. Any failure
// discards the partial assembly.
func (s *Service) fetchHistory(ctx context.Context, member roster.Member) (codewars.History, error) {
	if err := s.wait(ctx); err != nil {
		return codewars.History{}, err
	}
	profile, err := s.Client.FetchProfile(ctx, member.Username)
	if err != nil {
		return codewars.History{}, fmt.Errorf("profile: %w", err)
	}

	if err := s.wait(ctx); err != nil {
		return codewars.History{}, err
	}
	first, err := s.Client.FetchCompletedPage(ctx, member.Username, 0)
	if err != nil {
		return codewars.History{}, fmt.Errorf("page 0: %w", err)
	}

	records := append([]codewars.CompletionRecord(nil), first.Records...)
	skipped := first.Skipped
	for page := 1; page < first.TotalPages; page++ {
		if waitErr := s.wait(ctx); waitErr != nil {
			return codewars.History{}, waitErr
		}
		next, pageErr := s.Client.FetchCompletedPage(ctx, member.Username, page)
		if pageErr != nil {
			return codewars.History{}, fmt.Errorf("page %d: %w", page, pageErr)
		}
		records = append(records, next.Records...)
		skipped += next.Skipped
	}

	return codewars.History{Profile: profile, Records: records, Skipped: skipped}, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}
