package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/evmartin/katatrack/internal/fetch"
	"github.com/evmartin/katatrack/internal/stats"
)

// PrintSummary writes a readable run summary. Excluded users are listed
// separately so a zero count is never mistaken for a fetch failure.
func PrintSummary(res fetch.Result, w io.Writer) error {
	var builder strings.Builder
	bold := color.New(color.Bold)
	warn := color.New(color.FgYellow)

	builder.WriteString(bold.Sprintf(
		"katatrack — %d users fetched, %d excluded\n", len(res.Users), len(res.Excluded)))

	for _, user := range res.Users {
		if user.History.Skipped == 0 {
			continue
		}
		builder.WriteString(warn.Sprintf(
			"  %s: %d records skipped (malformed timestamps)\n",
			user.Member.Username, user.History.Skipped))
	}
	if len(res.Excluded) > 0 {
		builder.WriteString("\nExcluded (fetch failed, not zero completions):\n")
		for _, failure := range res.Excluded {
			builder.WriteString(warn.Sprintf("  %s — %v\n", failure.Member.Username, failure.Err))
		}
	}

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// PrintProfile writes a single user's profile and window counts.
func PrintProfile(user fetch.UserHistory, now time.Time, w io.Writer) error {
	var builder strings.Builder
	bold := color.New(color.Bold)

	profile := user.History.Profile
	builder.WriteString(bold.Sprintf("%s (%s)\n", user.DisplayName(), user.Member.Username))
	fmt.Fprintf(&builder, "  honor:       %d\n", profile.Honor)
	if profile.Clan != "" {
		fmt.Fprintf(&builder, "  clan:        %s\n", profile.Clan)
	}
	fmt.Fprintf(&builder, "  leaderboard: #%d\n", profile.LeaderboardPosition)
	if len(profile.Skills) > 0 {
		fmt.Fprintf(&builder, "  skills:      %s\n", strings.Join(profile.Skills, ", "))
	}
	fmt.Fprintf(&builder, "  completed:   %d lifetime (%d fetched)\n",
		profile.TotalCompleted, len(user.History.Records))
	fmt.Fprintf(&builder, "  today:       %d\n", stats.Daily(user.History.Records, now))
	fmt.Fprintf(&builder, "  this week:   %d\n", stats.Weekly(user.History.Records, now))
	fmt.Fprintf(&builder, "  last 30d:    %d\n", stats.Monthly(user.History.Records, now))

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
