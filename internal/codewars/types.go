package codewars

import "time"

type Username string
type KataID string

// ProfileSummary is the subset of a user's profile the reports consume.
type ProfileSummary struct {
	Name                string
	Honor               int
	Clan                string
	LeaderboardPosition int
	Skills              []string
	// TotalCompleted comes from codeChallenges.totalCompleted and may
	// exceed the number of records pagination returns.
	TotalCompleted int
}

// CompletionRecord is one finished kata. A user can hold several records
// for the same kata id (one per language).
type CompletionRecord struct {
	KataID      KataID
	Name        string
	CompletedAt time.Time
}

// CompletionPage is one page of the completed-challenges listing.
// Skipped counts records dropped because their completedAt timestamp
// did not parse.
type CompletionPage struct {
	TotalPages int
	Records    []CompletionRecord
	Skipped    int
}

// History is a user's fully assembled completion record set. Records
// keep the order the API pages returned them in; no chronological
// ordering is guaranteed. A History is never mutated after assembly.
type History struct {
	Profile ProfileSummary
	Records []CompletionRecord
	Skipped int
}
