package codewars

import (
	"context"
	"errors"
)

// ErrUserNotFound marks a username the platform does not know. Batch
// callers skip the user and keep going.
var ErrUserNotFound = errors.New("user not found")

// Client is the narrow Codewars API surface katatrack requires.
type Client interface {
	FetchProfile(ctx context.Context, username Username) (ProfileSummary, error)
	FetchCompletedPage(ctx context.Context, username Username, page int) (CompletionPage, error)
}
