// internal/runtime/httpapi.go — adapts the Codewars REST API to our small interface
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	cw "github.com/evmartin/katatrack/internal/codewars"
)

// APIClient talks to the Codewars REST API with per-request timeouts
// and bounded exponential-backoff retries for transient failures.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries uint64
}

// NewAPIClient constructs a production client. timeout bounds each
// request; maxRetries bounds retry attempts beyond the first try.
func NewAPIClient(baseURL string, timeout time.Duration, maxRetries uint64, logger *slog.Logger) *APIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: maxRetries,
	}
}

type profilePayload struct {
	Name                string   `json:"name"`
	Honor               int      `json:"honor"`
	Clan                string   `json:"clan"`
	LeaderboardPosition int      `json:"leaderboardPosition"`
	Skills              []string `json:"skills"`
	CodeChallenges      struct {
		TotalCompleted int `json:"totalCompleted"`
	} `json:"codeChallenges"`
}

type completedPayload struct {
	TotalPages int `json:"totalPages"`
	Data       []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		CompletedAt string `json:"completedAt"`
	} `json:"data"`
}

// FetchProfile implements codewars.Client. A 404 maps to
// codewars.ErrUserNotFound.
func (c *APIClient) FetchProfile(ctx context.Context, username cw.Username) (cw.ProfileSummary, error) {
	var payload profilePayload
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(string(username)))
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return cw.ProfileSummary{}, fmt.Errorf("fetch profile %s: %w", username, err)
	}
	return cw.ProfileSummary{
		Name:                payload.Name,
		Honor:               payload.Honor,
		Clan:                payload.Clan,
		LeaderboardPosition: payload.LeaderboardPosition,
		Skills:              payload.Skills,
		TotalCompleted:      payload.CodeChallenges.TotalCompleted,
	}, nil
}

// FetchCompletedPage implements codewars.Client. Records whose
// completedAt timestamp does not parse are dropped and counted in
// Skipped rather than failing the page.
func (c *APIClient) FetchCompletedPage(ctx context.Context, username cw.Username, page int) (cw.CompletionPage, error) {
	var payload completedPayload
	endpoint := fmt.Sprintf(
		"%s/users/%s/code-challenges/completed?page=%d",
		c.baseURL, url.PathEscape(string(username)), page,
	)
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return cw.CompletionPage{}, fmt.Errorf("fetch completed page %d for %s: %w", page, username, err)
	}

	result := cw.CompletionPage{
		TotalPages: payload.TotalPages,
		Records:    make([]cw.CompletionRecord, 0, len(payload.Data)),
	}
	for _, item := range payload.Data {
		completedAt, err := time.Parse(time.RFC3339, item.CompletedAt)
		if err != nil {
			result.Skipped++
			c.logger.Warn("skipping record with malformed timestamp",
				"username", username, "kata", item.ID, "completedAt", item.CompletedAt)
			continue
		}
		result.Records = append(result.Records, cw.CompletionRecord{
			KataID:      cw.KataID(item.ID),
			Name:        item.Name,
			CompletedAt: completedAt,
		})
	}
	return result, nil
}

func (c *APIClient) getJSON(ctx context.Context, endpoint string, v any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// timeouts and connection resets are retryable
			return fmt.Errorf("do request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			if decodeErr := json.NewDecoder(resp.Body).Decode(v); decodeErr != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", decodeErr))
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(cw.ErrUserNotFound)
		case resp.StatusCode >= http.StatusInternalServerError,
			resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("server status %s", resp.Status)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return err
	}
	return nil
}

var _ cw.Client = (*APIClient)(nil)
