package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/evmartin/katatrack/internal/codewars"
	"github.com/evmartin/katatrack/internal/roster"
)

type fakeClient struct {
	mu       sync.Mutex
	profiles map[codewars.Username]codewars.ProfileSummary
	pages    map[codewars.Username][]codewars.CompletionPage
	pageErrs map[string]error // "username/page" -> error
	calls    []string
}

func (f *fakeClient) FetchProfile(ctx context.Context, username codewars.Username) (codewars.ProfileSummary, error) {
	_ = ctx
	f.record(fmt.Sprintf("profile/%s", username))
	profile, ok := f.profiles[username]
	if !ok {
		return codewars.ProfileSummary{}, codewars.ErrUserNotFound
	}
	return profile, nil
}

func (f *fakeClient) FetchCompletedPage(ctx context.Context, username codewars.Username, page int) (codewars.CompletionPage, error) {
	_ = ctx
	f.record(fmt.Sprintf("page/%s/%d", username, page))
	if err := f.pageErrs[fmt.Sprintf("%s/%d", username, page)]; err != nil {
		return codewars.CompletionPage{}, err
	}
	pages := f.pages[username]
	if page >= len(pages) {
		return codewars.CompletionPage{}, fmt.Errorf("no page %d for %s", page, username)
	}
	return pages[page], nil
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func record(id string, day int) codewars.CompletionRecord {
	return codewars.CompletionRecord{
		KataID:      codewars.KataID(id),
		Name:        id,
		CompletedAt: time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC),
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAssemblesAllPagesInOrder(t *testing.T) {
	client := &fakeClient{
		profiles: map[codewars.Username]codewars.ProfileSummary{
			"alice": {Name: "Alice", TotalCompleted: 5},
		},
		pages: map[codewars.Username][]codewars.CompletionPage{
			"alice": {
				{TotalPages: 3, Records: []codewars.CompletionRecord{record("p0-a", 1), record("p0-b", 2)}},
				{TotalPages: 3, Records: []codewars.CompletionRecord{record("p1-a", 3)}, Skipped: 1},
				{TotalPages: 3, Records: []codewars.CompletionRecord{record("p2-a", 4)}},
			},
		},
	}

	svc := NewService(client, nil, slogDiscard())
	result, err := svc.Run(context.Background(), []roster.Member{{Username: "alice"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Users) != 1 || len(result.Excluded) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	history := result.Users[0].History
	if history.Profile.TotalCompleted != 5 {
		t.Fatalf("profile not attached: %+v", history.Profile)
	}
	wantOrder := []string{"p0-a", "p0-b", "p1-a", "p2-a"}
	if len(history.Records) != len(wantOrder) {
		t.Fatalf("record count: got %d want %d", len(history.Records), len(wantOrder))
	}
	for i, want := range wantOrder {
		if string(history.Records[i].KataID) != want {
			t.Fatalf("record %d: got %s want %s", i, history.Records[i].KataID, want)
		}
	}
	if history.Skipped != 1 {
		t.Fatalf("skipped count: got %d want 1", history.Skipped)
	}
}

func TestRunExcludesUnknownUserAndKeepsRest(t *testing.T) {
	client := &fakeClient{
		profiles: map[codewars.Username]codewars.ProfileSummary{
			"bob": {Name: "Bob"},
		},
		pages: map[codewars.Username][]codewars.CompletionPage{
			"bob": {{TotalPages: 1, Records: []codewars.CompletionRecord{record("k", 1)}}},
		},
	}

	svc := NewService(client, nil, slogDiscard())
	members := []roster.Member{{Username: "ghost"}, {Username: "bob"}}
	result, err := svc.Run(context.Background(), members)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Member.Username != "bob" {
		t.Fatalf("expected bob to survive: %+v", result.Users)
	}
	if len(result.Excluded) != 1 || result.Excluded[0].Member.Username != "ghost" {
		t.Fatalf("expected ghost excluded: %+v", result.Excluded)
	}
	if !errors.Is(result.Excluded[0].Err, codewars.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", result.Excluded[0].Err)
	}
}

func TestRunPageFailureDiscardsPartialHistory(t *testing.T) {
	client := &fakeClient{
		profiles: map[codewars.Username]codewars.ProfileSummary{
			"alice": {Name: "Alice"},
		},
		pages: map[codewars.Username][]codewars.CompletionPage{
			"alice": {
				{TotalPages: 2, Records: []codewars.CompletionRecord{record("p0", 1)}},
			},
		},
		pageErrs: map[string]error{"alice/1": errors.New("connection reset")},
	}

	svc := NewService(client, nil, slogDiscard())
	result, err := svc.Run(context.Background(), []roster.Member{{Username: "alice"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Users) != 0 {
		t.Fatalf("partial history must not be exposed: %+v", result.Users)
	}
	if len(result.Excluded) != 1 {
		t.Fatalf("expected one exclusion: %+v", result.Excluded)
	}
}

func TestRunPreservesInputOrderAcrossWorkers(t *testing.T) {
	client := &fakeClient{
		profiles: map[codewars.Username]codewars.ProfileSummary{},
		pages:    map[codewars.Username][]codewars.CompletionPage{},
	}
	var members []roster.Member
	for i := 0; i < 8; i++ {
		name := codewars.Username(fmt.Sprintf("user-%d", i))
		client.profiles[name] = codewars.ProfileSummary{Name: string(name)}
		client.pages[name] = []codewars.CompletionPage{{TotalPages: 1}}
		members = append(members, roster.Member{Username: name})
	}

	svc := NewService(client, nil, slogDiscard())
	svc.Workers = 4
	result, err := svc.Run(context.Background(), members)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Users) != len(members) {
		t.Fatalf("user count: got %d want %d", len(result.Users), len(members))
	}
	for i, user := range result.Users {
		if user.Member.Username != members[i].Username {
			t.Fatalf("order broken at %d: got %s want %s", i, user.Member.Username, members[i].Username)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{
		profiles: map[codewars.Username]codewars.ProfileSummary{"alice": {}},
		pages:    map[codewars.Username][]codewars.CompletionPage{"alice": {{TotalPages: 1}}},
	}
	svc := NewService(client, nil, slogDiscard())
	if _, err := svc.Run(ctx, []roster.Member{{Username: "alice"}}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user UserHistory
		want string
	}{
		{
			name: "roster-name-wins",
			user: UserHistory{
				Member:  roster.Member{Username: "alice", FullName: "Alice A."},
				History: codewars.History{Profile: codewars.ProfileSummary{Name: "Profile Alice"}},
			},
			want: "Alice A.",
		},
		{
			name: "profile-fallback",
			user: UserHistory{
				Member:  roster.Member{Username: "alice"},
				History: codewars.History{Profile: codewars.ProfileSummary{Name: "Profile Alice"}},
			},
			want: "Profile Alice",
		},
		{
			name: "username-fallback",
			user: UserHistory{Member: roster.Member{Username: "alice"}},
			want: "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Fatalf("display name: got %q want %q", got, tt.want)
			}
		})
	}
}
