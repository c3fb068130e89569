package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamscape/identity-system/internal/core/domain"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

type stubDedup struct {
	seen map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, username, kind string, ts time.Time) (bool, error) {
	return d.seen[username+kind+ts.String()], nil
}

func (d *stubDedup) Mark(_ context.Context, username, kind string, ts time.Time) error {
	d.seen[username+kind+ts.String()] = true
	return nil
}

func seedUser(t *testing.T, repo *stubUserRepo, username string) {
	t.Helper()
	repo.users[username] = &domain.User{
		Username:    username,
		Email:       username + "@x.com",
		Preferences: domain.DefaultPreferences(),
	}
}

func TestActivityService_Process(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice")
	svc := NewActivityService(repo, nil, zerolog.Nop())

	err := svc.Process(context.Background(), ports.ActivityInput{
		Username:  "alice",
		Kind:      domain.StatStoriesCreated,
		Amount:    2,
		Timestamp: time.Now(),
		Source:    "story_service",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got := repo.users["alice"].Statistics.StoriesCreated; got != 2 {
		t.Fatalf("expected stories_created=2, got %d", got)
	}
}

func TestActivityService_Process_UnknownKind(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice")
	svc := NewActivityService(repo, nil, zerolog.Nop())

	err := svc.Process(context.Background(), ports.ActivityInput{
		Username: "alice",
		Kind:     "likes_received",
		Amount:   1,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestActivityService_Process_NonPositiveAmount(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice")
	svc := NewActivityService(repo, nil, zerolog.Nop())

	err := svc.Process(context.Background(), ports.ActivityInput{
		Username: "alice",
		Kind:     domain.StatTotalTimeSpent,
		Amount:   0,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestActivityService_Process_UnknownUser(t *testing.T) {
	svc := NewActivityService(newStubUserRepo(), nil, zerolog.Nop())

	err := svc.Process(context.Background(), ports.ActivityInput{
		Username: "ghost",
		Kind:     domain.StatStoriesCreated,
		Amount:   1,
	})
	if err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestActivityService_Process_DuplicateSkipped(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice")
	svc := NewActivityService(repo, newStubDedup(), zerolog.Nop())

	event := ports.ActivityInput{
		Username:  "alice",
		Kind:      domain.StatDiscussionRounds,
		Amount:    1,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("duplicate Process failed: %v", err)
	}
	if got := repo.users["alice"].Statistics.DiscussionRounds; got != 1 {
		t.Fatalf("duplicate was applied: discussion_rounds=%d", got)
	}
}
