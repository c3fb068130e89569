package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

func testSession(token, username string) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		Token:      token,
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
}

func TestSessionRepository_CreateFindDelete(t *testing.T) {
	repo := newTestStore(t).Sessions()
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("tok-1", "alice")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s, err := repo.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if s.Username != "alice" || s.Token != "tok-1" {
		t.Fatalf("roundtrip lost fields: %+v", s)
	}

	if err := repo.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Find(ctx, "tok-1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}

	// Deleting an absent token is not an error.
	if err := repo.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete of absent token failed: %v", err)
	}
}

func TestSessionRepository_CreateCollision(t *testing.T) {
	repo := newTestStore(t).Sessions()
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("tok-1", "alice")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, testSession("tok-1", "bob")); err != domain.ErrTokenCollision {
		t.Fatalf("expected ErrTokenCollision, got %v", err)
	}

	// The original binding is untouched.
	s, err := repo.Find(ctx, "tok-1")
	if err != nil || s.Username != "alice" {
		t.Fatalf("collision overwrote session: %+v err=%v", s, err)
	}
}

func TestSessionRepository_Update(t *testing.T) {
	repo := newTestStore(t).Sessions()
	ctx := context.Background()

	session := testSession("tok-1", "alice")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	session.LastActive = session.LastActive.Add(5 * time.Minute)
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	s, err := repo.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !s.LastActive.Equal(session.LastActive) {
		t.Fatalf("last-active not persisted: %v", s.LastActive)
	}

	if err := repo.Update(ctx, testSession("ghost", "bob")); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepository_ConcurrentCreates(t *testing.T) {
	repo := newTestStore(t).Sessions()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := "tok-" + string(rune('a'+i))
			if err := repo.Create(ctx, testSession(token, "alice")); err != nil {
				t.Errorf("Create %s: %v", token, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		token := "tok-" + string(rune('a'+i))
		if _, err := repo.Find(ctx, token); err != nil {
			t.Fatalf("lost session %s: %v", token, err)
		}
	}
}
