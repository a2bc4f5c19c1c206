package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/session"
)

func exerciseRepository(t *testing.T, repo SessionRepository) {
	t.Helper()
	ctx := context.Background()

	state := session.Snapshot{User: &dtos.User{ID: "u1", Email: "u1@example.com"}, Token: "tok"}
	created, err := repo.Create(ctx, "club.example.org", state)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("Expected a session id")
	}

	got, err := repo.Get(ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State.User == nil || got.State.User.ID != "u1" || got.Host != "club.example.org" {
		t.Errorf("Unexpected session %+v", got)
	}

	got.State.User = nil
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	again, _ := repo.Get(ctx, created.SessionID)
	if again.State.User != nil {
		t.Error("Expected saved state to be returned")
	}
	if !again.ExpiresAt.Equal(created.ExpiresAt) {
		t.Errorf("Expected a fixed expiry, got %v then %v", created.ExpiresAt, again.ExpiresAt)
	}

	updated, err := repo.Update(ctx, created.SessionID, func(d *SessionData) error {
		d.State.Token = "tok-2"
		return nil
	})
	if err != nil || updated.State.Token != "tok-2" {
		t.Fatalf("Update failed: %+v, %v", updated, err)
	}
	boom := errors.New("boom")
	if _, err := repo.Update(ctx, created.SessionID, func(d *SessionData) error {
		d.State.Token = "lost"
		return boom
	}); !errors.Is(err, boom) {
		t.Errorf("Expected fn error back, got %v", err)
	}
	again, _ = repo.Get(ctx, created.SessionID)
	if again.State.Token != "tok-2" {
		t.Errorf("Expected a failed update not to be saved, got %q", again.State.Token)
	}
	if n, err := repo.Count(ctx); err != nil || n < 1 {
		t.Errorf("Count = %d, %v", n, err)
	}

	if err := repo.Delete(ctx, created.SessionID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, created.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, created.SessionID, func(*SessionData) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected Update of a deleted session to fail, got %v", err)
	}
}

// exerciseConcurrentUpdates checks that no acknowledged update of one session
// is overwritten by another writer
func exerciseConcurrentUpdates(t *testing.T, repo SessionRepository) {
	t.Helper()
	ctx := context.Background()
	created, err := repo.Create(ctx, "club.example.org", session.Snapshot{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer repo.Delete(ctx, created.SessionID)

	const writers = 8
	acked := make([]bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, created.SessionID, func(d *SessionData) error {
				d.State.Token += fmt.Sprintf("[%d]", i)
				return nil
			})
			switch {
			case err == nil:
				acked[i] = true
			case !errors.Is(err, ErrSessionConflict):
				t.Errorf("Update %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	final, err := repo.Get(ctx, created.SessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for i, ok := range acked {
		if ok && !strings.Contains(final.State.Token, fmt.Sprintf("[%d]", i)) {
			t.Errorf("Update %d was acknowledged but lost, token %q", i, final.State.Token)
		}
	}
}

func TestMemorySessionService_ConcurrentUpdates(t *testing.T) {
	repo := NewMemorySessionService(time.Hour)
	exerciseConcurrentUpdates(t, repo)
}

func TestMemorySessionService_ExpiryIsFixed(t *testing.T) {
	repo := NewMemorySessionService(50 * time.Millisecond)
	ctx := context.Background()
	created, _ := repo.Create(ctx, "koomy.app", session.Snapshot{})

	time.Sleep(30 * time.Millisecond)
	if _, err := repo.Update(ctx, created.SessionID, func(*SessionData) error { return nil }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("Expected 1 live session, got %d", n)
	}

	// writes do not extend the session past the cookie lifetime
	time.Sleep(40 * time.Millisecond)
	if _, err := repo.Get(ctx, created.SessionID); err == nil {
		t.Error("Expected the session to have expired")
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Expected expired sessions not to be counted, got %d", n)
	}
}

func TestMemorySessionService(t *testing.T) {
	repo := NewMemorySessionService(time.Hour)
	exerciseRepository(t, repo)
	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Errorf("Expected no sessions left, got %d", n)
	}
}

func TestRedisSessionService(t *testing.T) {
	addr := os.Getenv("KOOMY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KOOMY_TEST_REDIS_ADDR not set")
	}
	client := NewRedisClient(addr, "", 0)
	defer client.Close()
	repo := NewSessionService(client, time.Hour)
	exerciseRepository(t, repo)
	exerciseConcurrentUpdates(t, repo)
}
