package history

import (
	"context"
	"testing"
	"time"
)

// createTestStore creates an in-memory SQLite store for testing
func createTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	id, err := store.Start(ctx, "/media/movie.mp4")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := store.Checkpoint(ctx, id, 90*time.Second, 30*time.Minute); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	pos, ok, err := store.ResumePoint(ctx, "/media/movie.mp4")
	if err != nil {
		t.Fatalf("ResumePoint: %v", err)
	}
	if !ok {
		t.Fatal("no resume point for checkpointed session")
	}
	if pos != 90*time.Second {
		t.Errorf("resume point = %v, want 1m30s", pos)
	}

	if err := store.Finish(ctx, id, true); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	_, ok, err = store.ResumePoint(ctx, "/media/movie.mp4")
	if err != nil {
		t.Fatalf("ResumePoint after finish: %v", err)
	}
	if ok {
		t.Error("completed session still offers a resume point")
	}
}

func TestResumePointNoHistory(t *testing.T) {
	store := createTestStore(t)

	_, ok, err := store.ResumePoint(context.Background(), "/media/never-played.mp4")
	if err != nil {
		t.Fatalf("ResumePoint: %v", err)
	}
	if ok {
		t.Error("resume point reported for unknown file")
	}
}

func TestResumePointIgnoresZeroPosition(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if _, err := store.Start(ctx, "/media/movie.mp4"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, ok, err := store.ResumePoint(ctx, "/media/movie.mp4")
	if err != nil {
		t.Fatalf("ResumePoint: %v", err)
	}
	if ok {
		t.Error("resume point reported for session that never progressed")
	}
}

func TestCheckpointUnknownSession(t *testing.T) {
	store := createTestStore(t)

	err := store.Checkpoint(context.Background(), 42, time.Second, time.Minute)
	if err == nil {
		t.Error("expected error for unknown session id")
	}
}

func TestRecent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	idA, err := store.Start(ctx, "/media/a.mp4")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := store.Start(ctx, "/media/b.mp4"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Checkpoint(ctx, idA, 10*time.Second, time.Minute); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	sessions, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	paths := map[string]bool{}
	for _, s := range sessions {
		paths[s.Path] = true
		if s.EndedAt.IsZero() == false {
			t.Errorf("live session %s has an end time", s.Path)
		}
	}
	if !paths["/media/a.mp4"] || !paths["/media/b.mp4"] {
		t.Errorf("unexpected session paths: %v", paths)
	}

	t.Run("limit", func(t *testing.T) {
		sessions, err := store.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("sessions = %d, want 1", len(sessions))
		}
	})
}

func TestClear(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"/media/a.mp4", "/media/b.mp4"} {
		if _, err := store.Start(ctx, path); err != nil {
			t.Fatalf("Start: %v", err)
		}
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	sessions, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions after clear = %d, want 0", len(sessions))
	}
}
