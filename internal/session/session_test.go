package session

import (
	"context"
	"testing"
	"time"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

// --- Lifecycle ---

func TestBeginAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := search.Constraints{Category: "Sneakers", BudgetMax: intPtr(2000)}
	sess, err := s.Begin(ctx, "white sneakers under 2000", "weekend_brunch", catalog.AudienceMen, c)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a generated session id")
	}

	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after begin")
	}
	if got.Query != "white sneakers under 2000" {
		t.Errorf("query = %q", got.Query)
	}
	if got.Audience != catalog.AudienceMen {
		t.Errorf("audience = %q", got.Audience)
	}
	if got.Constraints.Category != "Sneakers" {
		t.Errorf("category = %q", got.Constraints.Category)
	}
	if got.Constraints.BudgetMax == nil || *got.Constraints.BudgetMax != 2000 {
		t.Errorf("budget = %v", got.Constraints.BudgetMax)
	}
}

func TestGetUnknownSessionIsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Get(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown session, got %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.Begin(ctx, "q", "", catalog.AudienceWomen, search.Constraints{})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("session still readable after delete")
	}
}

// --- Refinement ---

func TestRefineTightensBudget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := search.Constraints{Category: "Sneakers", Color: "White", BudgetMax: intPtr(3000)}
	sess, err := s.Begin(ctx, "white sneakers under 3000", "", catalog.AudienceMen, c)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	refined, err := s.Refine(ctx, sess.ID, "under $1500")
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if refined.Constraints.BudgetMax == nil || *refined.Constraints.BudgetMax != 1500 {
		t.Errorf("budget = %v, want 1500", refined.Constraints.BudgetMax)
	}
	// Untouched facets survive the merge.
	if refined.Constraints.Category != "Sneakers" {
		t.Errorf("category lost in refinement: %q", refined.Constraints.Category)
	}
	if refined.Constraints.Color != "White" {
		t.Errorf("color lost in refinement: %q", refined.Constraints.Color)
	}

	// The refinement is persisted, not just returned.
	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get after refine failed: %v", err)
	}
	if got.Constraints.BudgetMax == nil || *got.Constraints.BudgetMax != 1500 {
		t.Errorf("persisted budget = %v, want 1500", got.Constraints.BudgetMax)
	}
	if got.Query != "under $1500" {
		t.Errorf("persisted query = %q", got.Query)
	}
}

func TestRefineColorExclusionClearsColor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := search.Constraints{Category: "Sneakers", Color: "Black"}
	sess, err := s.Begin(ctx, "black sneakers", "", catalog.AudienceMen, c)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	refined, err := s.Refine(ctx, sess.ID, "actually no black")
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if refined.Constraints.Color != "" {
		t.Errorf("color should clear when excluded, got %q", refined.Constraints.Color)
	}
	if refined.Constraints.ColorExclude != "Black" {
		t.Errorf("colorExclude = %q, want Black", refined.Constraints.ColorExclude)
	}
}

func TestRefineUnknownSession(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Refine(context.Background(), "ghost", "under $500"); err == nil {
		t.Fatal("expected error refining an unknown session")
	}
}

// --- Retention ---

func TestExpiredSessionNotReturned(t *testing.T) {
	s, err := NewStore(StoreConfig{DBPath: ":memory:", Retention: time.Nanosecond})
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	sess, err := s.Begin(ctx, "q", "", catalog.AudienceMen, search.Constraints{})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expired session should read as nil")
	}
}

func TestPruneRemovesStaleSessions(t *testing.T) {
	s, err := NewStore(StoreConfig{DBPath: ":memory:", Retention: time.Nanosecond})
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Begin(ctx, "q", "", catalog.AudienceMen, search.Constraints{}); err != nil {
			t.Fatalf("begin failed: %v", err)
		}
	}
	time.Sleep(time.Millisecond)

	n, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 3 {
		t.Errorf("pruned %d sessions, want 3", n)
	}
	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after prune = %d, want 0", count)
	}
}
