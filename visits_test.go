package polycanyon

import (
	"context"
	"testing"
	"time"
)

func TestMemStoreMarkVisitedIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	marked, err := m.MarkVisited(ctx, Visit{Structure: 7, Session: "a", At: time.Now()})
	if err != nil {
		t.Fatalf("MarkVisited: %v", err)
	}
	if !marked {
		t.Error("first MarkVisited = false, want true")
	}

	// Re-detecting an already-visited structure is a no-op.
	marked, err = m.MarkVisited(ctx, Visit{Structure: 7, Session: "b", At: time.Now()})
	if err != nil {
		t.Fatalf("MarkVisited: %v", err)
	}
	if marked {
		t.Error("second MarkVisited = true, want false")
	}

	visits, err := m.Visits(ctx)
	if err != nil {
		t.Fatalf("Visits: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(visits))
	}
	if visits[0].Session != "a" {
		t.Errorf("visit session = %q, want the original session %q", visits[0].Session, "a")
	}
}

func TestMemStoreReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	for _, n := range []int{3, 1, 2} {
		if _, err := m.MarkVisited(ctx, Visit{Structure: n, At: time.Now()}); err != nil {
			t.Fatalf("MarkVisited(%d): %v", n, err)
		}
	}

	visits, _ := m.Visits(ctx)
	for i, want := range []int{1, 2, 3} {
		if visits[i].Structure != want {
			t.Errorf("visits[%d] = %d, want %d (sorted by structure)", i, visits[i].Structure, want)
		}
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := m.IsVisited(ctx, 1); ok {
		t.Error("structure still visited after reset")
	}

	// A new cycle allows marking again.
	marked, _ := m.MarkVisited(ctx, Visit{Structure: 1, At: time.Now()})
	if !marked {
		t.Error("MarkVisited after reset = false, want true")
	}
}

func TestMemStorePrefs(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	if _, ok, _ := m.GetPref(ctx, "theme"); ok {
		t.Error("GetPref on empty store = present")
	}
	if err := m.SetPref(ctx, "theme", "dark"); err != nil {
		t.Fatalf("SetPref: %v", err)
	}
	v, ok, _ := m.GetPref(ctx, "theme")
	if !ok || v != "dark" {
		t.Errorf("GetPref = (%q, %v), want (dark, true)", v, ok)
	}
}
