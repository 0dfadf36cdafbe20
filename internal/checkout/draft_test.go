package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/ginzapet/storefront/pkg/localstore"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewDraftStore(localstore.NewMemory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load on empty storage failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no draft, got %+v", loaded)
	}

	want := validDraft()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil || *loaded != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", loaded, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no draft after clear, got %+v", loaded)
	}
}

func TestDraftStoreCorruptLoadsAsNoDraft(t *testing.T) {
	t.Parallel()

	state := localstore.NewMemory()
	if err := state.Save(context.Background(), localstore.KeyOrderDraft, []byte("%%%")); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}
	store, err := NewDraftStore(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load should not fail on corrupt storage: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no draft, got %+v", loaded)
	}
}

func TestDefaultDraftSchedulesTomorrow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 28, 15, 4, 5, 0, time.UTC)
	draft := DefaultDraft(now)
	if draft.ScheduleAt != "2026-08-29" {
		t.Fatalf("unexpected default schedule %q", draft.ScheduleAt)
	}
	if draft.Name != "" || draft.Email != "" || draft.City != "" {
		t.Fatalf("expected other fields empty, got %+v", draft)
	}

	// Month rollover.
	draft = DefaultDraft(time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC))
	if draft.ScheduleAt != "2026-09-01" {
		t.Fatalf("unexpected rollover schedule %q", draft.ScheduleAt)
	}
}
