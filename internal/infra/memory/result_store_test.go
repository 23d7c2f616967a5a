package memory

import (
	"context"
	"testing"

	"portal-quiz-service/internal/domain"
)

func TestResultStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	_ = store.SaveResult(ctx, domain.StoredResult{ID: "r1", UserID: "u1"})
	_ = store.SaveResult(ctx, domain.StoredResult{ID: "r2", UserID: "u1"})
	_ = store.SaveResult(ctx, domain.StoredResult{ID: "r3", UserID: "u2"})

	got, err := store.ListResults(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("unexpected results %+v", got)
	}

	none, _ := store.ListResults(ctx, "nobody")
	if len(none) != 0 {
		t.Fatalf("expected no results, got %+v", none)
	}
}
