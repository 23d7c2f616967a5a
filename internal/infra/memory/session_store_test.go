package memory

import (
	"testing"

	"portal-quiz-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := app.NewSession("s1", "u1", "safety", 1)

	store.Put(session)
	got, ok := store.Get("s1")
	if !ok || got != session {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
