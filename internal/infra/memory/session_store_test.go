package memory

import (
	"errors"
	"testing"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func TestSessionStorePutAndLookup(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("s1", "123456", "quiz-1")
	if err := store.Put(session); err != nil {
		t.Fatalf("put: %v", err)
	}

	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session by id")
	}
	if got, ok := store.GetByCode("123456"); !ok || got != session {
		t.Fatalf("expected session by join code")
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatalf("expected miss for unknown id")
	}
	if _, ok := store.GetByCode("654321"); ok {
		t.Fatalf("expected miss for unknown code")
	}
}

func TestSessionStoreRejectsDuplicates(t *testing.T) {
	store := NewSessionStore()

	if err := store.Put(app.NewSession("s1", "123456", "quiz-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(app.NewSession("s1", "999999", "quiz-1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate id, got %v", err)
	}
	if err := store.Put(app.NewSession("s2", "123456", "quiz-1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate join code, got %v", err)
	}
}
