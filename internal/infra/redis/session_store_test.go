package redis

import (
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func TestSessionStoreSetsLivenessKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("s1", "123456", "quiz-1")
	if err := store.Put(session); err != nil {
		t.Fatalf("put: %v", err)
	}

	if !mr.Exists("session:s1") {
		t.Fatalf("expected session liveness key")
	}
	if !mr.Exists("session:code:123456") {
		t.Fatalf("expected join code key")
	}
	if got, _ := mr.Get("session:code:123456"); got != "s1" {
		t.Fatalf("code key maps to %q, want s1", got)
	}

	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session by id")
	}
	if got, ok := store.GetByCode("123456"); !ok || got != session {
		t.Fatalf("expected session by code")
	}
}

func TestSessionStoreRejectsClaimedCode(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if err := store.Put(app.NewSession("s1", "123456", "quiz-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(app.NewSession("s2", "123456", "quiz-1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate code, got %v", err)
	}

	// A code claimed by another instance is also rejected.
	if err := mr.Set("session:code:777777", "other-instance"); err != nil {
		t.Fatalf("seed foreign claim: %v", err)
	}
	if err := store.Put(app.NewSession("s3", "777777", "quiz-1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for foreign claim, got %v", err)
	}
}
