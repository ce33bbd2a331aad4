package app

import (
	"errors"
	"testing"

	"live-quiz-service/internal/domain"
)

func TestScoreIncorrectAlwaysZero(t *testing.T) {
	for _, responseMs := range []int{0, 1, 15000, 30000, 90000} {
		got, err := scorePoints(600, 30, false, responseMs)
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if got != 0 {
			t.Fatalf("incorrect answer at %dms scored %d, want 0", responseMs, got)
		}
	}
}

func TestScoreAtTimeLimitYieldsBaseValue(t *testing.T) {
	got, err := scorePoints(600, 30, true, 30000)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 600 {
		t.Fatalf("answer at the time limit scored %d, want base value 600", got)
	}
}

func TestScoreBeyondTimeLimitClampsToBaseValue(t *testing.T) {
	got, err := scorePoints(600, 30, true, 45000)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 600 {
		t.Fatalf("late answer scored %d, want 600", got)
	}
}

func TestScoreInstantAnswerCapsAtOneAndAHalf(t *testing.T) {
	got, err := scorePoints(600, 30, true, 0)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 900 {
		t.Fatalf("instant answer scored %d, want capped 900", got)
	}
}

func TestScoreHalfTimeBonus(t *testing.T) {
	// Half the window unused -> 25% bonus.
	got, err := scorePoints(600, 30, true, 15000)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 750 {
		t.Fatalf("half-time answer scored %d, want 750", got)
	}
}

func TestScoreTruncatesInsteadOfRounding(t *testing.T) {
	// 20s unused of 30s -> ratio 2/3 -> 100 * (1 + 1/3) = 133.33..., floor to 133.
	got, err := scorePoints(100, 30, true, 10000)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 133 {
		t.Fatalf("got %d, want truncated 133", got)
	}
}

func TestScoreNonIncreasingWithLatency(t *testing.T) {
	prev := 901
	for responseMs := 0; responseMs <= 30000; responseMs += 500 {
		got, err := scorePoints(600, 30, true, responseMs)
		if err != nil {
			t.Fatalf("score at %dms: %v", responseMs, err)
		}
		if got > prev {
			t.Fatalf("score rose from %d to %d as latency grew to %dms", prev, got, responseMs)
		}
		if got < 600 || got > 900 {
			t.Fatalf("score %d at %dms outside [600, 900]", got, responseMs)
		}
		prev = got
	}
}

func TestScoreRejectsNegativeLatency(t *testing.T) {
	if _, err := scorePoints(600, 30, true, -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative latency, got %v", err)
	}
}

func TestScoreRejectsNonPositiveTimeLimit(t *testing.T) {
	if _, err := scorePoints(600, 0, true, 100); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for zero time limit, got %v", err)
	}
}
