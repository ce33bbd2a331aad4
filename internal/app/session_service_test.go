package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func newTestService(clock func() time.Time) *app.SessionService {
	store := memory.NewSessionStore()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": testQuiz(),
		"empty-quiz": {
			ID:    "empty-quiz",
			Title: "Nothing here",
		},
	})
	quizzes := memory.NewQuizRepository(loader, 5*time.Minute)
	return app.NewSessionServiceWithClock(store, quizzes, clock)
}

func TestCreateSessionValidatesQuiz(t *testing.T) {
	ctx := context.Background()
	service := newTestService(time.Now)

	if _, err := service.CreateSession(ctx, "no-such-quiz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown quiz, got %v", err)
	}
	if _, err := service.CreateSession(ctx, "empty-quiz"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for quiz without questions, got %v", err)
	}

	session, err := service.CreateSession(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Status != domain.SessionWaiting {
		t.Fatalf("new session status %s, want Waiting", session.Status)
	}
	if len(session.JoinCode) != 6 {
		t.Fatalf("join code %q is not six digits", session.JoinCode)
	}
	if session.QuizTitle != "Capitals" {
		t.Fatalf("expected quiz title on snapshot, got %q", session.QuizTitle)
	}
}

func TestJoinCodesAreUniqueAndResolvable(t *testing.T) {
	ctx := context.Background()
	service := newTestService(time.Now)

	codes := make(map[string]string)
	for i := 0; i < 50; i++ {
		session, err := service.CreateSession(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if other, dup := codes[session.JoinCode]; dup {
			t.Fatalf("join code %s assigned to both %s and %s", session.JoinCode, other, session.ID)
		}
		codes[session.JoinCode] = session.ID

		byCode, err := service.GetSessionByCode(ctx, session.JoinCode)
		if err != nil {
			t.Fatalf("get by code: %v", err)
		}
		if byCode.ID != session.ID {
			t.Fatalf("code %s resolved to %s, want %s", session.JoinCode, byCode.ID, session.ID)
		}
	}
}

func TestJoinSessionErrors(t *testing.T) {
	ctx := context.Background()
	service := newTestService(time.Now)

	if _, err := service.JoinSession(ctx, "000000", "Alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}

	session, err := service.CreateSession(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.JoinSession(ctx, session.JoinCode, "  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for blank nickname, got %v", err)
	}
	if _, err := service.JoinSession(ctx, session.JoinCode, "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.JoinSession(ctx, session.JoinCode, "aLiCe"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for case-insensitive duplicate, got %v", err)
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(time.Now)

	_, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{
		SessionID:     "missing",
		ParticipantID: "p1",
		QuestionID:    "q1",
		OptionID:      "o1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// TestTwoQuestionPlayThrough drives a full session: two participants join,
// one answers the first question at half time, the other never answers, and
// both question windows close by timeout observed through plain reads.
func TestTwoQuestionPlayThrough(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	service := newTestService(func() time.Time { return current })

	created, err := service.CreateSession(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	alice, err := service.JoinSession(ctx, created.JoinCode, "Alice")
	if err != nil {
		t.Fatalf("join alice: %v", err)
	}
	current = current.Add(time.Second)
	bob, err := service.JoinSession(ctx, created.JoinCode, "Bob")
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	started, err := service.StartSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.CurrentQuestionOrder == nil || *started.CurrentQuestionOrder != 1 {
		t.Fatalf("expected question 1 live, got %+v", started.CurrentQuestionOrder)
	}
	questionStart := current

	// Alice answers correctly with half the 30s window unused -> 750 points.
	current = questionStart.Add(15 * time.Second)
	result, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{
		SessionID:      created.ID,
		ParticipantID:  alice.ID,
		QuestionID:     "q1",
		OptionID:       "o2",
		ResponseTimeMs: 15000,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.PointsEarned != 750 || result.TotalPoints != 750 {
		t.Fatalf("expected 750 points, got %+v", result)
	}

	// Bob is silent. Before the window closes a read holds.
	snap, err := service.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *snap.CurrentQuestionOrder != 1 {
		t.Fatalf("advanced early to %d", *snap.CurrentQuestionOrder)
	}

	// At 30s the next read advances to question 2.
	current = questionStart.Add(30 * time.Second)
	snap, err = service.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.CurrentQuestionOrder == nil || *snap.CurrentQuestionOrder != 2 {
		t.Fatalf("expected question 2 after timeout, got %+v", snap.CurrentQuestionOrder)
	}

	question, err := service.GetCurrentQuestion(ctx, created.ID)
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	if question.ID != "q2" {
		t.Fatalf("expected q2, got %s", question.ID)
	}

	// Nobody answers question 2; its 20s window closes and the session completes.
	current = current.Add(20 * time.Second)
	snap, err = service.GetSessionByCode(ctx, created.JoinCode)
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if snap.Status != domain.SessionCompleted {
		t.Fatalf("expected Completed, got %s", snap.Status)
	}

	entries, err := service.GetLeaderboard(ctx, created.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ParticipantID != alice.ID || entries[0].TotalPoints != 750 || entries[0].Rank != 1 {
		t.Fatalf("expected Alice first with 750, got %+v", entries[0])
	}
	if entries[1].ParticipantID != bob.ID || entries[1].TotalPoints != 0 || entries[1].Rank != 2 {
		t.Fatalf("expected Bob second with 0, got %+v", entries[1])
	}
}

func TestGetParticipantsOrdering(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	service := newTestService(func() time.Time { return current })

	created, err := service.CreateSession(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	alice, _ := service.JoinSession(ctx, created.JoinCode, "Alice")
	current = current.Add(time.Second)
	if _, err := service.JoinSession(ctx, created.JoinCode, "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.StartSession(ctx, created.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{
		SessionID:      created.ID,
		ParticipantID:  alice.ID,
		QuestionID:     "q1",
		OptionID:       "o2",
		ResponseTimeMs: 1000,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	participants, err := service.GetParticipants(ctx, created.ID)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(participants) != 2 || participants[0].ID != alice.ID {
		t.Fatalf("expected Alice first by points, got %+v", participants)
	}

	got, err := service.GetParticipant(ctx, created.ID, alice.ID)
	if err != nil {
		t.Fatalf("participant: %v", err)
	}
	if got.Nickname != "Alice" {
		t.Fatalf("unexpected participant %+v", got)
	}
	if _, err := service.GetParticipant(ctx, created.ID, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
