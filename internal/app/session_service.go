package app

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
)

// joinCodeAttempts bounds the retry-until-unique loop for join codes.
const joinCodeAttempts = 25

// SessionStore abstracts how live sessions are kept (in-memory, Redis-backed).
// Implementations must reject a Put whose id or join code is already taken.
type SessionStore interface {
	Put(session *Session) error
	Get(sessionID string) (*Session, bool)
	GetByCode(joinCode string) (*Session, bool)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SessionService contains the session engine use cases: creating and joining
// sessions, driving the question state machine, scoring answers, and
// projecting leaderboards. Quiz content is read-only to it.
type SessionService struct {
	sessions SessionStore
	quizzes  QuizRepository
	now      func() time.Time
}

func NewSessionService(store SessionStore, quizzes QuizRepository) *SessionService {
	return NewSessionServiceWithClock(store, quizzes, time.Now)
}

// NewSessionServiceWithClock is test-only for deterministic timestamps.
func NewSessionServiceWithClock(store SessionStore, quizzes QuizRepository, now func() time.Time) *SessionService {
	return &SessionService{sessions: store, quizzes: quizzes, now: now}
}

// CreateSession opens a Waiting session for a quiz and assigns it a unique
// six-digit join code.
func (s *SessionService) CreateSession(ctx context.Context, quizID string) (domain.SessionSnapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.SessionSnapshot{}, fmt.Errorf("%w: quiz %s has no questions and cannot be played", domain.ErrInvalidArgument, quizID)
	}

	// The store enforces code uniqueness; collisions just roll a new code.
	var session *Session
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		candidate := NewSessionWithClock(uuid.New().String(), newJoinCode(), quizID, s.now)
		if err := s.sessions.Put(candidate); err == nil {
			session = candidate
			break
		}
	}
	if session == nil {
		return domain.SessionSnapshot{}, fmt.Errorf("%w: could not allocate a unique join code", domain.ErrConflict)
	}

	snap := session.Snapshot()
	snap.QuizTitle = quiz.Title
	return snap, nil
}

// JoinSession adds a participant to a Waiting session identified by its join code.
func (s *SessionService) JoinSession(ctx context.Context, joinCode, nickname string) (domain.Participant, error) {
	if strings.TrimSpace(nickname) == "" {
		return domain.Participant{}, fmt.Errorf("%w: nickname must not be empty", domain.ErrInvalidArgument)
	}
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.Participant{}, fmt.Errorf("%w: session with join code %q", domain.ErrNotFound, joinCode)
	}
	return session.Join(nickname)
}

// StartSession begins play: the first question becomes live and its timer starts.
func (s *SessionService) StartSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, quiz, err := s.sessionWithQuiz(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := session.Start(quiz); err != nil {
		return domain.SessionSnapshot{}, err
	}
	snap := session.Snapshot()
	snap.QuizTitle = quiz.Title
	return snap, nil
}

// FinishSession completes an InProgress session early, regardless of how many
// questions remain.
func (s *SessionService) FinishSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	if err := session.Finish(); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswer records one participant's answer and synchronously evaluates
// progression, so the session state visible after the call already reflects
// any advancement the answer caused.
func (s *SessionService) SubmitAnswer(ctx context.Context, submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	session, quiz, err := s.sessionWithQuiz(ctx, submission.SessionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return session.SubmitAnswer(quiz, submission.ParticipantID, submission.QuestionID, submission.OptionID, submission.ResponseTimeMs)
}

// GetSession reconciles any due time-based progression, then returns the state.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, quiz, err := s.sessionWithQuiz(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.reconciledSnapshot(session, quiz)
}

// GetSessionByCode is GetSession keyed by join code.
func (s *SessionService) GetSessionByCode(ctx context.Context, joinCode string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.SessionSnapshot{}, fmt.Errorf("%w: session with join code %q", domain.ErrNotFound, joinCode)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID())
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.reconciledSnapshot(session, quiz)
}

// GetCurrentQuestion returns the live question with correct-option flags
// hidden. It does not reconcile; callers wanting up-to-date progression read
// the session first.
func (s *SessionService) GetCurrentQuestion(ctx context.Context, sessionID string) (domain.Question, error) {
	session, quiz, err := s.sessionWithQuiz(ctx, sessionID)
	if err != nil {
		return domain.Question{}, err
	}
	return session.CurrentQuestion(quiz)
}

// GetLeaderboard returns the ranked scoreboard for a session.
func (s *SessionService) GetLeaderboard(ctx context.Context, sessionID string) ([]domain.LeaderboardEntry, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session.Leaderboard(), nil
}

// GetParticipants lists a session's participants ordered by points.
func (s *SessionService) GetParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session.Participants(), nil
}

// GetParticipant returns one participant of a session.
func (s *SessionService) GetParticipant(ctx context.Context, sessionID, participantID string) (domain.Participant, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Participant{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session.Participant(participantID)
}

func (s *SessionService) sessionWithQuiz(ctx context.Context, sessionID string) (*Session, domain.Quiz, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.Quiz{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID())
	if err != nil {
		return nil, domain.Quiz{}, err
	}
	return session, quiz, nil
}

func (s *SessionService) reconciledSnapshot(session *Session, quiz domain.Quiz) (domain.SessionSnapshot, error) {
	if err := session.Reconcile(quiz); err != nil {
		return domain.SessionSnapshot{}, err
	}
	snap := session.Snapshot()
	snap.QuizTitle = quiz.Title
	return snap, nil
}

// newJoinCode returns a random six-digit code. Uniqueness among active
// sessions is enforced by the store, not here.
func newJoinCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
