package app

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
)

// Session is the in-memory aggregate for one play-through of a quiz. It owns
// the session status, the live-question pointer, the participants, and the
// answer ledger. Every mutation runs under one exclusive lock, so two
// submissions for the same session never interleave; sessions never share
// state, so operations on different sessions never contend.
//
// There is no background timer. The question time limit is data: it is
// evaluated against the injected clock whenever an answer is recorded and
// whenever Reconcile is called from a read path.
type Session struct {
	id       string
	joinCode string
	quizID   string
	now      func() time.Time

	mu                       sync.RWMutex
	status                   domain.SessionStatus
	createdAt                time.Time
	startedAt                *time.Time
	completedAt              *time.Time
	currentQuestionOrder     *int
	currentQuestionStartedAt *time.Time
	participants             map[string]*domain.Participant
	answers                  map[answerKey]*domain.AnswerRecord
}

// answerKey enforces the at-most-one-answer-per-question ledger invariant.
type answerKey struct {
	participantID string
	questionID    string
}

// NewSession creates a Waiting session for the given quiz.
func NewSession(id, joinCode, quizID string) *Session {
	return NewSessionWithClock(id, joinCode, quizID, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, joinCode, quizID string, now func() time.Time) *Session {
	return &Session{
		id:           id,
		joinCode:     joinCode,
		quizID:       quizID,
		now:          now,
		status:       domain.SessionWaiting,
		createdAt:    now(),
		participants: make(map[string]*domain.Participant),
		answers:      make(map[answerKey]*domain.AnswerRecord),
	}
}

// ID returns the session's opaque identifier.
func (s *Session) ID() string { return s.id }

// JoinCode returns the human-facing code participants join with.
func (s *Session) JoinCode() string { return s.joinCode }

// QuizID returns the id of the quiz this session plays.
func (s *Session) QuizID() string { return s.quizID }

// Join registers a new participant. Only Waiting sessions accept joins, and
// nicknames are unique per session ignoring case.
func (s *Session) Join(nickname string) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionWaiting {
		return domain.Participant{}, fmt.Errorf("%w: can only join a session while it is %s, current status is %s",
			domain.ErrInvalidState, domain.SessionWaiting, s.status)
	}
	for _, p := range s.participants {
		if strings.EqualFold(p.Nickname, nickname) {
			return domain.Participant{}, fmt.Errorf("%w: nickname %q is already taken in this session", domain.ErrConflict, nickname)
		}
	}

	participant := &domain.Participant{
		ID:       uuid.New().String(),
		Nickname: nickname,
		JoinedAt: s.now(),
	}
	s.participants[participant.ID] = participant
	return *participant, nil
}

// Start moves the session from Waiting to InProgress and makes the first
// question live. It fails if the session already started or has no
// participants; the caller must not retry automatically.
func (s *Session) Start(quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionWaiting {
		return fmt.Errorf("%w: session can only be started from %s, current status is %s",
			domain.ErrInvalidState, domain.SessionWaiting, s.status)
	}
	if len(s.participants) == 0 {
		return fmt.Errorf("%w: session cannot be started without participants", domain.ErrInvalidState)
	}
	questions := questionsInOrder(quiz)
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", domain.ErrDataIntegrity, quiz.ID)
	}

	now := s.now()
	s.status = domain.SessionInProgress
	s.startedAt = &now
	first := questions[0].OrderIndex
	s.currentQuestionOrder = &first
	startAt := now
	s.currentQuestionStartedAt = &startAt
	return nil
}

// Finish completes an InProgress session regardless of question position.
// Completed is terminal, so finishing twice fails rather than crashing.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionInProgress {
		return fmt.Errorf("%w: session can only be finished while %s, current status is %s",
			domain.ErrInvalidState, domain.SessionInProgress, s.status)
	}
	s.completeLocked(s.now())
	return nil
}

// SubmitAnswer validates and records one participant's answer to the live
// question, updates their total, and immediately evaluates progression so the
// returned result already reflects any advancement it caused. Validation is
// fail-fast; the ledger append and the duplicate check share the same
// critical section, so concurrent duplicates cannot both succeed.
func (s *Session) SubmitAnswer(quiz domain.Quiz, participantID, questionID, optionID string, responseTimeMs int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[participantID]
	if !ok {
		return domain.AnswerResult{}, fmt.Errorf("%w: participant %s is not in this session", domain.ErrNotFound, participantID)
	}
	if s.status != domain.SessionInProgress {
		return domain.AnswerResult{}, fmt.Errorf("%w: answers are only accepted while the session is %s, current status is %s",
			domain.ErrInvalidState, domain.SessionInProgress, s.status)
	}

	question := findQuestion(quiz, questionID)
	if question == nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: question %s does not belong to quiz %s", domain.ErrInvalidArgument, questionID, quiz.ID)
	}
	if s.currentQuestionOrder == nil || question.OrderIndex != *s.currentQuestionOrder {
		return domain.AnswerResult{}, fmt.Errorf("%w: question %s is not the active question", domain.ErrInvalidState, questionID)
	}

	var option *domain.AnswerOption
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			option = &question.Options[i]
			break
		}
	}
	if option == nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: option %s does not belong to question %s", domain.ErrNotFound, optionID, questionID)
	}

	key := answerKey{participantID: participantID, questionID: questionID}
	if _, exists := s.answers[key]; exists {
		return domain.AnswerResult{}, fmt.Errorf("%w: participant %s already answered question %s", domain.ErrConflict, participantID, questionID)
	}

	earned, err := scorePoints(question.Points, question.TimeLimitSeconds, option.Correct, responseTimeMs)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	record := &domain.AnswerRecord{
		ID:             uuid.New().String(),
		ParticipantID:  participantID,
		QuestionID:     questionID,
		OptionID:       optionID,
		PointsEarned:   earned,
		ResponseTimeMs: responseTimeMs,
		AnsweredAt:     s.now(),
	}
	s.answers[key] = record
	participant.TotalPoints += earned

	if err := s.advanceLocked(quiz); err != nil {
		return domain.AnswerResult{}, err
	}

	return domain.AnswerResult{
		AnswerRecordID: record.ID,
		QuestionID:     questionID,
		Correct:        option.Correct,
		PointsEarned:   earned,
		TotalPoints:    participant.TotalPoints,
	}, nil
}

// Reconcile applies any time-based progression that is due. Read paths call
// it before returning state, which is what keeps the engine honest without a
// background timer: progression is a pure function of the stored state and
// the clock. It takes the exclusive lock because it may mutate.
func (s *Session) Reconcile(quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.SessionInProgress || s.currentQuestionOrder == nil {
		return nil
	}
	return s.advanceLocked(quiz)
}

// advanceLocked closes the live question window when everyone has answered or
// the time limit elapsed, moving to the next question in ordinal order or
// completing the session after the last one. It advances at most one step per
// call and leaves state untouched on any inconsistency. Participants who
// never answered are simply skipped; no zero-point record is synthesized for
// them. Callers must hold the write lock.
func (s *Session) advanceLocked(quiz domain.Quiz) error {
	if s.currentQuestionOrder == nil || s.currentQuestionStartedAt == nil {
		return nil
	}

	questions := questionsInOrder(quiz)
	currentIdx := -1
	for i := range questions {
		if questions[i].OrderIndex == *s.currentQuestionOrder {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return fmt.Errorf("%w: session %s points at question order %d which quiz %s does not contain",
			domain.ErrDataIntegrity, s.id, *s.currentQuestionOrder, quiz.ID)
	}
	current := questions[currentIdx]

	now := s.now()
	elapsed := now.Sub(*s.currentQuestionStartedAt)
	timeExpired := elapsed >= time.Duration(current.TimeLimitSeconds)*time.Second

	answered := 0
	for key := range s.answers {
		if key.questionID == current.ID {
			answered++
		}
	}
	allAnswered := len(s.participants) > 0 && answered >= len(s.participants)

	if !allAnswered && !timeExpired {
		return nil
	}

	if currentIdx+1 < len(questions) {
		next := questions[currentIdx+1].OrderIndex
		s.currentQuestionOrder = &next
		startAt := now
		s.currentQuestionStartedAt = &startAt
		return nil
	}
	s.completeLocked(now)
	return nil
}

// completeLocked transitions to the terminal state and clears the
// live-question pointer. Callers must hold the write lock.
func (s *Session) completeLocked(now time.Time) {
	s.status = domain.SessionCompleted
	s.completedAt = &now
	s.currentQuestionOrder = nil
	s.currentQuestionStartedAt = nil
}

// CurrentQuestion returns the live question with the correct flag stripped
// from every option, so the payload is safe to show participants.
func (s *Session) CurrentQuestion(quiz domain.Quiz) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status != domain.SessionInProgress {
		return domain.Question{}, fmt.Errorf("%w: session must be %s to fetch the current question, current status is %s",
			domain.ErrInvalidState, domain.SessionInProgress, s.status)
	}
	if s.currentQuestionOrder == nil {
		return domain.Question{}, fmt.Errorf("%w: no active question in this session", domain.ErrNotFound)
	}

	for _, q := range quiz.Questions {
		if q.OrderIndex == *s.currentQuestionOrder {
			return sanitizeQuestion(q), nil
		}
	}
	return domain.Question{}, fmt.Errorf("%w: session %s points at question order %d which quiz %s does not contain",
		domain.ErrDataIntegrity, s.id, *s.currentQuestionOrder, quiz.ID)
}

// Leaderboard returns the ranked scoreboard: points descending, earlier
// joiners first on ties, ranks 1-based and distinct. Read-only; it does not
// trigger progression.
func (s *Session) Leaderboard() []domain.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]*domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
	})

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			TotalPoints:   p.TotalPoints,
			Rank:          i + 1,
		})
	}
	return entries
}

// Participants returns the session's participants ordered by points.
func (s *Session) Participants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalPoints != list[j].TotalPoints {
			return list[i].TotalPoints > list[j].TotalPoints
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list
}

// Participant looks up one participant by id.
func (s *Session) Participant(participantID string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[participantID]
	if !ok {
		return domain.Participant{}, fmt.Errorf("%w: participant %s is not in this session", domain.ErrNotFound, participantID)
	}
	return *p, nil
}

// Snapshot returns a consistent read view of the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.SessionSnapshot{
		ID:               s.id,
		JoinCode:         s.joinCode,
		QuizID:           s.quizID,
		Status:           s.status,
		CreatedAt:        s.createdAt,
		ParticipantCount: len(s.participants),
	}
	snap.StartedAt = copyTime(s.startedAt)
	snap.CompletedAt = copyTime(s.completedAt)
	snap.CurrentQuestionStartedAt = copyTime(s.currentQuestionStartedAt)
	if s.currentQuestionOrder != nil {
		order := *s.currentQuestionOrder
		snap.CurrentQuestionOrder = &order
	}
	return snap
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func questionsInOrder(quiz domain.Quiz) []domain.Question {
	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})
	return questions
}

func findQuestion(quiz domain.Quiz, questionID string) *domain.Question {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			return &quiz.Questions[i]
		}
	}
	return nil
}

func sanitizeQuestion(q domain.Question) domain.Question {
	out := q
	out.Options = make([]domain.AnswerOption, len(q.Options))
	copy(out.Options, q.Options)
	sort.Slice(out.Options, func(i, j int) bool {
		return out.Options[i].OrderIndex < out.Options[j].OrderIndex
	})
	for i := range out.Options {
		out.Options[i].Correct = false
	}
	return out
}
