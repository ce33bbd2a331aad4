package domain

import "time"

// SessionStatus tracks where a session is in its lifecycle. Transitions only
// move forward: Waiting -> InProgress -> Completed.
type SessionStatus string

const (
	SessionWaiting    SessionStatus = "Waiting"
	SessionInProgress SessionStatus = "InProgress"
	SessionCompleted  SessionStatus = "Completed"
)

// AnswerOption represents a possible answer for a question.
type AnswerOption struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
	OrderIndex int    `json:"orderIndex"`
}

// Question models an MCQ question with exactly one correct option. The
// authoring side enforces the single-correct-option invariant; during play
// question content is read-only.
type Question struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	TimeLimitSeconds int            `json:"timeLimitSeconds"`
	Points           int            `json:"points"`
	OrderIndex       int            `json:"orderIndex"` // 1-based position within the quiz
	Options          []AnswerOption `json:"options"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Participant represents one player in a session. Nicknames are unique per
// session, case-insensitively. JoinedAt is the leaderboard tie-break.
type Participant struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	TotalPoints int       `json:"totalPoints"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// AnswerRecord is the immutable record of one participant's choice for one
// question. At most one record ever exists per (participant, question).
type AnswerRecord struct {
	ID             string    `json:"id"`
	ParticipantID  string    `json:"participantId"`
	QuestionID     string    `json:"questionId"`
	OptionID       string    `json:"optionId"`
	PointsEarned   int       `json:"pointsEarned"`
	ResponseTimeMs int       `json:"responseTimeMs"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// AnswerSubmission models a participant's answer to the live question.
type AnswerSubmission struct {
	SessionID      string
	ParticipantID  string
	QuestionID     string
	OptionID       string
	ResponseTimeMs int
}

// AnswerResult summarizes the outcome of a submission for a single participant.
type AnswerResult struct {
	AnswerRecordID string `json:"answerRecordId"`
	QuestionID     string `json:"questionId"`
	Correct        bool   `json:"correct"`
	PointsEarned   int    `json:"pointsEarned"`
	TotalPoints    int    `json:"totalPoints"`
}

// LeaderboardEntry is one row of the ranked scoreboard. Ranks are 1-based and
// distinct; ties on points are broken by join order.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	Nickname      string `json:"nickname"`
	TotalPoints   int    `json:"totalPoints"`
	Rank          int    `json:"rank"`
}

// SessionSnapshot is a consistent read view of a session.
type SessionSnapshot struct {
	ID                       string        `json:"id"`
	JoinCode                 string        `json:"joinCode"`
	QuizID                   string        `json:"quizId"`
	QuizTitle                string        `json:"quizTitle,omitempty"`
	Status                   SessionStatus `json:"status"`
	CreatedAt                time.Time     `json:"createdAt"`
	StartedAt                *time.Time    `json:"startedAt,omitempty"`
	CompletedAt              *time.Time    `json:"completedAt,omitempty"`
	CurrentQuestionOrder     *int          `json:"currentQuestionOrder,omitempty"`
	CurrentQuestionStartedAt *time.Time    `json:"currentQuestionStartedAt,omitempty"`
	ParticipantCount         int           `json:"participantCount"`
}
