package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionHandler exposes the session engine over REST.
type SessionHandler struct {
	service *app.SessionService
}

func NewSessionHandler(service *app.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
}

type joinSessionRequest struct {
	JoinCode string `json:"joinCode"`
	Nickname string `json:"nickname"`
}

type submitAnswerRequest struct {
	ParticipantID  string `json:"participantId"`
	QuestionID     string `json:"questionId"`
	OptionID       string `json:"optionId"`
	ResponseTimeMs int    `json:"responseTimeMs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "request body must contain quizId")
		return
	}

	session, err := h.service.CreateSession(r.Context(), req.QuizID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// JoinSession handles POST /api/sessions/join.
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	participant, err := h.service.JoinSession(r.Context(), req.JoinCode, req.Nickname)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GetSessionByCode handles GET /api/sessions/code/{code}.
func (h *SessionHandler) GetSessionByCode(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSessionByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// StartSession handles POST /api/sessions/{id}/start.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.StartSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// FinishSession handles POST /api/sessions/{id}/finish.
func (h *SessionHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.FinishSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswer handles POST /api/sessions/{id}/answers.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), domain.AnswerSubmission{
		SessionID:      mux.Vars(r)["id"],
		ParticipantID:  req.ParticipantID,
		QuestionID:     req.QuestionID,
		OptionID:       req.OptionID,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetCurrentQuestion handles GET /api/sessions/{id}/current-question.
func (h *SessionHandler) GetCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.GetCurrentQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// GetLeaderboard handles GET /api/sessions/{id}/leaderboard.
func (h *SessionHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := h.service.GetLeaderboard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard)
}

// GetParticipants handles GET /api/sessions/{id}/participants.
func (h *SessionHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.GetParticipants(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

// GetParticipant handles GET /api/sessions/{id}/participants/{participantId}.
func (h *SessionHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	participant, err := h.service.GetParticipant(r.Context(), vars["id"], vars["participantId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// writeDomainError maps the engine's error kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
