package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"live-quiz-service/internal/app"
)

// NewRouter wires the session engine into a poll-driven REST API. Clients
// learn about question advancement by re-reading session state; every session
// read reconciles time-based progression first.
func NewRouter(service *app.SessionService) http.Handler {
	h := NewSessionHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/join", h.JoinSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/code/{code}", h.GetSessionByCode).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/start", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/finish", h.FinishSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/answers", h.SubmitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/current-question", h.GetCurrentQuestion).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/participants", h.GetParticipants).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/participants/{participantId}", h.GetParticipant).Methods(http.MethodGet)

	return r
}
