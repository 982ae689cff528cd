package api

import (
	"net/http"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Study session log handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if code, msg, ok := s.decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, code, msg)
		return
	}

	session, err := s.manager.CreateSession(r.Context(), UserIDFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, err, "create session")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.manager.ListSessions(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err, "list sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}
