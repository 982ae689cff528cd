package api

import (
	"net/http"
	"strconv"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Quiz and progress handlers

func (s *Server) handleMultipleChoiceQuiz(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	questions, err := s.manager.GenerateQuiz(r.Context(), r.URL.Query().Get("category"), count)
	if err != nil {
		respondServiceError(w, err, "generate quiz")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
	})
}

// handleUpdateProgress records one answer. The answer comes from the word_id and
// is_correct query parameters when word_id is present, otherwise from a JSON body.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProgressRequest

	if wordID := r.URL.Query().Get("word_id"); wordID != "" {
		raw := r.URL.Query().Get("is_correct")
		if raw == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "is_correct is required")
			return
		}
		correct, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "is_correct must be a boolean")
			return
		}
		req = models.UpdateProgressRequest{WordID: wordID, IsCorrect: &correct}
	} else if code, msg, ok := s.decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, code, msg)
		return
	}

	rec, err := s.manager.RecordAnswer(r.Context(), UserIDFromContext(r.Context()), req.WordID, *req.IsCorrect)
	if err != nil {
		respondServiceError(w, err, "update progress")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"progress": rec,
	})
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	records, err := s.manager.Progress(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err, "list progress")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"progress": records,
		"total":    len(records),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.Stats(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err, "get stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
