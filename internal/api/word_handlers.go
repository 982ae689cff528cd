package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/vocab-trainer/internal/models"
)

// Word catalog handlers

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	difficulty, err := queryInt(r, "difficulty", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if difficulty < 0 || difficulty > models.DifficultyHard {
		respondError(w, http.StatusBadRequest, "validation_error", "difficulty must be between 1 and 3")
		return
	}

	filter := models.WordFilter{
		Category:   r.URL.Query().Get("category"),
		Difficulty: difficulty,
	}

	words, err := s.manager.ListWords(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err, "list words")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"words": words,
		"total": len(words),
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.manager.Categories(r.Context())
	if err != nil {
		respondServiceError(w, err, "list categories")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func (s *Server) handleRandomWords(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	words, err := s.manager.RandomWords(r.Context(), r.URL.Query().Get("category"), count)
	if err != nil {
		respondServiceError(w, err, "get random words")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"words": words,
		"total": len(words),
	})
}

func (s *Server) handleCreateWord(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWordRequest
	if code, msg, ok := s.decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, code, msg)
		return
	}

	word, err := s.manager.CreateWord(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "create word")
		return
	}

	respondJSON(w, http.StatusCreated, word)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "word id is required")
		return
	}

	word, err := s.manager.GetWord(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get word")
		return
	}

	respondJSON(w, http.StatusOK, word)
}
