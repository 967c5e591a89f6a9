package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps service-layer errors to HTTP responses
func respondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, curriculum.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, curriculum.ErrCurriculumNotFound):
		respondError(w, http.StatusNotFound, "not_found", "curriculum not found")
	case errors.Is(err, curriculum.ErrLevelNotFound):
		respondError(w, http.StatusNotFound, "not_found", "level not found")
	case errors.Is(err, curriculum.ErrStageNotFound):
		respondError(w, http.StatusNotFound, "not_found", "stage not found")
	case errors.Is(err, curriculum.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, curriculum.ErrResourceNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, curriculum.ErrNoteNotFound):
		respondError(w, http.StatusNotFound, "not_found", "note not found")
	default:
		slog.Error("failed to "+action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Curriculum handlers

func (s *Server) handleListCurricula(w http.ResponseWriter, r *http.Request) {
	curricula, err := s.manager.ListCurricula(r.Context())
	if err != nil {
		respondServiceError(w, err, "list curricula")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"curricula": curricula,
		"total":     len(curricula),
	})
}

func (s *Server) handleCreateCurriculum(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCurriculumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := s.manager.CreateCurriculum(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "create curriculum")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCurriculum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "curriculum id is required")
		return
	}

	c, err := s.manager.GetCurriculum(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get curriculum")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCurriculum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateCurriculumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := s.manager.UpdateCurriculum(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "update curriculum")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCurriculum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteCurriculum(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete curriculum")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "curriculum deleted",
	})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.manager.GetProgress(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get progress")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleNextUp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	count := 3 // default
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		if c, err := strconv.Atoi(countStr); err == nil && c > 0 {
			count = c
		}
	}

	projects, err := s.manager.NextUp(r.Context(), id, count)
	if err != nil {
		respondServiceError(w, err, "get next projects")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    len(projects),
	})
}
