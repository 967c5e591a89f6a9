package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathworks/curriculum-engine/internal/models"
	"github.com/pathworks/curriculum-engine/internal/seed"
)

// Resource handlers

func (s *Server) handleAddCurriculumResource(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := s.manager.AddCurriculumResource(r.Context(), curriculumID, req)
	if err != nil {
		respondServiceError(w, err, "add resource")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleAddProjectResource(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := s.manager.AddProjectResource(r.Context(), projectID, req)
	if err != nil {
		respondServiceError(w, err, "add resource")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteResource(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete resource")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "resource deleted",
	})
}

// Note handlers

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req models.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	n, err := s.manager.AddNote(r.Context(), projectID, req)
	if err != nil {
		respondServiceError(w, err, "add note")
		return
	}

	respondJSON(w, http.StatusCreated, n)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	notes, err := s.manager.ListNotes(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err, "list notes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"total": len(notes),
	})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteNote(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete note")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "note deleted",
	})
}

// Seed blueprint handlers

func (s *Server) handleListSeeds(w http.ResponseWriter, r *http.Request) {
	blueprints := s.seedLoader.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"seeds": blueprints,
		"total": len(blueprints),
	})
}

func (s *Server) handleGetSeed(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	bp := s.seedLoader.Get(slug)
	if bp == nil {
		respondError(w, http.StatusNotFound, "not_found", "seed blueprint not found")
		return
	}

	respondJSON(w, http.StatusOK, bp)
}

func (s *Server) handleInstantiateSeed(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	bp := s.seedLoader.Get(slug)
	if bp == nil {
		respondError(w, http.StatusNotFound, "not_found", "seed blueprint not found")
		return
	}

	c, err := seed.Instantiate(r.Context(), s.manager, bp)
	if err != nil {
		slog.Error("failed to instantiate seed", "slug", slug, "error", err)
		respondServiceError(w, err, "instantiate seed")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}
