package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// Level handlers

func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	var req models.CreateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	l, err := s.manager.CreateLevel(r.Context(), curriculumID, req)
	if err != nil {
		respondServiceError(w, err, "create level")
		return
	}

	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdateLevel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	l, err := s.manager.UpdateLevel(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "update level")
		return
	}

	respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLevel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteLevel(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete level")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "level deleted",
	})
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	levels, err := s.manager.ListLevels(r.Context(), curriculumID)
	if err != nil {
		respondServiceError(w, err, "list levels")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"levels": levels,
		"total":  len(levels),
	})
}

func (s *Server) handleSuggestLevel(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	suggestion, err := s.manager.SuggestLevel(r.Context(), curriculumID)
	if err != nil {
		respondServiceError(w, err, "suggest level")
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// Stage handlers

func (s *Server) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	var req models.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	st, err := s.manager.CreateStage(r.Context(), curriculumID, req)
	if err != nil {
		respondServiceError(w, err, "create stage")
		return
	}

	respondJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	st, err := s.manager.UpdateStage(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "update stage")
		return
	}

	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteStage(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete stage")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "stage deleted",
	})
}

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	stages, err := s.manager.ListStages(r.Context(), curriculumID)
	if err != nil {
		respondServiceError(w, err, "list stages")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stages": stages,
		"total":  len(stages),
	})
}

func (s *Server) handleSuggestStageNumber(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	number, err := s.manager.SuggestStageNumber(r.Context(), curriculumID)
	if err != nil {
		respondServiceError(w, err, "suggest stage number")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"stage_number": number,
	})
}

// Project handlers

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.manager.CreateProject(r.Context(), curriculumID, req)
	if err != nil {
		respondServiceError(w, err, "create project")
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.manager.GetProject(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get project")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.manager.UpdateProject(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "update project")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.DeleteProject(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete project")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "project deleted",
	})
}

func (s *Server) handleSetProjectState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.manager.SetProjectState(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "set project state")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	q := r.URL.Query()
	filters := models.ProjectFilters{
		LevelID: q.Get("level_id"),
		Topic:   q.Get("topic"),
		State:   models.ProjectState(q.Get("state")),
		Repo:    models.RepoFilter(q.Get("repo")),
		Query:   q.Get("q"),
	}

	if stageStr := q.Get("stage"); stageStr != "" {
		stage, err := strconv.Atoi(stageStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "stage must be an integer")
			return
		}
		filters.Stage = &stage
	}

	if filters.State != "" && !filters.State.Valid() {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown state filter")
		return
	}
	if filters.Repo != models.RepoAny && filters.Repo != models.RepoWith && filters.Repo != models.RepoWithout {
		respondError(w, http.StatusBadRequest, "validation_error", "repo filter must be \"with\" or \"without\"")
		return
	}

	projects, err := s.manager.ListProjects(r.Context(), curriculumID, filters)
	if err != nil {
		respondServiceError(w, err, "list projects")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    len(projects),
	})
}

func (s *Server) handleSuggestProject(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")

	stageStr := r.URL.Query().Get("stage")
	stage, err := strconv.Atoi(stageStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "stage query parameter is required")
		return
	}

	suggestion, err := s.manager.SuggestProject(r.Context(), curriculumID, stage)
	if err != nil {
		respondServiceError(w, err, "suggest project")
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// Prerequisite handlers

func (s *Server) handleGetPrerequisites(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := s.manager.GetPrerequisites(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get prerequisites")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetPrerequisites(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SetPrerequisitesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.manager.SetPrerequisites(r.Context(), id, req.Prerequisites)
	if err != nil {
		respondServiceError(w, err, "set prerequisites")
		return
	}

	respondJSON(w, http.StatusOK, p)
}
