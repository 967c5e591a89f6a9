// Package curriculum is the service layer: it loads snapshots from storage,
// gates every mutation through the validation and hierarchy rules, persists
// accepted changes, and tells the cache and event hub what moved.
package curriculum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pathworks/curriculum-engine/internal/hierarchy"
	"github.com/pathworks/curriculum-engine/internal/models"
	"github.com/pathworks/curriculum-engine/internal/prereq"
	"github.com/pathworks/curriculum-engine/internal/progress"
	"github.com/pathworks/curriculum-engine/internal/storage"
	"github.com/pathworks/curriculum-engine/internal/validate"
)

// Common errors
var (
	ErrCurriculumNotFound = errors.New("curriculum not found")
	ErrLevelNotFound      = errors.New("level not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrValidation         = errors.New("validation failed")
)

const (
	defaultStageRangeSize = 5
	maxNoteContentLen     = 10000
)

// Event describes a mutation for subscribers of a curriculum's event feed
type Event struct {
	Type   string `json:"type"` // created | updated | deleted
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Publisher receives mutation events. The API layer's websocket hub
// implements this; a nil publisher is allowed.
type Publisher interface {
	Publish(curriculumID string, event Event)
}

// Cache invalidates and reads derived progress snapshots. A nil cache is
// allowed; everything falls through to recomputation.
type Cache interface {
	GetProgress(ctx context.Context, curriculumID string) (*Progress, error)
	SetProgress(ctx context.Context, curriculumID string, p *Progress) error
	Invalidate(ctx context.Context, curriculumID string) error
}

// Progress is the derived completion view of a curriculum
type Progress struct {
	CurriculumID string                `json:"curriculum_id"`
	Stats        progress.Stats        `json:"stats"`
	ByLevel      []progress.LevelStats `json:"by_level"`
	ComputedAt   time.Time             `json:"computed_at"`
}

// LevelSuggestion is the next available slot for a new level
type LevelSuggestion struct {
	Order      int                  `json:"order"`
	StageRange hierarchy.StageRange `json:"stage_range"`
}

// ProjectSuggestion is the next available order and derived identifier for a
// new project in a stage
type ProjectSuggestion struct {
	Order      int    `json:"order"`
	UsedOrders []int  `json:"used_orders"`
	Identifier string `json:"identifier,omitempty"`
	LevelName  string `json:"level_name,omitempty"`
}

// PrerequisiteView is everything the prerequisite editor needs
type PrerequisiteView struct {
	Current    []string                `json:"current"`
	Summary    prereq.Summary          `json:"summary"`
	Candidates []prereq.CandidateGroup `json:"candidates"`
}

// Manager defines the curriculum service interface
type Manager interface {
	// Curricula
	CreateCurriculum(ctx context.Context, req models.CreateCurriculumRequest) (*models.Curriculum, error)
	GetCurriculum(ctx context.Context, id string) (*models.Curriculum, error)
	UpdateCurriculum(ctx context.Context, id string, req models.UpdateCurriculumRequest) (*models.Curriculum, error)
	DeleteCurriculum(ctx context.Context, id string) error
	ListCurricula(ctx context.Context) ([]*models.Curriculum, error)

	// Levels
	CreateLevel(ctx context.Context, curriculumID string, req models.CreateLevelRequest) (*models.Level, error)
	UpdateLevel(ctx context.Context, id string, req models.UpdateLevelRequest) (*models.Level, error)
	DeleteLevel(ctx context.Context, id string) error
	ListLevels(ctx context.Context, curriculumID string) ([]*models.Level, error)
	SuggestLevel(ctx context.Context, curriculumID string) (*LevelSuggestion, error)

	// Stages
	CreateStage(ctx context.Context, curriculumID string, req models.CreateStageRequest) (*models.Stage, error)
	UpdateStage(ctx context.Context, id string, req models.UpdateStageRequest) (*models.Stage, error)
	DeleteStage(ctx context.Context, id string) error
	ListStages(ctx context.Context, curriculumID string) ([]*models.Stage, error)
	SuggestStageNumber(ctx context.Context, curriculumID string) (int, error)

	// Projects
	CreateProject(ctx context.Context, curriculumID string, req models.CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SetProjectState(ctx context.Context, id string, req models.StateRequest) (*models.Project, error)
	ListProjects(ctx context.Context, curriculumID string, filters models.ProjectFilters) ([]*models.Project, error)
	SuggestProject(ctx context.Context, curriculumID string, stage int) (*ProjectSuggestion, error)
	GetPrerequisites(ctx context.Context, projectID string) (*PrerequisiteView, error)
	SetPrerequisites(ctx context.Context, projectID string, prereqIDs []string) (*models.Project, error)

	// Resources and notes
	AddCurriculumResource(ctx context.Context, curriculumID string, req models.CreateResourceRequest) (*models.Resource, error)
	AddProjectResource(ctx context.Context, projectID string, req models.CreateResourceRequest) (*models.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	AddNote(ctx context.Context, projectID string, req models.CreateNoteRequest) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, projectID string) ([]*models.Note, error)

	// Derived views
	GetProgress(ctx context.Context, curriculumID string) (*Progress, error)
	NextUp(ctx context.Context, curriculumID string, count int) ([]*models.Project, error)

	Ping(ctx context.Context) error
}

// Service implements Manager over a storage.Repository
type Service struct {
	repo      storage.Repository
	cache     Cache
	publisher Publisher
}

// NewService creates a curriculum service. cache and publisher may be nil.
func NewService(repo storage.Repository, cache Cache, publisher Publisher) *Service {
	return &Service{repo: repo, cache: cache, publisher: publisher}
}

// Ping checks that the service's storage is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func validationErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

func (s *Service) notify(ctx context.Context, curriculumID, eventType, entity, id string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, curriculumID); err != nil {
			slog.Warn("failed to invalidate progress cache", "curriculum_id", curriculumID, "error", err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(curriculumID, Event{Type: eventType, Entity: entity, ID: id})
	}
}

// --- Curricula ---

// CreateCurriculum creates an empty curriculum
func (s *Service) CreateCurriculum(ctx context.Context, req models.CreateCurriculumRequest) (*models.Curriculum, error) {
	name := validate.Normalize(req.Name)
	if name == "" {
		return nil, validationErr("curriculum name is required")
	}

	now := time.Now().UTC()
	c := &models.Curriculum{
		ID:          uuid.New().String(),
		Name:        name,
		Description: validate.Normalize(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateCurriculum(ctx, c); err != nil {
		return nil, err
	}

	slog.Info("curriculum created", "id", c.ID, "name", c.Name)
	return c, nil
}

// GetCurriculum loads a curriculum with all owned collections
func (s *Service) GetCurriculum(ctx context.Context, id string) (*models.Curriculum, error) {
	c, err := s.repo.GetCurriculum(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	if c.Levels, err = s.repo.ListLevels(ctx, id); err != nil {
		return nil, err
	}
	if c.Stages, err = s.repo.ListStages(ctx, id); err != nil {
		return nil, err
	}
	if c.Projects, err = s.repo.ListProjects(ctx, id); err != nil {
		return nil, err
	}
	if c.Resources, err = s.repo.ListCurriculumResources(ctx, id); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateCurriculum applies partial name/description changes
func (s *Service) UpdateCurriculum(ctx context.Context, id string, req models.UpdateCurriculumRequest) (*models.Curriculum, error) {
	c, err := s.repo.GetCurriculum(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	if req.Name != nil {
		name := validate.Normalize(*req.Name)
		if name == "" {
			return nil, validationErr("curriculum name cannot be empty")
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = validate.Normalize(*req.Description)
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateCurriculum(ctx, c); err != nil {
		return nil, err
	}

	s.notify(ctx, c.ID, "updated", "curriculum", c.ID)
	return c, nil
}

// DeleteCurriculum removes a curriculum; levels, stages, projects, resources
// and notes cascade with it
func (s *Service) DeleteCurriculum(ctx context.Context, id string) error {
	c, err := s.repo.GetCurriculum(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCurriculumNotFound
	}

	if err := s.repo.DeleteCurriculum(ctx, id); err != nil {
		return err
	}

	slog.Info("curriculum deleted", "id", id, "name", c.Name)
	s.notify(ctx, id, "deleted", "curriculum", id)
	return nil
}

// ListCurricula returns all curriculum headers
func (s *Service) ListCurricula(ctx context.Context) ([]*models.Curriculum, error) {
	return s.repo.ListCurricula(ctx)
}

func (s *Service) touch(ctx context.Context, curriculumID string) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil || c == nil {
		return
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCurriculum(ctx, c); err != nil {
		slog.Warn("failed to touch curriculum", "id", curriculumID, "error", err)
	}
}

// --- Levels ---

// CreateLevel creates a level, auto-filling order and range when omitted
func (s *Service) CreateLevel(ctx context.Context, curriculumID string, req models.CreateLevelRequest) (*models.Level, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	name := validate.Normalize(req.Name)
	if name == "" {
		return nil, validationErr("level name is required")
	}

	prefix := validate.Normalize(req.DefaultIdentifier)
	if !validate.Identifier(prefix) {
		return nil, validationErr("default identifier has an invalid format")
	}

	existing, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		order = hierarchy.NextAvailableLevelOrder(existing, "")
	}
	if res := hierarchy.LevelOrderIsUnique(order, existing, ""); !res.OK {
		return nil, validationErr(res.Reason)
	}

	var start, end int
	switch {
	case req.StageStart != nil && req.StageEnd != nil:
		start, end = *req.StageStart, *req.StageEnd
	case req.StageStart == nil && req.StageEnd == nil:
		rng := hierarchy.NextAvailableStageRange(existing, defaultStageRangeSize)
		start, end = rng.StageStart, rng.StageEnd
	default:
		return nil, validationErr("stage_start and stage_end must be provided together")
	}
	if res := hierarchy.LevelRangeOverlaps(start, end, existing, ""); !res.OK {
		return nil, validationErr(res.Reason)
	}

	l := &models.Level{
		ID:                uuid.New().String(),
		CurriculumID:      curriculumID,
		Name:              name,
		Description:       validate.Normalize(req.Description),
		StageStart:        start,
		StageEnd:          end,
		Order:             order,
		DefaultIdentifier: prefix,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.repo.CreateLevel(ctx, l); err != nil {
		return nil, err
	}

	s.touch(ctx, curriculumID)
	s.notify(ctx, curriculumID, "created", "level", l.ID)
	return l, nil
}

// UpdateLevel applies partial changes, revalidating range and order against
// the level's siblings
func (s *Service) UpdateLevel(ctx context.Context, id string, req models.UpdateLevelRequest) (*models.Level, error) {
	l, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLevelNotFound
	}

	if req.Name != nil {
		name := validate.Normalize(*req.Name)
		if name == "" {
			return nil, validationErr("level name cannot be empty")
		}
		l.Name = name
	}
	if req.Description != nil {
		l.Description = validate.Normalize(*req.Description)
	}
	if req.DefaultIdentifier != nil {
		prefix := validate.Normalize(*req.DefaultIdentifier)
		if !validate.Identifier(prefix) {
			return nil, validationErr("default identifier has an invalid format")
		}
		l.DefaultIdentifier = prefix
	}
	if req.StageStart != nil {
		l.StageStart = *req.StageStart
	}
	if req.StageEnd != nil {
		l.StageEnd = *req.StageEnd
	}
	if req.Order != nil {
		l.Order = *req.Order
	}

	siblings, err := s.repo.ListLevels(ctx, l.CurriculumID)
	if err != nil {
		return nil, err
	}
	if res := hierarchy.LevelRangeOverlaps(l.StageStart, l.StageEnd, siblings, l.ID); !res.OK {
		return nil, validationErr(res.Reason)
	}
	if res := hierarchy.LevelOrderIsUnique(l.Order, siblings, l.ID); !res.OK {
		return nil, validationErr(res.Reason)
	}

	if err := s.repo.UpdateLevel(ctx, l); err != nil {
		return nil, err
	}

	s.touch(ctx, l.CurriculumID)
	s.notify(ctx, l.CurriculumID, "updated", "level", l.ID)
	return l, nil
}

// DeleteLevel removes a level. Projects keep their stage numbers; those
// stages simply become unassigned to any level.
func (s *Service) DeleteLevel(ctx context.Context, id string) error {
	l, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrLevelNotFound
	}

	if err := s.repo.DeleteLevel(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, l.CurriculumID)
	s.notify(ctx, l.CurriculumID, "deleted", "level", id)
	return nil
}

// ListLevels returns the curriculum's levels in display order
func (s *Service) ListLevels(ctx context.Context, curriculumID string) ([]*models.Level, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	levels, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	return progress.SortLevelsByOrder(levels), nil
}

// SuggestLevel returns the next free order and the stage range following the
// highest existing one
func (s *Service) SuggestLevel(ctx context.Context, curriculumID string) (*LevelSuggestion, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	levels, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	return &LevelSuggestion{
		Order:      hierarchy.NextAvailableLevelOrder(levels, ""),
		StageRange: hierarchy.NextAvailableStageRange(levels, defaultStageRangeSize),
	}, nil
}

// --- Stages ---

// CreateStage creates a stage definition, auto-filling the number when omitted
func (s *Service) CreateStage(ctx context.Context, curriculumID string, req models.CreateStageRequest) (*models.Stage, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	repo := validate.Normalize(req.DefaultGithubRepo)
	if !validate.RepoName(repo) {
		return nil, validationErr("default github repo has an invalid format")
	}

	existing, err := s.repo.ListStages(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	number := 0
	if req.StageNumber != nil {
		number = *req.StageNumber
	} else {
		number = hierarchy.NextAvailableStageNumber(existing)
	}
	if res := hierarchy.StageNumberIsUnique(number, existing, ""); !res.OK {
		return nil, validationErr(res.Reason)
	}

	st := &models.Stage{
		ID:                uuid.New().String(),
		CurriculumID:      curriculumID,
		StageNumber:       number,
		Name:              validate.Normalize(req.Name),
		Description:       validate.Normalize(req.Description),
		DefaultGithubRepo: repo,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.repo.CreateStage(ctx, st); err != nil {
		return nil, err
	}

	s.touch(ctx, curriculumID)
	s.notify(ctx, curriculumID, "created", "stage", st.ID)
	return st, nil
}

// UpdateStage applies partial changes, revalidating number uniqueness
func (s *Service) UpdateStage(ctx context.Context, id string, req models.UpdateStageRequest) (*models.Stage, error) {
	st, err := s.repo.GetStage(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrStageNotFound
	}

	if req.StageNumber != nil {
		st.StageNumber = *req.StageNumber
	}
	if req.Name != nil {
		st.Name = validate.Normalize(*req.Name)
	}
	if req.Description != nil {
		st.Description = validate.Normalize(*req.Description)
	}
	if req.DefaultGithubRepo != nil {
		repo := validate.Normalize(*req.DefaultGithubRepo)
		if !validate.RepoName(repo) {
			return nil, validationErr("default github repo has an invalid format")
		}
		st.DefaultGithubRepo = repo
	}

	siblings, err := s.repo.ListStages(ctx, st.CurriculumID)
	if err != nil {
		return nil, err
	}
	if res := hierarchy.StageNumberIsUnique(st.StageNumber, siblings, st.ID); !res.OK {
		return nil, validationErr(res.Reason)
	}

	if err := s.repo.UpdateStage(ctx, st); err != nil {
		return nil, err
	}

	s.touch(ctx, st.CurriculumID)
	s.notify(ctx, st.CurriculumID, "updated", "stage", st.ID)
	return st, nil
}

// DeleteStage removes a stage definition. Projects referencing the number
// keep it; only the definition (name, default repo) goes away.
func (s *Service) DeleteStage(ctx context.Context, id string) error {
	st, err := s.repo.GetStage(ctx, id)
	if err != nil {
		return err
	}
	if st == nil {
		return ErrStageNotFound
	}

	if err := s.repo.DeleteStage(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, st.CurriculumID)
	s.notify(ctx, st.CurriculumID, "deleted", "stage", id)
	return nil
}

// ListStages returns the curriculum's stage definitions ordered by number
func (s *Service) ListStages(ctx context.Context, curriculumID string) ([]*models.Stage, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	stages, err := s.repo.ListStages(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	sort.Slice(stages, func(i, j int) bool { return stages[i].StageNumber < stages[j].StageNumber })
	return stages, nil
}

// SuggestStageNumber returns the smallest unused stage number
func (s *Service) SuggestStageNumber(ctx context.Context, curriculumID string) (int, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, ErrCurriculumNotFound
	}

	stages, err := s.repo.ListStages(ctx, curriculumID)
	if err != nil {
		return 0, err
	}

	return hierarchy.NextAvailableStageNumber(stages), nil
}

// --- Projects ---

func (s *Service) validateProjectFields(identifier, githubRepo string) error {
	if !validate.Identifier(identifier) {
		return validationErr("identifier has an invalid format")
	}
	if !validate.RepoName(githubRepo) {
		return validationErr("github repo has an invalid format")
	}
	return nil
}

// CreateProject creates a project in a stage of a curriculum
func (s *Service) CreateProject(ctx context.Context, curriculumID string, req models.CreateProjectRequest) (*models.Project, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	name := validate.Normalize(req.Name)
	if name == "" {
		return nil, validationErr("project name is required")
	}
	if req.Stage < 1 {
		return nil, validationErr("stage must be a positive integer")
	}

	identifier := validate.Normalize(req.Identifier)
	githubRepo := validate.Normalize(req.GithubRepo)
	if err := s.validateProjectFields(identifier, githubRepo); err != nil {
		return nil, err
	}

	siblings, err := s.repo.ListProjects(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	if req.Order != nil {
		if res := hierarchy.ProjectOrderIsUnique(*req.Order, req.Stage, siblings, ""); !res.OK {
			return nil, validationErr(res.Reason)
		}
	}

	if err := s.checkPrerequisiteEdges(req.Prerequisites, "", siblings); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Project{
		ID:            uuid.New().String(),
		CurriculumID:  curriculumID,
		Stage:         req.Stage,
		Name:          name,
		Description:   validate.Normalize(req.Description),
		Identifier:    identifier,
		Topics:        normalizeTopics(req.Topics),
		GithubRepo:    githubRepo,
		State:         models.StateNotStarted,
		Order:         req.Order,
		Prerequisites: req.Prerequisites,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	s.touch(ctx, curriculumID)
	s.notify(ctx, curriculumID, "created", "project", p.ID)
	return p, nil
}

// GetProject loads a project with its resources and notes
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	if p.Resources, err = s.repo.ListProjectResources(ctx, id); err != nil {
		return nil, err
	}
	if p.Notes, err = s.repo.ListNotes(ctx, id); err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateProject applies partial changes, revalidating order uniqueness in
// the project's (possibly new) stage
func (s *Service) UpdateProject(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	if req.Stage != nil {
		if *req.Stage < 1 {
			return nil, validationErr("stage must be a positive integer")
		}
		p.Stage = *req.Stage
	}
	if req.Name != nil {
		name := validate.Normalize(*req.Name)
		if name == "" {
			return nil, validationErr("project name cannot be empty")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = validate.Normalize(*req.Description)
	}
	if req.Identifier != nil {
		p.Identifier = validate.Normalize(*req.Identifier)
	}
	if req.Topics != nil {
		p.Topics = normalizeTopics(*req.Topics)
	}
	if req.GithubRepo != nil {
		p.GithubRepo = validate.Normalize(*req.GithubRepo)
	}
	if req.State != nil {
		if !req.State.Valid() {
			return nil, validationErr(fmt.Sprintf("unknown project state %q", *req.State))
		}
		p.State = *req.State
	}
	if req.Order != nil {
		p.Order = req.Order
	}

	if err := s.validateProjectFields(p.Identifier, p.GithubRepo); err != nil {
		return nil, err
	}

	if p.Order != nil {
		siblings, err := s.repo.ListProjects(ctx, p.CurriculumID)
		if err != nil {
			return nil, err
		}
		if res := hierarchy.ProjectOrderIsUnique(*p.Order, p.Stage, siblings, p.ID); !res.OK {
			return nil, validationErr(res.Reason)
		}
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	s.touch(ctx, p.CurriculumID)
	s.notify(ctx, p.CurriculumID, "updated", "project", p.ID)
	return p, nil
}

// DeleteProject removes a project and the prerequisite edges that point at it
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProjectNotFound
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, p.CurriculumID)
	s.notify(ctx, p.CurriculumID, "deleted", "project", id)
	return nil
}

// SetProjectState changes state directly or via the cyclic toggle. There is
// no transition guard: completing a project with unfinished prerequisites is
// allowed.
func (s *Service) SetProjectState(ctx context.Context, id string, req models.StateRequest) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	switch {
	case req.Toggle:
		p.State = p.State.Next()
	case req.State != "":
		if !req.State.Valid() {
			return nil, validationErr(fmt.Sprintf("unknown project state %q", req.State))
		}
		p.State = req.State
	default:
		return nil, validationErr("either state or toggle must be provided")
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	s.touch(ctx, p.CurriculumID)
	s.notify(ctx, p.CurriculumID, "updated", "project", p.ID)
	return p, nil
}

// ListProjects returns the curriculum's projects, filtered and in display
// order
func (s *Service) ListProjects(ctx context.Context, curriculumID string, filters models.ProjectFilters) ([]*models.Project, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	projects, err := s.repo.ListProjects(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	stages, err := s.repo.ListStages(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	filtered := progress.Apply(projects, levels, stages, filters)
	return progress.SortProjectsByStageThenOrder(filtered), nil
}

// SuggestProject returns the next free order for the stage and, when the
// stage belongs to a level with an identifier prefix, a derived identifier
// suggestion. The identifier is count-based and intentionally not guaranteed
// unique.
func (s *Service) SuggestProject(ctx context.Context, curriculumID string, stage int) (*ProjectSuggestion, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}
	if stage < 1 {
		return nil, validationErr("stage must be a positive integer")
	}

	projects, err := s.repo.ListProjects(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	suggestion := &ProjectSuggestion{
		Order:      hierarchy.NextAvailableProjectOrder(projects, stage, ""),
		UsedOrders: hierarchy.UsedProjectOrders(projects, stage, ""),
	}

	if lvl := hierarchy.LevelForStage(levels, stage); lvl != nil {
		suggestion.LevelName = lvl.Name
		suggestion.Identifier = hierarchy.SuggestIdentifier(lvl, projects, "")
	}

	return suggestion, nil
}

// GetPrerequisites returns the project's current edges, their completion
// roll-up, and the selectable candidates grouped by stage
func (s *Service) GetPrerequisites(ctx context.Context, projectID string) (*PrerequisiteView, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	projects, err := s.repo.ListProjects(ctx, p.CurriculumID)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.ListLevels(ctx, p.CurriculumID)
	if err != nil {
		return nil, err
	}

	return &PrerequisiteView{
		Current:    p.Prerequisites,
		Summary:    prereq.CompletionSummary(p.Prerequisites, projects),
		Candidates: prereq.Candidates(projects, levels, projectID),
	}, nil
}

// SetPrerequisites replaces the project's edge set. A no-op set (same
// membership) returns without touching storage.
func (s *Service) SetPrerequisites(ctx context.Context, projectID string, prereqIDs []string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	// Edge sets have set semantics: drop duplicates so the returned entity
	// matches what storage keeps
	var deduped []string
	seen := make(map[string]bool, len(prereqIDs))
	for _, id := range prereqIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}

	if !prereq.SelectionDiffers(p.Prerequisites, deduped) {
		return p, nil
	}

	siblings, err := s.repo.ListProjects(ctx, p.CurriculumID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPrerequisiteEdges(deduped, projectID, siblings); err != nil {
		return nil, err
	}

	if err := s.repo.SetPrerequisites(ctx, projectID, deduped); err != nil {
		return nil, err
	}
	p.Prerequisites = deduped

	s.touch(ctx, p.CurriculumID)
	s.notify(ctx, p.CurriculumID, "updated", "project", projectID)
	return p, nil
}

// checkPrerequisiteEdges rejects self-references and edges leaving the
// curriculum
func (s *Service) checkPrerequisiteEdges(prereqIDs []string, selfID string, siblings []*models.Project) error {
	byID := make(map[string]bool, len(siblings))
	for _, p := range siblings {
		byID[p.ID] = true
	}

	for _, id := range prereqIDs {
		if id == selfID && selfID != "" {
			return validationErr("a project cannot be its own prerequisite")
		}
		if !byID[id] {
			return validationErr(fmt.Sprintf("prerequisite %s is not a project of this curriculum", id))
		}
	}
	return nil
}

// --- Resources ---

func (s *Service) buildResource(req models.CreateResourceRequest) (*models.Resource, error) {
	name := validate.Normalize(req.Name)
	if name == "" {
		return nil, validationErr("resource name is required")
	}
	if !req.Type.Valid() {
		return nil, validationErr(fmt.Sprintf("unknown resource type %q", req.Type))
	}
	link := validate.Normalize(req.Link)
	if !validate.URL(link) {
		return nil, validationErr("resource link is not a well-formed URL")
	}

	return &models.Resource{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      req.Type,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// AddCurriculumResource attaches a resource to a curriculum
func (s *Service) AddCurriculumResource(ctx context.Context, curriculumID string, req models.CreateResourceRequest) (*models.Resource, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	res, err := s.buildResource(req)
	if err != nil {
		return nil, err
	}
	res.CurriculumID = curriculumID

	if err := s.repo.CreateResource(ctx, res); err != nil {
		return nil, err
	}

	s.notify(ctx, curriculumID, "created", "resource", res.ID)
	return res, nil
}

// AddProjectResource attaches a resource to a project
func (s *Service) AddProjectResource(ctx context.Context, projectID string, req models.CreateResourceRequest) (*models.Resource, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	res, err := s.buildResource(req)
	if err != nil {
		return nil, err
	}
	res.ProjectID = projectID

	if err := s.repo.CreateResource(ctx, res); err != nil {
		return nil, err
	}

	s.notify(ctx, p.CurriculumID, "created", "resource", res.ID)
	return res, nil
}

// DeleteResource removes a resource by ID
func (s *Service) DeleteResource(ctx context.Context, id string) error {
	res, err := s.repo.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrResourceNotFound
	}

	if err := s.repo.DeleteResource(ctx, id); err != nil {
		return err
	}

	curriculumID := res.CurriculumID
	if curriculumID == "" {
		if p, err := s.repo.GetProject(ctx, res.ProjectID); err == nil && p != nil {
			curriculumID = p.CurriculumID
		}
	}
	if curriculumID != "" {
		s.notify(ctx, curriculumID, "deleted", "resource", id)
	}
	return nil
}

// --- Notes ---

// AddNote attaches a note to a project
func (s *Service) AddNote(ctx context.Context, projectID string, req models.CreateNoteRequest) (*models.Note, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	if !req.Type.Valid() {
		return nil, validationErr(fmt.Sprintf("unknown note type %q", req.Type))
	}
	content := validate.Normalize(req.Content)
	if content == "" {
		return nil, validationErr("note content is required")
	}
	if len(content) > maxNoteContentLen {
		return nil, validationErr(fmt.Sprintf("note content exceeds %d characters", maxNoteContentLen))
	}

	n := &models.Note{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Type:      req.Type,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}

	s.notify(ctx, p.CurriculumID, "created", "note", n.ID)
	return n, nil
}

// DeleteNote removes a note by ID
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	n, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNoteNotFound
	}

	if err := s.repo.DeleteNote(ctx, id); err != nil {
		return err
	}

	if p, err := s.repo.GetProject(ctx, n.ProjectID); err == nil && p != nil {
		s.notify(ctx, p.CurriculumID, "deleted", "note", id)
	}
	return nil
}

// ListNotes returns a project's notes, newest first
func (s *Service) ListNotes(ctx context.Context, projectID string) ([]*models.Note, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	return s.repo.ListNotes(ctx, projectID)
}

// --- Derived views ---

// GetProgress returns the curriculum's completion snapshot, served from the
// cache when a fresh one exists
func (s *Service) GetProgress(ctx context.Context, curriculumID string) (*Progress, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProgress(ctx, curriculumID); err != nil {
			slog.Warn("progress cache read failed", "curriculum_id", curriculumID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	projects, err := s.repo.ListProjects(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.ListLevels(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		CurriculumID: curriculumID,
		Stats:        progress.ProjectStats(projects),
		ByLevel:      progress.StatsByLevel(projects, levels),
		ComputedAt:   time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.SetProgress(ctx, curriculumID, p); err != nil {
			slog.Warn("progress cache write failed", "curriculum_id", curriculumID, "error", err)
		}
	}

	return p, nil
}

// NextUp returns the first count incomplete projects in display order
func (s *Service) NextUp(ctx context.Context, curriculumID string, count int) ([]*models.Project, error) {
	c, err := s.repo.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCurriculumNotFound
	}

	projects, err := s.repo.ListProjects(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	return progress.NextIncompleteProjects(projects, count), nil
}

func normalizeTopics(topics []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range topics {
		trimmed := validate.Normalize(t)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}
