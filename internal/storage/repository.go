package storage

import (
	"context"
	"time"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// Repository defines the interface for curriculum persistence
type Repository interface {
	// Curricula
	CreateCurriculum(ctx context.Context, c *models.Curriculum) error
	GetCurriculum(ctx context.Context, id string) (*models.Curriculum, error)
	UpdateCurriculum(ctx context.Context, c *models.Curriculum) error
	DeleteCurriculum(ctx context.Context, id string) error
	ListCurricula(ctx context.Context) ([]*models.Curriculum, error)
	ListCurriculaUpdatedSince(ctx context.Context, since time.Time) ([]string, error)

	// Levels
	CreateLevel(ctx context.Context, l *models.Level) error
	GetLevel(ctx context.Context, id string) (*models.Level, error)
	UpdateLevel(ctx context.Context, l *models.Level) error
	DeleteLevel(ctx context.Context, id string) error
	ListLevels(ctx context.Context, curriculumID string) ([]*models.Level, error)

	// Stages
	CreateStage(ctx context.Context, s *models.Stage) error
	GetStage(ctx context.Context, id string) (*models.Stage, error)
	UpdateStage(ctx context.Context, s *models.Stage) error
	DeleteStage(ctx context.Context, id string) error
	ListStages(ctx context.Context, curriculumID string) ([]*models.Stage, error)

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, curriculumID string) ([]*models.Project, error)
	SetPrerequisites(ctx context.Context, projectID string, prereqIDs []string) error
	PruneDanglingPrerequisites(ctx context.Context) (int64, error)

	// Resources
	CreateResource(ctx context.Context, r *models.Resource) error
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	ListCurriculumResources(ctx context.Context, curriculumID string) ([]*models.Resource, error)
	ListProjectResources(ctx context.Context, projectID string) ([]*models.Resource, error)

	// Notes
	CreateNote(ctx context.Context, n *models.Note) error
	GetNote(ctx context.Context, id string) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, projectID string) ([]*models.Note, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
