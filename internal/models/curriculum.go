package models

import (
	"time"
)

// Curriculum is the root entity: a self-directed learning track owning
// levels, stage definitions, projects and curriculum-wide resources.
type Curriculum struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Levels      []*Level    `json:"levels,omitempty"`
	Stages      []*Stage    `json:"stages,omitempty"`
	Projects    []*Project  `json:"projects,omitempty"`
	Resources   []*Resource `json:"resources,omitempty"`
}

// Level is a coarse phase of a curriculum covering an inclusive range of
// stage numbers. Ranges of sibling levels never overlap; order values are
// unique within the curriculum and drive display sequencing only.
type Level struct {
	ID                string    `json:"id"`
	CurriculumID      string    `json:"curriculum_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	StageStart        int       `json:"stage_start"`
	StageEnd          int       `json:"stage_end"`
	Order             int       `json:"order"`
	DefaultIdentifier string    `json:"default_identifier,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Contains reports whether the given stage number falls inside the level's
// inclusive range.
func (l *Level) Contains(stage int) bool {
	return stage >= l.StageStart && stage <= l.StageEnd
}

// Stage is an optional definition attached to a stage number. Projects
// reference stage numbers directly; a number may be used without a matching
// definition.
type Stage struct {
	ID                string    `json:"id"`
	CurriculumID      string    `json:"curriculum_id"`
	StageNumber       int       `json:"stage_number"`
	Name              string    `json:"name,omitempty"`
	Description       string    `json:"description,omitempty"`
	DefaultGithubRepo string    `json:"default_github_repo,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Project is a single checkpoint piece of work within a curriculum. Order is
// optional and, when set, unique among projects sharing the same stage
// number. Prerequisites reference other projects of the same curriculum.
type Project struct {
	ID            string       `json:"id"`
	CurriculumID  string       `json:"curriculum_id"`
	Stage         int          `json:"stage"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Identifier    string       `json:"identifier,omitempty"`
	Topics        []string     `json:"topics,omitempty"`
	GithubRepo    string       `json:"github_repo,omitempty"`
	State         ProjectState `json:"state"`
	Order         *int         `json:"order,omitempty"`
	Prerequisites []string     `json:"prerequisites,omitempty"`
	Resources     []*Resource  `json:"resources,omitempty"`
	Notes         []*Note      `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Resource is a typed link owned by exactly one curriculum or one project,
// never both.
type Resource struct {
	ID           string       `json:"id"`
	CurriculumID string       `json:"curriculum_id,omitempty"`
	ProjectID    string       `json:"project_id,omitempty"`
	Name         string       `json:"name"`
	Type         ResourceType `json:"type"`
	Link         string       `json:"link"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Note is a freeform annotation on a project, displayed newest first.
type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Type      NoteType  `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RepoFilter selects projects by presence of a linked repository
type RepoFilter string

const (
	RepoAny     RepoFilter = ""
	RepoWith    RepoFilter = "with"
	RepoWithout RepoFilter = "without"
)

// ProjectFilters defines the composable filters for listing projects.
// Zero values mean "no filter" for that dimension.
type ProjectFilters struct {
	Stage   *int
	LevelID string
	Topic   string
	State   ProjectState
	Repo    RepoFilter
	Query   string
}

// CreateCurriculumRequest is the payload for creating a curriculum
type CreateCurriculumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateCurriculumRequest is the payload for updating curriculum fields
type UpdateCurriculumRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateLevelRequest is the payload for creating a level. Order, StageStart
// and StageEnd may be omitted; the engine suggests the next available slot.
type CreateLevelRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	StageStart        *int   `json:"stage_start,omitempty"`
	StageEnd          *int   `json:"stage_end,omitempty"`
	Order             *int   `json:"order,omitempty"`
	DefaultIdentifier string `json:"default_identifier,omitempty"`
}

// UpdateLevelRequest is the payload for partial level updates
type UpdateLevelRequest struct {
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	StageStart        *int    `json:"stage_start,omitempty"`
	StageEnd          *int    `json:"stage_end,omitempty"`
	Order             *int    `json:"order,omitempty"`
	DefaultIdentifier *string `json:"default_identifier,omitempty"`
}

// CreateStageRequest is the payload for creating a stage definition
type CreateStageRequest struct {
	StageNumber       *int   `json:"stage_number,omitempty"`
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	DefaultGithubRepo string `json:"default_github_repo,omitempty"`
}

// UpdateStageRequest is the payload for partial stage updates
type UpdateStageRequest struct {
	StageNumber       *int    `json:"stage_number,omitempty"`
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	DefaultGithubRepo *string `json:"default_github_repo,omitempty"`
}

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Stage         int      `json:"stage"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Identifier    string   `json:"identifier,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	GithubRepo    string   `json:"github_repo,omitempty"`
	Order         *int     `json:"order,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// UpdateProjectRequest is the payload for partial project updates
type UpdateProjectRequest struct {
	Stage       *int          `json:"stage,omitempty"`
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Identifier  *string       `json:"identifier,omitempty"`
	Topics      *[]string     `json:"topics,omitempty"`
	GithubRepo  *string       `json:"github_repo,omitempty"`
	State       *ProjectState `json:"state,omitempty"`
	Order       *int          `json:"order,omitempty"`
}

// StateRequest changes a project's state either directly or via the cyclic
// toggle. Both entry points are supported; there is no transition guard.
type StateRequest struct {
	State  ProjectState `json:"state,omitempty"`
	Toggle bool         `json:"toggle,omitempty"`
}

// CreateResourceRequest is the payload for creating a resource
type CreateResourceRequest struct {
	Name string       `json:"name"`
	Type ResourceType `json:"type"`
	Link string       `json:"link"`
}

// CreateNoteRequest is the payload for creating a note
type CreateNoteRequest struct {
	Type    NoteType `json:"type"`
	Content string   `json:"content"`
}

// SetPrerequisitesRequest replaces a project's prerequisite edge set
type SetPrerequisitesRequest struct {
	Prerequisites []string `json:"prerequisites"`
}
