// Package seed loads starter-curriculum blueprints from YAML files and
// instantiates them as real curricula through the service layer.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/models"
)

// Blueprint is a parsed starter curriculum. Projects reference each other by
// identifier within the file; Instantiate resolves those to real IDs.
type Blueprint struct {
	Slug        string              `json:"slug"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Levels      []BlueprintLevel    `json:"levels,omitempty"`
	Stages      []BlueprintStage    `json:"stages,omitempty"`
	Projects    []BlueprintProject  `json:"projects,omitempty"`
	Resources   []BlueprintResource `json:"resources,omitempty"`
}

// BlueprintLevel mirrors a level definition inside a blueprint
type BlueprintLevel struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	StageStart        int    `json:"stage_start"`
	StageEnd          int    `json:"stage_end"`
	Order             int    `json:"order"`
	DefaultIdentifier string `json:"default_identifier,omitempty"`
}

// BlueprintStage mirrors a stage definition inside a blueprint
type BlueprintStage struct {
	Number            int    `json:"number"`
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	DefaultGithubRepo string `json:"default_github_repo,omitempty"`
}

// BlueprintProject mirrors a project inside a blueprint. Prerequisites name
// the identifiers of other projects in the same file.
type BlueprintProject struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Stage         int      `json:"stage"`
	Order         *int     `json:"order,omitempty"`
	Identifier    string   `json:"identifier,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	GithubRepo    string   `json:"github_repo,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// BlueprintResource mirrors a curriculum-wide resource inside a blueprint
type BlueprintResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Link string `json:"link"`
}

// Loader manages loading and caching of blueprints
type Loader struct {
	mu         sync.RWMutex
	blueprints map[string]*Blueprint
}

// NewLoader creates a new blueprint loader
func NewLoader() *Loader {
	return &Loader{blueprints: make(map[string]*Blueprint)}
}

// LoadFromDir loads all YAML blueprints from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading seed blueprints from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load blueprint", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("seed blueprints loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single blueprint from a YAML file. The slug is the
// filename without extension.
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var bf blueprintFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if bf.Name == "" {
		return fmt.Errorf("blueprint name is required")
	}

	base := filepath.Base(path)
	slug := base[:len(base)-len(filepath.Ext(base))]

	bp := &Blueprint{
		Slug:        slug,
		Name:        bf.Name,
		Description: bf.Description,
	}
	for _, lv := range bf.Levels {
		bp.Levels = append(bp.Levels, BlueprintLevel(lv))
	}
	for _, st := range bf.Stages {
		bp.Stages = append(bp.Stages, BlueprintStage(st))
	}
	for _, p := range bf.Projects {
		bp.Projects = append(bp.Projects, BlueprintProject{
			Name:          p.Name,
			Description:   p.Description,
			Stage:         p.Stage,
			Order:         p.Order,
			Identifier:    p.Identifier,
			Topics:        p.Topics,
			GithubRepo:    p.GithubRepo,
			Prerequisites: p.Prerequisites,
		})
	}
	for _, r := range bf.Resources {
		bp.Resources = append(bp.Resources, BlueprintResource(r))
	}

	l.mu.Lock()
	l.blueprints[slug] = bp
	l.mu.Unlock()

	slog.Info("blueprint loaded", "slug", slug, "name", bp.Name, "projects", len(bp.Projects))
	return nil
}

// Get retrieves a blueprint by slug
func (l *Loader) Get(slug string) *Blueprint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blueprints[slug]
}

// List returns all loaded blueprints sorted by slug
func (l *Loader) List() []*Blueprint {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Blueprint, 0, len(l.blueprints))
	for _, bp := range l.blueprints {
		result = append(result, bp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result
}

// Instantiate creates a real curriculum from a blueprint via the service
// layer, so every seeded entity passes the same validation as manual input.
func Instantiate(ctx context.Context, mgr curriculum.Manager, bp *Blueprint) (*models.Curriculum, error) {
	c, err := mgr.CreateCurriculum(ctx, models.CreateCurriculumRequest{
		Name:        bp.Name,
		Description: bp.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create curriculum: %w", err)
	}

	for _, lv := range bp.Levels {
		start, end, order := lv.StageStart, lv.StageEnd, lv.Order
		if _, err := mgr.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
			Name:              lv.Name,
			Description:       lv.Description,
			StageStart:        &start,
			StageEnd:          &end,
			Order:             &order,
			DefaultIdentifier: lv.DefaultIdentifier,
		}); err != nil {
			return nil, fmt.Errorf("failed to create level %q: %w", lv.Name, err)
		}
	}

	for _, st := range bp.Stages {
		number := st.Number
		if _, err := mgr.CreateStage(ctx, c.ID, models.CreateStageRequest{
			StageNumber:       &number,
			Name:              st.Name,
			Description:       st.Description,
			DefaultGithubRepo: st.DefaultGithubRepo,
		}); err != nil {
			return nil, fmt.Errorf("failed to create stage %d: %w", st.Number, err)
		}
	}

	// First pass: create all projects, recording IDs by blueprint identifier
	idByIdentifier := make(map[string]string)
	var createdIDs []string
	for _, p := range bp.Projects {
		created, err := mgr.CreateProject(ctx, c.ID, models.CreateProjectRequest{
			Stage:       p.Stage,
			Name:        p.Name,
			Description: p.Description,
			Identifier:  p.Identifier,
			Topics:      p.Topics,
			GithubRepo:  p.GithubRepo,
			Order:       p.Order,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create project %q: %w", p.Name, err)
		}
		if p.Identifier != "" {
			idByIdentifier[p.Identifier] = created.ID
		}
		createdIDs = append(createdIDs, created.ID)
	}

	// Second pass: resolve prerequisite identifiers to project IDs
	for i, p := range bp.Projects {
		if len(p.Prerequisites) == 0 {
			continue
		}
		var prereqIDs []string
		for _, ident := range p.Prerequisites {
			id, ok := idByIdentifier[ident]
			if !ok {
				return nil, fmt.Errorf("project %q references unknown prerequisite identifier %q", p.Name, ident)
			}
			prereqIDs = append(prereqIDs, id)
		}
		if _, err := mgr.SetPrerequisites(ctx, createdIDs[i], prereqIDs); err != nil {
			return nil, fmt.Errorf("failed to set prerequisites for %q: %w", p.Name, err)
		}
	}

	for _, r := range bp.Resources {
		if _, err := mgr.AddCurriculumResource(ctx, c.ID, models.CreateResourceRequest{
			Name: r.Name,
			Type: models.ResourceType(r.Type),
			Link: r.Link,
		}); err != nil {
			return nil, fmt.Errorf("failed to add resource %q: %w", r.Name, err)
		}
	}

	slog.Info("blueprint instantiated", "slug", bp.Slug, "curriculum_id", c.ID)
	return mgr.GetCurriculum(ctx, c.ID)
}

// --- YAML file structs ---

type blueprintFile struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Levels      []levelEntry    `yaml:"levels"`
	Stages      []stageEntry    `yaml:"stages"`
	Projects    []projectEntry  `yaml:"projects"`
	Resources   []resourceEntry `yaml:"resources"`
}

type levelEntry struct {
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	StageStart        int    `yaml:"stage_start"`
	StageEnd          int    `yaml:"stage_end"`
	Order             int    `yaml:"order"`
	DefaultIdentifier string `yaml:"default_identifier"`
}

type stageEntry struct {
	Number            int    `yaml:"number"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	DefaultGithubRepo string `yaml:"default_github_repo"`
}

type projectEntry struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Stage         int      `yaml:"stage"`
	Order         *int     `yaml:"order"`
	Identifier    string   `yaml:"identifier"`
	Topics        []string `yaml:"topics"`
	GithubRepo    string   `yaml:"github_repo"`
	Prerequisites []string `yaml:"prerequisites"`
}

type resourceEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Link string `yaml:"link"`
}
