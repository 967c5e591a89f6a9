// Package client is a Go SDK for the curriculum-engine API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/models"
)

// Client is a Go SDK for the curriculum-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new curriculum-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListProjectsOptions contains the filter dimensions for listing projects.
// Zero values mean "no filter".
type ListProjectsOptions struct {
	Stage   *int
	LevelID string
	Topic   string
	State   string
	Repo    string
	Query   string
}

// envelope is the API's standard response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Curricula

// CreateCurriculum creates a new curriculum
func (c *Client) CreateCurriculum(ctx context.Context, req models.CreateCurriculumRequest) (*models.Curriculum, error) {
	var out models.Curriculum
	if err := c.call(ctx, "POST", "/api/v1/curricula", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurriculum retrieves a curriculum with all owned collections
func (c *Client) GetCurriculum(ctx context.Context, id string) (*models.Curriculum, error) {
	var out models.Curriculum
	if err := c.call(ctx, "GET", "/api/v1/curricula/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCurriculum applies partial changes to a curriculum
func (c *Client) UpdateCurriculum(ctx context.Context, id string, req models.UpdateCurriculumRequest) (*models.Curriculum, error) {
	var out models.Curriculum
	if err := c.call(ctx, "PUT", "/api/v1/curricula/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCurriculum removes a curriculum and everything it owns
func (c *Client) DeleteCurriculum(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/curricula/"+id, nil, nil)
}

// ListCurricula retrieves all curricula
func (c *Client) ListCurricula(ctx context.Context) ([]*models.Curriculum, error) {
	var out struct {
		Curricula []*models.Curriculum `json:"curricula"`
		Total     int                  `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/v1/curricula", nil, &out); err != nil {
		return nil, err
	}
	return out.Curricula, nil
}

// GetProgress retrieves the completion snapshot of a curriculum
func (c *Client) GetProgress(ctx context.Context, id string) (*curriculum.Progress, error) {
	var out curriculum.Progress
	if err := c.call(ctx, "GET", "/api/v1/curricula/"+id+"/progress", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextUp retrieves the first incomplete projects in display order
func (c *Client) NextUp(ctx context.Context, id string, count int) ([]*models.Project, error) {
	path := "/api/v1/curricula/" + id + "/next"
	if count > 0 {
		path += "?count=" + strconv.Itoa(count)
	}

	var out struct {
		Projects []*models.Project `json:"projects"`
		Total    int               `json:"total"`
	}
	if err := c.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// Levels

// CreateLevel creates a level within a curriculum
func (c *Client) CreateLevel(ctx context.Context, curriculumID string, req models.CreateLevelRequest) (*models.Level, error) {
	var out models.Level
	if err := c.call(ctx, "POST", "/api/v1/curricula/"+curriculumID+"/levels", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLevel applies partial changes to a level
func (c *Client) UpdateLevel(ctx context.Context, id string, req models.UpdateLevelRequest) (*models.Level, error) {
	var out models.Level
	if err := c.call(ctx, "PUT", "/api/v1/levels/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLevel removes a level
func (c *Client) DeleteLevel(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/levels/"+id, nil, nil)
}

// ListLevels retrieves a curriculum's levels in display order
func (c *Client) ListLevels(ctx context.Context, curriculumID string) ([]*models.Level, error) {
	var out struct {
		Levels []*models.Level `json:"levels"`
		Total  int             `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/v1/curricula/"+curriculumID+"/levels", nil, &out); err != nil {
		return nil, err
	}
	return out.Levels, nil
}

// SuggestLevel retrieves the next free order and stage range for a new level
func (c *Client) SuggestLevel(ctx context.Context, curriculumID string) (*curriculum.LevelSuggestion, error) {
	var out curriculum.LevelSuggestion
	if err := c.call(ctx, "GET", "/api/v1/curricula/"+curriculumID+"/levels/suggest", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stages

// CreateStage creates a stage definition within a curriculum
func (c *Client) CreateStage(ctx context.Context, curriculumID string, req models.CreateStageRequest) (*models.Stage, error) {
	var out models.Stage
	if err := c.call(ctx, "POST", "/api/v1/curricula/"+curriculumID+"/stages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStage applies partial changes to a stage definition
func (c *Client) UpdateStage(ctx context.Context, id string, req models.UpdateStageRequest) (*models.Stage, error) {
	var out models.Stage
	if err := c.call(ctx, "PUT", "/api/v1/stages/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStage removes a stage definition
func (c *Client) DeleteStage(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/stages/"+id, nil, nil)
}

// ListStages retrieves a curriculum's stage definitions ordered by number
func (c *Client) ListStages(ctx context.Context, curriculumID string) ([]*models.Stage, error) {
	var out struct {
		Stages []*models.Stage `json:"stages"`
		Total  int             `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/v1/curricula/"+curriculumID+"/stages", nil, &out); err != nil {
		return nil, err
	}
	return out.Stages, nil
}

// Projects

// CreateProject creates a project within a curriculum
func (c *Client) CreateProject(ctx context.Context, curriculumID string, req models.CreateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, "POST", "/api/v1/curricula/"+curriculumID+"/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject retrieves a project with its resources and notes
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, "GET", "/api/v1/projects/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies partial changes to a project
func (c *Client) UpdateProject(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, "PUT", "/api/v1/projects/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/projects/"+id, nil, nil)
}

// SetProjectState sets a project's state directly
func (c *Client) SetProjectState(ctx context.Context, id string, state models.ProjectState) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, "POST", "/api/v1/projects/"+id+"/state", models.StateRequest{State: state}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleProjectState advances a project's state through the cycle
// not_started -> in_progress -> completed -> not_started
func (c *Client) ToggleProjectState(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, "POST", "/api/v1/projects/"+id+"/state", models.StateRequest{Toggle: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects retrieves a curriculum's projects, filtered and in display
// order
func (c *Client) ListProjects(ctx context.Context, curriculumID string, opts ListProjectsOptions) ([]*models.Project, error) {
	q := url.Values{}
	if opts.Stage != nil {
		q.Set("stage", strconv.Itoa(*opts.Stage))
	}
	if opts.LevelID != "" {
		q.Set("level_id", opts.LevelID)
	}
	if opts.Topic != "" {
		q.Set("topic", opts.Topic)
	}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if opts.Repo != "" {
		q.Set("repo", opts.Repo)
	}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}

	path := "/api/v1/curricula/" + curriculumID + "/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Projects []*models.Project `json:"projects"`
		Total    int               `json:"total"`
	}
	if err := c.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// GetPrerequisites retrieves a project's prerequisite view
func (c *Client) GetPrerequisites(ctx context.Context, projectID string) (*curriculum.PrerequisiteView, error) {
	var out curriculum.PrerequisiteView
	if err := c.call(ctx, "GET", "/api/v1/projects/"+projectID+"/prerequisites", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPrerequisites replaces a project's prerequisite edge set
func (c *Client) SetPrerequisites(ctx context.Context, projectID string, prereqIDs []string) (*models.Project, error) {
	var out models.Project
	req := models.SetPrerequisitesRequest{Prerequisites: prereqIDs}
	if err := c.call(ctx, "PUT", "/api/v1/projects/"+projectID+"/prerequisites", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resources and notes

// AddCurriculumResource attaches a resource to a curriculum
func (c *Client) AddCurriculumResource(ctx context.Context, curriculumID string, req models.CreateResourceRequest) (*models.Resource, error) {
	var out models.Resource
	if err := c.call(ctx, "POST", "/api/v1/curricula/"+curriculumID+"/resources", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddProjectResource attaches a resource to a project
func (c *Client) AddProjectResource(ctx context.Context, projectID string, req models.CreateResourceRequest) (*models.Resource, error) {
	var out models.Resource
	if err := c.call(ctx, "POST", "/api/v1/projects/"+projectID+"/resources", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteResource removes a resource
func (c *Client) DeleteResource(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/resources/"+id, nil, nil)
}

// AddNote attaches a note to a project
func (c *Client) AddNote(ctx context.Context, projectID string, req models.CreateNoteRequest) (*models.Note, error) {
	var out models.Note
	if err := c.call(ctx, "POST", "/api/v1/projects/"+projectID+"/notes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote removes a note
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.call(ctx, "DELETE", "/api/v1/notes/"+id, nil, nil)
}

// ListNotes retrieves a project's notes, newest first
func (c *Client) ListNotes(ctx context.Context, projectID string) ([]*models.Note, error) {
	var out struct {
		Notes []*models.Note `json:"notes"`
		Total int            `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/v1/projects/"+projectID+"/notes", nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// InstantiateSeed creates a curriculum from a seed blueprint
func (c *Client) InstantiateSeed(ctx context.Context, slug string) (*models.Curriculum, error) {
	var out models.Curriculum
	if err := c.call(ctx, "POST", "/api/v1/seeds/"+slug+"/instantiate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// call performs a request, unwraps the response envelope and decodes data
// into out (which may be nil when no payload is expected)
func (c *Client) call(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("API error: %s - %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// Surface the envelope's error when the body is one
		var env envelope
		if err := json.Unmarshal(respBody, &env); err == nil && env.Error != nil {
			return nil, fmt.Errorf("API error: %s - %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
