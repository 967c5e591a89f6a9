package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	// Set pool configuration
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Curricula ---

// CreateCurriculum creates a new curriculum record
func (r *PostgresRepository) CreateCurriculum(ctx context.Context, c *models.Curriculum) error {
	query := `
		INSERT INTO curricula (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create curriculum: %w", err)
	}

	return nil
}

// GetCurriculum retrieves a curriculum header by ID (no child collections)
func (r *PostgresRepository) GetCurriculum(ctx context.Context, id string) (*models.Curriculum, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM curricula
		WHERE id = $1
	`

	var c models.Curriculum
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get curriculum: %w", err)
	}

	return &c, nil
}

// UpdateCurriculum updates curriculum name/description
func (r *PostgresRepository) UpdateCurriculum(ctx context.Context, c *models.Curriculum) error {
	query := `
		UPDATE curricula
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update curriculum: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("curriculum not found: %s", c.ID)
	}

	return nil
}

// DeleteCurriculum deletes a curriculum; owned entities cascade via FKs
func (r *PostgresRepository) DeleteCurriculum(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM curricula WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete curriculum: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("curriculum not found: %s", id)
	}

	return nil
}

// ListCurricula returns all curricula, newest first
func (r *PostgresRepository) ListCurricula(ctx context.Context) ([]*models.Curriculum, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM curricula
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list curricula: %w", err)
	}
	defer rows.Close()

	var curricula []*models.Curriculum
	for rows.Next() {
		var c models.Curriculum
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan curriculum: %w", err)
		}
		curricula = append(curricula, &c)
	}

	return curricula, rows.Err()
}

// ListCurriculaUpdatedSince returns IDs of curricula touched after the given time
func (r *PostgresRepository) ListCurriculaUpdatedSince(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM curricula WHERE updated_at > $1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list updated curricula: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan curriculum id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// --- Levels ---

// CreateLevel creates a new level record
func (r *PostgresRepository) CreateLevel(ctx context.Context, l *models.Level) error {
	query := `
		INSERT INTO levels (id, curriculum_id, name, description, stage_start, stage_end, level_order, default_identifier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.CurriculumID,
		l.Name,
		l.Description,
		l.StageStart,
		l.StageEnd,
		l.Order,
		nullString(l.DefaultIdentifier),
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create level: %w", err)
	}

	return nil
}

// GetLevel retrieves a level by ID
func (r *PostgresRepository) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	query := `
		SELECT id, curriculum_id, name, description, stage_start, stage_end, level_order, default_identifier, created_at
		FROM levels
		WHERE id = $1
	`

	l, err := scanLevel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get level: %w", err)
	}

	return l, nil
}

// UpdateLevel updates an existing level
func (r *PostgresRepository) UpdateLevel(ctx context.Context, l *models.Level) error {
	query := `
		UPDATE levels
		SET name = $2, description = $3, stage_start = $4, stage_end = $5, level_order = $6, default_identifier = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		l.ID,
		l.Name,
		l.Description,
		l.StageStart,
		l.StageEnd,
		l.Order,
		nullString(l.DefaultIdentifier),
	)
	if err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("level not found: %s", l.ID)
	}

	return nil
}

// DeleteLevel deletes a level by ID
func (r *PostgresRepository) DeleteLevel(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM levels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete level: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("level not found: %s", id)
	}

	return nil
}

// ListLevels returns all levels of a curriculum, by display order
func (r *PostgresRepository) ListLevels(ctx context.Context, curriculumID string) ([]*models.Level, error) {
	query := `
		SELECT id, curriculum_id, name, description, stage_start, stage_end, level_order, default_identifier, created_at
		FROM levels
		WHERE curriculum_id = $1
		ORDER BY level_order ASC
	`

	rows, err := r.pool.Query(ctx, query, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	defer rows.Close()

	var levels []*models.Level
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, l)
	}

	return levels, rows.Err()
}

func scanLevel(row pgx.Row) (*models.Level, error) {
	var l models.Level
	var defaultIdentifier sql.NullString

	err := row.Scan(
		&l.ID,
		&l.CurriculumID,
		&l.Name,
		&l.Description,
		&l.StageStart,
		&l.StageEnd,
		&l.Order,
		&defaultIdentifier,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.DefaultIdentifier = defaultIdentifier.String
	return &l, nil
}

// --- Stages ---

// CreateStage creates a new stage definition
func (r *PostgresRepository) CreateStage(ctx context.Context, s *models.Stage) error {
	query := `
		INSERT INTO stages (id, curriculum_id, stage_number, name, description, default_github_repo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.CurriculumID,
		s.StageNumber,
		s.Name,
		s.Description,
		nullString(s.DefaultGithubRepo),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stage: %w", err)
	}

	return nil
}

// GetStage retrieves a stage definition by ID
func (r *PostgresRepository) GetStage(ctx context.Context, id string) (*models.Stage, error) {
	query := `
		SELECT id, curriculum_id, stage_number, name, description, default_github_repo, created_at
		FROM stages
		WHERE id = $1
	`

	s, err := scanStage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	return s, nil
}

// UpdateStage updates an existing stage definition
func (r *PostgresRepository) UpdateStage(ctx context.Context, s *models.Stage) error {
	query := `
		UPDATE stages
		SET stage_number = $2, name = $3, description = $4, default_github_repo = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		s.ID,
		s.StageNumber,
		s.Name,
		s.Description,
		nullString(s.DefaultGithubRepo),
	)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("stage not found: %s", s.ID)
	}

	return nil
}

// DeleteStage deletes a stage definition by ID
func (r *PostgresRepository) DeleteStage(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("stage not found: %s", id)
	}

	return nil
}

// ListStages returns all stage definitions of a curriculum, by stage number
func (r *PostgresRepository) ListStages(ctx context.Context, curriculumID string) ([]*models.Stage, error) {
	query := `
		SELECT id, curriculum_id, stage_number, name, description, default_github_repo, created_at
		FROM stages
		WHERE curriculum_id = $1
		ORDER BY stage_number ASC
	`

	rows, err := r.pool.Query(ctx, query, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []*models.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, s)
	}

	return stages, rows.Err()
}

func scanStage(row pgx.Row) (*models.Stage, error) {
	var s models.Stage
	var defaultRepo sql.NullString

	err := row.Scan(
		&s.ID,
		&s.CurriculumID,
		&s.StageNumber,
		&s.Name,
		&s.Description,
		&defaultRepo,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.DefaultGithubRepo = defaultRepo.String
	return &s, nil
}

// --- Projects ---

// CreateProject creates a new project record
func (r *PostgresRepository) CreateProject(ctx context.Context, p *models.Project) error {
	topicsJSON, err := json.Marshal(topicsOrEmpty(p.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO projects (id, curriculum_id, stage, name, description, identifier, topics, github_repo, state, project_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.CurriculumID,
		p.Stage,
		p.Name,
		p.Description,
		nullString(p.Identifier),
		topicsJSON,
		nullString(p.GithubRepo),
		string(p.State),
		nullInt(p.Order),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if len(p.Prerequisites) > 0 {
		if err := r.SetPrerequisites(ctx, p.ID, p.Prerequisites); err != nil {
			return err
		}
	}

	return nil
}

// GetProject retrieves a project by ID, including its prerequisite edges
func (r *PostgresRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, curriculum_id, stage, name, description, identifier, topics, github_repo, state, project_order, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	prereqs, err := r.getPrerequisites(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Prerequisites = prereqs

	return p, nil
}

// UpdateProject updates an existing project (prerequisites are managed
// separately through SetPrerequisites)
func (r *PostgresRepository) UpdateProject(ctx context.Context, p *models.Project) error {
	topicsJSON, err := json.Marshal(topicsOrEmpty(p.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		UPDATE projects
		SET stage = $2, name = $3, description = $4, identifier = $5, topics = $6, github_repo = $7, state = $8, project_order = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Stage,
		p.Name,
		p.Description,
		nullString(p.Identifier),
		topicsJSON,
		nullString(p.GithubRepo),
		string(p.State),
		nullInt(p.Order),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project not found: %s", p.ID)
	}

	return nil
}

// DeleteProject deletes a project; edges referencing it cascade away
func (r *PostgresRepository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project not found: %s", id)
	}

	return nil
}

// ListProjects returns all projects of a curriculum with their prerequisite
// edges loaded in one pass
func (r *PostgresRepository) ListProjects(ctx context.Context, curriculumID string) ([]*models.Project, error) {
	query := `
		SELECT id, curriculum_id, stage, name, description, identifier, topics, github_repo, state, project_order, created_at, updated_at
		FROM projects
		WHERE curriculum_id = $1
		ORDER BY stage ASC, project_order ASC NULLS LAST, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	byID := make(map[string]*models.Project)

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	if len(projects) == 0 {
		return projects, nil
	}

	edgeQuery := `
		SELECT pp.project_id, pp.prerequisite_id
		FROM project_prerequisites pp
		JOIN projects p ON p.id = pp.project_id
		WHERE p.curriculum_id = $1
	`

	edgeRows, err := r.pool.Query(ctx, edgeQuery, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prerequisites: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var projectID, prereqID string
		if err := edgeRows.Scan(&projectID, &prereqID); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite edge: %w", err)
		}
		if p, found := byID[projectID]; found {
			p.Prerequisites = append(p.Prerequisites, prereqID)
		}
	}

	return projects, edgeRows.Err()
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var identifier, githubRepo sql.NullString
	var order sql.NullInt64
	var stateStr string
	var topicsJSON []byte

	err := row.Scan(
		&p.ID,
		&p.CurriculumID,
		&p.Stage,
		&p.Name,
		&p.Description,
		&identifier,
		&topicsJSON,
		&githubRepo,
		&stateStr,
		&order,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Identifier = identifier.String
	p.GithubRepo = githubRepo.String
	p.State = models.ProjectState(stateStr)

	if order.Valid {
		n := int(order.Int64)
		p.Order = &n
	}

	if topicsJSON != nil {
		if err := json.Unmarshal(topicsJSON, &p.Topics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
		}
	}

	return &p, nil
}

func (r *PostgresRepository) getPrerequisites(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT prerequisite_id FROM project_prerequisites WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prerequisites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SetPrerequisites replaces a project's prerequisite edge set atomically
func (r *PostgresRepository) SetPrerequisites(ctx context.Context, projectID string, prereqIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM project_prerequisites WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear prerequisites: %w", err)
	}

	for _, prereqID := range prereqIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO project_prerequisites (project_id, prerequisite_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			projectID, prereqID)
		if err != nil {
			return fmt.Errorf("failed to insert prerequisite %s: %w", prereqID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit prerequisites: %w", err)
	}

	return nil
}

// PruneDanglingPrerequisites removes edges whose prerequisite project no
// longer exists. FK cascades make this a safety net, not a primary path.
func (r *PostgresRepository) PruneDanglingPrerequisites(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM project_prerequisites pp
		WHERE NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = pp.prerequisite_id)
		   OR NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = pp.project_id)
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prune prerequisites: %w", err)
	}

	return result.RowsAffected(), nil
}

// --- Resources ---

// CreateResource creates a resource owned by a curriculum or a project
func (r *PostgresRepository) CreateResource(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resources (id, curriculum_id, project_id, name, type, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		res.ID,
		nullString(res.CurriculumID),
		nullString(res.ProjectID),
		res.Name,
		string(res.Type),
		res.Link,
		res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

// GetResource retrieves a resource by ID
func (r *PostgresRepository) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	query := `
		SELECT id, curriculum_id, project_id, name, type, link, created_at
		FROM resources
		WHERE id = $1
	`

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return res, nil
}

// DeleteResource deletes a resource by ID
func (r *PostgresRepository) DeleteResource(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resource not found: %s", id)
	}

	return nil
}

// ListCurriculumResources returns curriculum-level resources
func (r *PostgresRepository) ListCurriculumResources(ctx context.Context, curriculumID string) ([]*models.Resource, error) {
	return r.listResources(ctx, "curriculum_id", curriculumID)
}

// ListProjectResources returns project-level resources
func (r *PostgresRepository) ListProjectResources(ctx context.Context, projectID string) ([]*models.Resource, error) {
	return r.listResources(ctx, "project_id", projectID)
}

func (r *PostgresRepository) listResources(ctx context.Context, field, value string) ([]*models.Resource, error) {
	query := fmt.Sprintf(`
		SELECT id, curriculum_id, project_id, name, type, link, created_at
		FROM resources
		WHERE %s = $1
		ORDER BY created_at ASC
	`, field)

	rows, err := r.pool.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}

	return resources, rows.Err()
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	var curriculumID, projectID sql.NullString
	var typeStr string

	err := row.Scan(
		&res.ID,
		&curriculumID,
		&projectID,
		&res.Name,
		&typeStr,
		&res.Link,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.CurriculumID = curriculumID.String
	res.ProjectID = projectID.String
	res.Type = models.ResourceType(typeStr)
	return &res, nil
}

// --- Notes ---

// CreateNote creates a new note on a project
func (r *PostgresRepository) CreateNote(ctx context.Context, n *models.Note) error {
	query := `
		INSERT INTO notes (id, project_id, type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, n.ID, n.ProjectID, string(n.Type), n.Content, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetNote retrieves a note by ID
func (r *PostgresRepository) GetNote(ctx context.Context, id string) (*models.Note, error) {
	query := `
		SELECT id, project_id, type, content, created_at
		FROM notes
		WHERE id = $1
	`

	var n models.Note
	var typeStr string

	err := r.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.ProjectID, &typeStr, &n.Content, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	n.Type = models.NoteType(typeStr)
	return &n, nil
}

// DeleteNote deletes a note by ID
func (r *PostgresRepository) DeleteNote(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note not found: %s", id)
	}

	return nil
}

// ListNotes returns a project's notes, newest first
func (r *PostgresRepository) ListNotes(ctx context.Context, projectID string) ([]*models.Note, error) {
	query := `
		SELECT id, project_id, type, content, created_at
		FROM notes
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		var n models.Note
		var typeStr string
		if err := rows.Scan(&n.ID, &n.ProjectID, &typeStr, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Type = models.NoteType(typeStr)
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

// --- API Clients ---

// GetClientByApiKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func topicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}
