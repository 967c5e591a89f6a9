package curriculum

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// fakeRepo is an in-memory storage.Repository for service tests
type fakeRepo struct {
	curricula map[string]*models.Curriculum
	levels    map[string]*models.Level
	stages    map[string]*models.Stage
	projects  map[string]*models.Project
	resources map[string]*models.Resource
	notes     map[string]*models.Note
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		curricula: make(map[string]*models.Curriculum),
		levels:    make(map[string]*models.Level),
		stages:    make(map[string]*models.Stage),
		projects:  make(map[string]*models.Project),
		resources: make(map[string]*models.Resource),
		notes:     make(map[string]*models.Note),
	}
}

func (f *fakeRepo) CreateCurriculum(_ context.Context, c *models.Curriculum) error {
	cp := *c
	f.curricula[c.ID] = &cp
	return nil
}

func (f *fakeRepo) GetCurriculum(_ context.Context, id string) (*models.Curriculum, error) {
	c, ok := f.curricula[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) UpdateCurriculum(_ context.Context, c *models.Curriculum) error {
	cp := *c
	f.curricula[c.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteCurriculum(_ context.Context, id string) error {
	delete(f.curricula, id)
	return nil
}

func (f *fakeRepo) ListCurricula(_ context.Context) ([]*models.Curriculum, error) {
	var out []*models.Curriculum
	for _, c := range f.curricula {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) ListCurriculaUpdatedSince(_ context.Context, since time.Time) ([]string, error) {
	var out []string
	for _, c := range f.curricula {
		if c.UpdatedAt.After(since) {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateLevel(_ context.Context, l *models.Level) error {
	cp := *l
	f.levels[l.ID] = &cp
	return nil
}

func (f *fakeRepo) GetLevel(_ context.Context, id string) (*models.Level, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeRepo) UpdateLevel(_ context.Context, l *models.Level) error {
	cp := *l
	f.levels[l.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteLevel(_ context.Context, id string) error {
	delete(f.levels, id)
	return nil
}

func (f *fakeRepo) ListLevels(_ context.Context, curriculumID string) ([]*models.Level, error) {
	var out []*models.Level
	for _, l := range f.levels {
		if l.CurriculumID == curriculumID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateStage(_ context.Context, s *models.Stage) error {
	cp := *s
	f.stages[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetStage(_ context.Context, id string) (*models.Stage, error) {
	s, ok := f.stages[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) UpdateStage(_ context.Context, s *models.Stage) error {
	cp := *s
	f.stages[s.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteStage(_ context.Context, id string) error {
	delete(f.stages, id)
	return nil
}

func (f *fakeRepo) ListStages(_ context.Context, curriculumID string) ([]*models.Stage, error) {
	var out []*models.Stage
	for _, s := range f.stages {
		if s.CurriculumID == curriculumID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateProject(_ context.Context, p *models.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) UpdateProject(_ context.Context, p *models.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteProject(_ context.Context, id string) error {
	delete(f.projects, id)
	for _, p := range f.projects {
		var kept []string
		for _, pid := range p.Prerequisites {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		p.Prerequisites = kept
	}
	return nil
}

func (f *fakeRepo) ListProjects(_ context.Context, curriculumID string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range f.projects {
		if p.CurriculumID == curriculumID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetPrerequisites(_ context.Context, projectID string, prereqIDs []string) error {
	p, ok := f.projects[projectID]
	if !ok {
		return errors.New("no such project")
	}
	p.Prerequisites = prereqIDs
	return nil
}

func (f *fakeRepo) PruneDanglingPrerequisites(_ context.Context) (int64, error) {
	var pruned int64
	for _, p := range f.projects {
		var kept []string
		for _, pid := range p.Prerequisites {
			if _, ok := f.projects[pid]; ok {
				kept = append(kept, pid)
			} else {
				pruned++
			}
		}
		p.Prerequisites = kept
	}
	return pruned, nil
}

func (f *fakeRepo) CreateResource(_ context.Context, r *models.Resource) error {
	cp := *r
	f.resources[r.ID] = &cp
	return nil
}

func (f *fakeRepo) GetResource(_ context.Context, id string) (*models.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) DeleteResource(_ context.Context, id string) error {
	delete(f.resources, id)
	return nil
}

func (f *fakeRepo) ListCurriculumResources(_ context.Context, curriculumID string) ([]*models.Resource, error) {
	var out []*models.Resource
	for _, r := range f.resources {
		if r.CurriculumID == curriculumID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListProjectResources(_ context.Context, projectID string) ([]*models.Resource, error) {
	var out []*models.Resource
	for _, r := range f.resources {
		if r.ProjectID == projectID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateNote(_ context.Context, n *models.Note) error {
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeRepo) GetNote(_ context.Context, id string) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeRepo) DeleteNote(_ context.Context, id string) error {
	delete(f.notes, id)
	return nil
}

func (f *fakeRepo) ListNotes(_ context.Context, projectID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range f.notes {
		if n.ProjectID == projectID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetClientByApiKey(_ context.Context, _ string) (*models.ApiClient, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateClientLastUsed(_ context.Context, _ string) error { return nil }

func (f *fakeRepo) Ping(_ context.Context) error { return nil }

func (f *fakeRepo) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *models.Curriculum) {
	t.Helper()
	svc := NewService(newFakeRepo(), nil, nil)
	c, err := svc.CreateCurriculum(context.Background(), models.CreateCurriculumRequest{Name: "Systems Track"})
	if err != nil {
		t.Fatalf("CreateCurriculum: %v", err)
	}
	return svc, c
}

func intPtr(v int) *int { return &v }

func TestCreateCurriculumRequiresName(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	_, err := svc.CreateCurriculum(context.Background(), models.CreateCurriculumRequest{Name: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateLevelAutoFillsOrderAndRange(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	l1, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{Name: "Foundations"})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	if l1.Order != 1 || l1.StageStart != 1 || l1.StageEnd != 5 {
		t.Errorf("first level got order=%d range=[%d,%d], want 1 [1,5]", l1.Order, l1.StageStart, l1.StageEnd)
	}

	l2, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{Name: "Intermediate"})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	if l2.Order != 2 || l2.StageStart != 6 || l2.StageEnd != 10 {
		t.Errorf("second level got order=%d range=[%d,%d], want 2 [6,10]", l2.Order, l2.StageStart, l2.StageEnd)
	}
}

func TestCreateLevelRejectsOverlap(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "A", StageStart: intPtr(1), StageEnd: intPtr(5),
	}); err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}

	_, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "B", StageStart: intPtr(4), StageEnd: intPtr(8), Order: intPtr(2),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for overlapping range, got %v", err)
	}
}

func TestUpdateLevelMayKeepOwnSlot(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	l, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "A", StageStart: intPtr(1), StageEnd: intPtr(5),
	})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}

	// Shrinking inside its own range must not collide with itself
	updated, err := svc.UpdateLevel(ctx, l.ID, models.UpdateLevelRequest{StageEnd: intPtr(4)})
	if err != nil {
		t.Fatalf("UpdateLevel: %v", err)
	}
	if updated.StageEnd != 4 {
		t.Errorf("StageEnd = %d, want 4", updated.StageEnd)
	}
}

func TestCreateProjectRejectsDuplicateOrder(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{
		Name: "Shell", Stage: 1, Order: intPtr(1),
	}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	_, err := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{
		Name: "Editor", Stage: 1, Order: intPtr(1),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate order, got %v", err)
	}

	// Same order on another stage is fine
	if _, err := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{
		Name: "Editor", Stage: 2, Order: intPtr(1),
	}); err != nil {
		t.Fatalf("CreateProject on other stage: %v", err)
	}
}

func TestCreateProjectValidatesFields(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.CreateProjectRequest
	}{
		{"missing name", models.CreateProjectRequest{Stage: 1}},
		{"bad stage", models.CreateProjectRequest{Name: "X", Stage: 0}},
		{"bad identifier", models.CreateProjectRequest{Name: "X", Stage: 1, Identifier: "has spaces!"}},
		{"bad repo", models.CreateProjectRequest{Name: "X", Stage: 1, GithubRepo: "bad/slash"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateProject(ctx, c.ID, tc.req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestSetProjectStateToggleCycles(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.State != models.StateNotStarted {
		t.Fatalf("new project state = %q, want not_started", p.State)
	}

	want := []models.ProjectState{models.StateInProgress, models.StateCompleted, models.StateNotStarted}
	for _, expected := range want {
		p, err = svc.SetProjectState(ctx, p.ID, models.StateRequest{Toggle: true})
		if err != nil {
			t.Fatalf("SetProjectState: %v", err)
		}
		if p.State != expected {
			t.Fatalf("toggle produced %q, want %q", p.State, expected)
		}
	}
}

func TestSetProjectStateDirect(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})

	p, err := svc.SetProjectState(ctx, p.ID, models.StateRequest{State: models.StateCompleted})
	if err != nil {
		t.Fatalf("SetProjectState: %v", err)
	}
	if p.State != models.StateCompleted {
		t.Errorf("state = %q, want completed", p.State)
	}

	if _, err := svc.SetProjectState(ctx, p.ID, models.StateRequest{State: "paused"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown state, got %v", err)
	}
	if _, err := svc.SetProjectState(ctx, p.ID, models.StateRequest{}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty request, got %v", err)
	}
}

func TestSetPrerequisitesRejectsSelfAndForeign(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p1, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})
	p2, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Editor", Stage: 2})

	if _, err := svc.SetPrerequisites(ctx, p2.ID, []string{p2.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("self-edge: expected ErrValidation, got %v", err)
	}
	if _, err := svc.SetPrerequisites(ctx, p2.ID, []string{"someone-elses-project"}); !errors.Is(err, ErrValidation) {
		t.Errorf("foreign edge: expected ErrValidation, got %v", err)
	}

	updated, err := svc.SetPrerequisites(ctx, p2.ID, []string{p1.ID})
	if err != nil {
		t.Fatalf("SetPrerequisites: %v", err)
	}
	if len(updated.Prerequisites) != 1 || updated.Prerequisites[0] != p1.ID {
		t.Errorf("prerequisites = %v, want [%s]", updated.Prerequisites, p1.ID)
	}
}

func TestSetPrerequisitesDeduplicates(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p1, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})
	p2, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Editor", Stage: 2})

	updated, err := svc.SetPrerequisites(ctx, p2.ID, []string{p1.ID, p1.ID, p1.ID})
	if err != nil {
		t.Fatalf("SetPrerequisites: %v", err)
	}
	if len(updated.Prerequisites) != 1 || updated.Prerequisites[0] != p1.ID {
		t.Errorf("prerequisites = %v, want exactly [%s]", updated.Prerequisites, p1.ID)
	}

	// The stored entity agrees with the returned one
	stored, err := svc.GetProject(ctx, p2.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(stored.Prerequisites) != 1 {
		t.Errorf("stored prerequisites = %v, want one entry", stored.Prerequisites)
	}
}

func TestListLevelsSortedByOrder(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "Advanced", StageStart: intPtr(6), StageEnd: intPtr(10), Order: intPtr(2),
	}); err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	if _, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "Foundations", StageStart: intPtr(1), StageEnd: intPtr(5), Order: intPtr(1),
	}); err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}

	levels, err := svc.ListLevels(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListLevels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(levels))
	}
	if levels[0].Name != "Foundations" || levels[1].Name != "Advanced" {
		t.Errorf("order = [%s, %s], want [Foundations, Advanced]", levels[0].Name, levels[1].Name)
	}

	if _, err := svc.ListLevels(ctx, "missing"); !errors.Is(err, ErrCurriculumNotFound) {
		t.Errorf("unknown curriculum: got %v", err)
	}
}

func TestListStagesSortedByNumber(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	for _, n := range []int{3, 1, 2} {
		number := n
		if _, err := svc.CreateStage(ctx, c.ID, models.CreateStageRequest{StageNumber: &number}); err != nil {
			t.Fatalf("CreateStage(%d): %v", n, err)
		}
	}

	stages, err := svc.ListStages(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(stages))
	}
	for i, want := range []int{1, 2, 3} {
		if stages[i].StageNumber != want {
			t.Errorf("stages[%d].StageNumber = %d, want %d", i, stages[i].StageNumber, want)
		}
	}

	if _, err := svc.ListStages(ctx, "missing"); !errors.Is(err, ErrCurriculumNotFound) {
		t.Errorf("unknown curriculum: got %v", err)
	}
}

func TestListNotes(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})

	if _, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: models.NoteGeneral, Content: "first"}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: models.NoteBlocker, Content: "second"}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	notes, err := svc.ListNotes(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("got %d notes, want 2", len(notes))
	}

	if _, err := svc.ListNotes(ctx, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("unknown project: got %v", err)
	}
}

func TestGetPrerequisitesExcludesSelfFromCandidates(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p1, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})
	p2, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Editor", Stage: 1})

	view, err := svc.GetPrerequisites(ctx, p2.ID)
	if err != nil {
		t.Fatalf("GetPrerequisites: %v", err)
	}
	for _, group := range view.Candidates {
		for _, cand := range group.Projects {
			if cand.ID == p2.ID {
				t.Fatal("candidate list contains the edited project itself")
			}
		}
	}
	found := false
	for _, group := range view.Candidates {
		for _, cand := range group.Projects {
			if cand.ID == p1.ID {
				found = true
			}
		}
	}
	if !found {
		t.Error("sibling project missing from candidates")
	}
}

func TestGetProgressComputesStats(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p1, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "A", Stage: 1})
	_, _ = svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "B", Stage: 1})
	_, _ = svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "C", Stage: 2})

	if _, err := svc.SetProjectState(ctx, p1.ID, models.StateRequest{State: models.StateCompleted}); err != nil {
		t.Fatalf("SetProjectState: %v", err)
	}

	prog, err := svc.GetProgress(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if prog.Stats.Total != 3 || prog.Stats.Completed != 1 || prog.Stats.Percentage != 33 {
		t.Errorf("stats = %+v, want total=3 completed=1 percentage=33", prog.Stats)
	}
}

func TestSuggestProjectUsesLevelPrefix(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateLevel(ctx, c.ID, models.CreateLevelRequest{
		Name: "Foundations", StageStart: intPtr(1), StageEnd: intPtr(5), DefaultIdentifier: "F",
	}); err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	_, _ = svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "A", Stage: 1, Order: intPtr(1)})
	_, _ = svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "B", Stage: 3, Order: intPtr(1)})

	sugg, err := svc.SuggestProject(ctx, c.ID, 1)
	if err != nil {
		t.Fatalf("SuggestProject: %v", err)
	}
	if sugg.Order != 2 {
		t.Errorf("suggested order = %d, want 2", sugg.Order)
	}
	if sugg.Identifier != "F3" {
		t.Errorf("suggested identifier = %q, want F3", sugg.Identifier)
	}
	if sugg.LevelName != "Foundations" {
		t.Errorf("level name = %q, want Foundations", sugg.LevelName)
	}
}

func TestAddNoteValidatesContent(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, c.ID, models.CreateProjectRequest{Name: "Shell", Stage: 1})

	if _, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: "rant", Content: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown type: expected ErrValidation, got %v", err)
	}
	if _, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: models.NoteIdea, Content: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty content: expected ErrValidation, got %v", err)
	}
	long := strings.Repeat("a", maxNoteContentLen+1)
	if _, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: models.NoteIdea, Content: long}); !errors.Is(err, ErrValidation) {
		t.Errorf("oversize content: expected ErrValidation, got %v", err)
	}

	n, err := svc.AddNote(ctx, p.ID, models.CreateNoteRequest{Type: models.NoteBlocker, Content: "stuck on parsing"})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n.Content != "stuck on parsing" {
		t.Errorf("content = %q", n.Content)
	}
}

func TestAddResourceValidatesLink(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddCurriculumResource(ctx, c.ID, models.CreateResourceRequest{
		Name: "Book", Type: models.ResourceBook, Link: "not a url",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad link: expected ErrValidation, got %v", err)
	}

	r, err := svc.AddCurriculumResource(ctx, c.ID, models.CreateResourceRequest{
		Name: "Book", Type: models.ResourceBook, Link: "https://example.com/book",
	})
	if err != nil {
		t.Fatalf("AddCurriculumResource: %v", err)
	}
	if r.CurriculumID != c.ID || r.ProjectID != "" {
		t.Errorf("resource ownership = curriculum=%q project=%q", r.CurriculumID, r.ProjectID)
	}
}

func TestEntityNotFoundErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetCurriculum(ctx, "missing"); !errors.Is(err, ErrCurriculumNotFound) {
		t.Errorf("GetCurriculum: got %v", err)
	}
	if _, err := svc.GetProject(ctx, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("GetProject: got %v", err)
	}
	if err := svc.DeleteLevel(ctx, "missing"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("DeleteLevel: got %v", err)
	}
	if err := svc.DeleteStage(ctx, "missing"); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("DeleteStage: got %v", err)
	}
	if err := svc.DeleteResource(ctx, "missing"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("DeleteResource: got %v", err)
	}
	if err := svc.DeleteNote(ctx, "missing"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("DeleteNote: got %v", err)
	}
}
