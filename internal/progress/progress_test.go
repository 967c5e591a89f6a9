package progress

import (
	"testing"
	"time"

	"github.com/pathworks/curriculum-engine/internal/models"
)

func intp(n int) *int { return &n }

func TestProjectStats(t *testing.T) {
	empty := ProjectStats(nil)
	if empty.Total != 0 || empty.Completed != 0 || empty.Percentage != 0 {
		t.Errorf("empty stats = %+v, want all zeroes", empty)
	}

	projects := []*models.Project{
		{State: models.StateCompleted},
		{State: models.StateNotStarted},
		{State: models.StateInProgress},
	}
	s := ProjectStats(projects)
	if s.Total != 3 || s.Completed != 1 || s.Percentage != 33 {
		t.Errorf("stats = %+v, want total=3 completed=1 percentage=33", s)
	}

	two := ProjectStats([]*models.Project{
		{State: models.StateCompleted},
		{State: models.StateCompleted},
		{State: models.StateNotStarted},
	})
	if two.Percentage != 67 {
		t.Errorf("2/3 should round to 67, got %d", two.Percentage)
	}
}

func TestSortProjectsByStageThenOrder(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Hour) // earlier

	projects := []*models.Project{
		{ID: "a", Stage: 2, Order: intp(1)},
		{ID: "b", Stage: 1, Order: intp(5)},
		{ID: "c", Stage: 1, CreatedAt: t1},
		{ID: "d", Stage: 1, CreatedAt: t2},
	}

	got := SortProjectsByStageThenOrder(projects)
	want := []string{"b", "d", "c", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (full: %v)", i, got[i].ID, id, ids(got))
		}
	}

	// Input order untouched
	if projects[0].ID != "a" {
		t.Error("sort must not mutate its input")
	}

	// Deterministic under permutation
	perm := []*models.Project{projects[3], projects[1], projects[0], projects[2]}
	again := SortProjectsByStageThenOrder(perm)
	for i := range want {
		if again[i].ID != want[i] {
			t.Fatalf("permuted input sorted differently: %v", ids(again))
		}
	}
}

func ids(ps []*models.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestSortLevelsByOrder(t *testing.T) {
	levels := []*models.Level{
		{ID: "c", Order: 3},
		{ID: "a", Order: 1},
		{ID: "b", Order: 2},
	}
	got := SortLevelsByOrder(levels)
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestUniqueStagesUsed(t *testing.T) {
	projects := []*models.Project{
		{Stage: 3}, {Stage: 1}, {Stage: 3}, {Stage: 2}, {Stage: 1},
	}
	got := UniqueStagesUsed(projects)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stages = %v, want %v", got, want)
		}
	}
}

func TestNextIncompleteProjects(t *testing.T) {
	projects := []*models.Project{
		{ID: "done", Stage: 1, Order: intp(1), State: models.StateCompleted},
		{ID: "first", Stage: 1, Order: intp(2), State: models.StateNotStarted},
		{ID: "second", Stage: 2, Order: intp(1), State: models.StateInProgress},
		{ID: "third", Stage: 3, Order: intp(1), State: models.StateNotStarted},
	}

	got := NextIncompleteProjects(projects, 2)
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
		t.Errorf("next 2 = %v", ids(got))
	}

	all := NextIncompleteProjects(projects, 10)
	if len(all) != 3 {
		t.Errorf("expected 3 incomplete, got %d", len(all))
	}

	if NextIncompleteProjects(projects, 0) != nil {
		t.Error("count 0 should return nothing")
	}
}

func TestStatsByLevel(t *testing.T) {
	levels := []*models.Level{
		{ID: "l2", Name: "B", Order: 2, StageStart: 6, StageEnd: 10},
		{ID: "l1", Name: "A", Order: 1, StageStart: 1, StageEnd: 5},
	}
	projects := []*models.Project{
		{Stage: 2, State: models.StateCompleted},
		{Stage: 4, State: models.StateNotStarted},
		{Stage: 7, State: models.StateCompleted},
		{Stage: 99, State: models.StateCompleted}, // outside every level
	}

	got := StatsByLevel(projects, levels)
	if len(got) != 2 {
		t.Fatalf("expected 2 level rollups, got %d", len(got))
	}
	if got[0].Level.ID != "l1" || got[1].Level.ID != "l2" {
		t.Errorf("rollups not in level order: %s, %s", got[0].Level.ID, got[1].Level.ID)
	}
	if got[0].Stats.Total != 2 || got[0].Stats.Completed != 1 || got[0].Stats.Percentage != 50 {
		t.Errorf("level A stats = %+v", got[0].Stats)
	}
	if got[1].Stats.Total != 1 || got[1].Stats.Completed != 1 || got[1].Stats.Percentage != 100 {
		t.Errorf("level B stats = %+v", got[1].Stats)
	}
}
