package prereq

import (
	"testing"

	"github.com/pathworks/curriculum-engine/internal/models"
)

func TestCompletionSummary(t *testing.T) {
	projects := []*models.Project{
		{ID: "a", State: models.StateCompleted},
		{ID: "b", State: models.StateInProgress},
		{ID: "c", State: models.StateCompleted},
	}

	s := CompletionSummary([]string{"a", "b", "c"}, projects)
	if s.CompletedCount != 2 || s.TotalCount != 3 {
		t.Errorf("summary = %+v, want 2/3", s)
	}

	empty := CompletionSummary(nil, projects)
	if empty.CompletedCount != 0 || empty.TotalCount != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	// Dangling edge counts toward total, never toward completed
	dangling := CompletionSummary([]string{"a", "gone"}, projects)
	if dangling.CompletedCount != 1 || dangling.TotalCount != 2 {
		t.Errorf("dangling summary = %+v, want 1/2", dangling)
	}
}

func TestSelectionDiffers(t *testing.T) {
	cases := []struct {
		name              string
		current, proposed []string
		want              bool
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, false},
		{"order ignored", []string{"a", "b"}, []string{"b", "a"}, false},
		{"added", []string{"a"}, []string{"a", "b"}, true},
		{"removed", []string{"a", "b"}, []string{"a"}, true},
		{"swapped", []string{"a", "b"}, []string{"a", "c"}, true},
		{"both empty", nil, nil, false},
		{"duplicates ignored", []string{"a", "a", "b"}, []string{"b", "a"}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SelectionDiffers(c.current, c.proposed); got != c.want {
				t.Errorf("SelectionDiffers(%v, %v) = %v, want %v", c.current, c.proposed, got, c.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	levels := []*models.Level{
		{ID: "l1", Name: "Foundations", Order: 1, StageStart: 1, StageEnd: 5},
	}
	projects := []*models.Project{
		{ID: "edited", Stage: 1, Name: "the one being edited"},
		{ID: "a", Stage: 2, Name: "A"},
		{ID: "b", Stage: 1, Name: "B"},
		{ID: "c", Stage: 9, Name: "C"},
	}

	groups := Candidates(projects, levels, "edited")
	if len(groups) != 3 {
		t.Fatalf("expected 3 stage groups, got %d", len(groups))
	}

	if groups[0].Stage != 1 || len(groups[0].Projects) != 1 || groups[0].Projects[0].ID != "b" {
		t.Errorf("group 0 = %+v; edited project must be excluded", groups[0])
	}
	if groups[0].LevelName != "Foundations" {
		t.Errorf("stage 1 should be annotated with its level, got %q", groups[0].LevelName)
	}
	if groups[1].Stage != 2 || groups[1].LevelName != "Foundations" {
		t.Errorf("group 1 = %+v", groups[1])
	}
	// Stage 9 belongs to no level
	if groups[2].Stage != 9 || groups[2].LevelName != "" {
		t.Errorf("group 2 = %+v; expected no level annotation", groups[2])
	}
}
