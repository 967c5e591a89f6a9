package hierarchy

import (
	"testing"

	"github.com/pathworks/curriculum-engine/internal/models"
)

func lvl(id string, start, end, order int) *models.Level {
	return &models.Level{ID: id, Name: id, StageStart: start, StageEnd: end, Order: order}
}

func proj(id string, stage int, order *int) *models.Project {
	return &models.Project{ID: id, Name: id, Stage: stage, Order: order}
}

func intp(n int) *int { return &n }

func TestLevelRangeOverlaps(t *testing.T) {
	existing := []*models.Level{
		lvl("a", 1, 5, 1),
		lvl("b", 6, 10, 2),
	}

	cases := []struct {
		name       string
		start, end int
		exclude    string
		wantOK     bool
	}{
		{"fits after", 11, 15, "", true},
		{"touches start of a", 5, 5, "", false},
		{"spans both", 3, 8, "", false},
		{"inside b", 7, 9, "", false},
		{"contains a entirely", 1, 12, "", false},
		{"edit a keeps own range", 1, 5, "a", true},
		{"edit a grows into b", 1, 6, "a", false},
		{"start below 1", 0, 3, "", false},
		{"end before start", 4, 2, "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := LevelRangeOverlaps(c.start, c.end, existing, c.exclude)
			if res.OK != c.wantOK {
				t.Errorf("LevelRangeOverlaps(%d, %d, exclude=%q) ok=%v reason=%q, want ok=%v",
					c.start, c.end, c.exclude, res.OK, res.Reason, c.wantOK)
			}
			if !res.OK && res.Reason == "" {
				t.Error("failed result must carry a reason")
			}
		})
	}
}

// Any sequence of inserts accepted by LevelRangeOverlaps must leave all
// pairs disjoint.
func TestNoOverlapInvariantAcrossInserts(t *testing.T) {
	candidates := []StageRange{
		{1, 5}, {6, 10}, {4, 8}, {11, 11}, {2, 3}, {10, 14}, {15, 20},
	}

	var accepted []*models.Level
	for i, c := range candidates {
		if LevelRangeOverlaps(c.StageStart, c.StageEnd, accepted, "").OK {
			accepted = append(accepted, lvl(string(rune('a'+i)), c.StageStart, c.StageEnd, i+1))
		}
	}

	for i, l1 := range accepted {
		for j, l2 := range accepted {
			if i == j {
				continue
			}
			if !(l1.StageEnd < l2.StageStart || l1.StageStart > l2.StageEnd) {
				t.Errorf("levels %q (%d-%d) and %q (%d-%d) overlap",
					l1.ID, l1.StageStart, l1.StageEnd, l2.ID, l2.StageStart, l2.StageEnd)
			}
		}
	}
}

func TestLevelOrderIsUnique(t *testing.T) {
	existing := []*models.Level{lvl("a", 1, 5, 1), lvl("b", 6, 10, 3)}

	if res := LevelOrderIsUnique(2, existing, ""); !res.OK {
		t.Errorf("order 2 should be free: %s", res.Reason)
	}
	if res := LevelOrderIsUnique(3, existing, ""); res.OK {
		t.Error("order 3 is taken by b")
	}
	if res := LevelOrderIsUnique(3, existing, "b"); !res.OK {
		t.Errorf("editing b should allow its own order: %s", res.Reason)
	}
	if res := LevelOrderIsUnique(0, existing, ""); res.OK {
		t.Error("order must be positive")
	}
}

func TestNextAvailableLevelOrderFillsGaps(t *testing.T) {
	existing := []*models.Level{
		lvl("a", 1, 5, 1),
		lvl("b", 6, 10, 3),
		lvl("c", 11, 15, 4),
	}

	if got := NextAvailableLevelOrder(existing, ""); got != 2 {
		t.Errorf("expected gap 2 to be filled, got %d", got)
	}
	if got := NextAvailableLevelOrder(nil, ""); got != 1 {
		t.Errorf("empty set should yield 1, got %d", got)
	}
	// Excluding a level frees its order
	if got := NextAvailableLevelOrder(existing, "a"); got != 1 {
		t.Errorf("excluding a should free order 1, got %d", got)
	}

	// Suggested order never collides with the snapshot it was computed over
	next := NextAvailableLevelOrder(existing, "")
	if res := LevelOrderIsUnique(next, existing, ""); !res.OK {
		t.Errorf("suggested order %d collides: %s", next, res.Reason)
	}
}

func TestNextAvailableStageRange(t *testing.T) {
	if got := NextAvailableStageRange(nil, 5); got.StageStart != 1 || got.StageEnd != 5 {
		t.Errorf("empty curriculum should start at [1,5], got [%d,%d]", got.StageStart, got.StageEnd)
	}

	// Does not fill gaps: follows the highest stage end
	existing := []*models.Level{lvl("a", 1, 3, 1), lvl("b", 10, 12, 2)}
	got := NextAvailableStageRange(existing, 4)
	if got.StageStart != 13 || got.StageEnd != 16 {
		t.Errorf("expected [13,16], got [%d,%d]", got.StageStart, got.StageEnd)
	}
}

func TestLevelForStage(t *testing.T) {
	levels := []*models.Level{lvl("A", 1, 5, 1), lvl("B", 6, 10, 2)}

	if got := LevelForStage(levels, 5); got == nil || got.ID != "A" {
		t.Errorf("stage 5 should belong to A, got %v", got)
	}
	if got := LevelForStage(levels, 6); got == nil || got.ID != "B" {
		t.Errorf("stage 6 should belong to B, got %v", got)
	}
	if got := LevelForStage(levels, 11); got != nil {
		t.Errorf("stage 11 should be unassigned, got %v", got)
	}
}

func TestStageNumberUniqueness(t *testing.T) {
	existing := []*models.Stage{
		{ID: "s1", StageNumber: 1},
		{ID: "s3", StageNumber: 3},
	}

	if res := StageNumberIsUnique(2, existing, ""); !res.OK {
		t.Errorf("stage 2 should be free: %s", res.Reason)
	}
	if res := StageNumberIsUnique(3, existing, ""); res.OK {
		t.Error("stage 3 is taken")
	}
	if res := StageNumberIsUnique(3, existing, "s3"); !res.OK {
		t.Errorf("editing s3 should allow its own number: %s", res.Reason)
	}
	if got := NextAvailableStageNumber(existing); got != 2 {
		t.Errorf("expected gap-filling 2, got %d", got)
	}
}

func TestProjectOrderPerStage(t *testing.T) {
	projects := []*models.Project{
		proj("p1", 2, intp(1)),
		proj("p2", 2, intp(2)),
		proj("p3", 2, intp(4)),
		proj("p4", 3, intp(1)), // other stage, independent numbering space
		proj("p5", 2, nil),     // no order, never collides
	}

	if got := NextAvailableProjectOrder(projects, 2, ""); got != 3 {
		t.Errorf("expected gap 3 in stage 2, got %d", got)
	}
	if got := NextAvailableProjectOrder(projects, 3, ""); got != 2 {
		t.Errorf("expected 2 in stage 3, got %d", got)
	}
	if got := NextAvailableProjectOrder(projects, 9, ""); got != 1 {
		t.Errorf("unused stage should yield 1, got %d", got)
	}

	if res := ProjectOrderIsUnique(2, 2, projects, ""); res.OK {
		t.Error("order 2 in stage 2 is taken")
	}
	if res := ProjectOrderIsUnique(2, 2, projects, "p2"); !res.OK {
		t.Errorf("editing p2 should allow its own order: %s", res.Reason)
	}
	if res := ProjectOrderIsUnique(1, 3, projects, ""); res.OK {
		t.Error("order 1 in stage 3 is taken")
	}

	used := UsedProjectOrders(projects, 2, "")
	want := []int{1, 2, 4}
	if len(used) != len(want) {
		t.Fatalf("used orders = %v, want %v", used, want)
	}
	for i := range want {
		if used[i] != want[i] {
			t.Fatalf("used orders = %v, want %v", used, want)
		}
	}

	// The suggestion never appears in the used set
	next := NextAvailableProjectOrder(projects, 2, "")
	for _, u := range used {
		if u == next {
			t.Errorf("suggested order %d already in use", next)
		}
	}
}

func TestEffectiveGithubRepo(t *testing.T) {
	stage := &models.Stage{StageNumber: 2, DefaultGithubRepo: "stage-default"}

	p := &models.Project{GithubRepo: "own-repo"}
	if got := EffectiveGithubRepo(p, stage); got != "own-repo" {
		t.Errorf("project repo should win, got %q", got)
	}

	p = &models.Project{}
	if got := EffectiveGithubRepo(p, stage); got != "stage-default" {
		t.Errorf("stage default should apply, got %q", got)
	}
	if got := EffectiveGithubRepo(p, nil); got != "" {
		t.Errorf("no stage definition should yield empty, got %q", got)
	}
}

func TestNextIdentifierSuffix(t *testing.T) {
	level := lvl("L", 1, 5, 1)
	level.DefaultIdentifier = "R1_"

	projects := []*models.Project{
		proj("p1", 1, nil),
		proj("p2", 3, nil),
		proj("p3", 8, nil), // outside the level's range
	}

	if got := NextIdentifierSuffix(level, projects, ""); got != 3 {
		t.Errorf("expected suffix 3 (two in-range siblings + 1), got %d", got)
	}
	if got := NextIdentifierSuffix(level, projects, "p2"); got != 2 {
		t.Errorf("excluding p2 should yield 2, got %d", got)
	}
	if got := SuggestIdentifier(level, projects, ""); got != "R1_3" {
		t.Errorf("expected R1_3, got %q", got)
	}

	bare := lvl("M", 6, 10, 2)
	if got := SuggestIdentifier(bare, projects, ""); got != "" {
		t.Errorf("level without prefix should suggest nothing, got %q", got)
	}
}
