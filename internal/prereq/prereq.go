// Package prereq treats each project's prerequisite list as directed edges
// into other projects of the same curriculum and answers the questions the
// edit and display surfaces need: completion roll-up, save-enablement diffs,
// and candidate grouping.
package prereq

import (
	"github.com/pathworks/curriculum-engine/internal/hierarchy"
	"github.com/pathworks/curriculum-engine/internal/models"
	"github.com/pathworks/curriculum-engine/internal/progress"
)

// Summary is the completion roll-up over a project's prerequisites
type Summary struct {
	CompletedCount int `json:"completed_count"`
	TotalCount     int `json:"total_count"`
}

// CompletionSummary tallies how many of a project's prerequisites are done.
// Prerequisite IDs with no matching project in the snapshot are counted in
// the total but never as completed (a dangling edge is visible, not hidden).
func CompletionSummary(prereqIDs []string, projects []*models.Project) Summary {
	byID := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	s := Summary{TotalCount: len(prereqIDs)}
	for _, id := range prereqIDs {
		if p, found := byID[id]; found && p.State == models.StateCompleted {
			s.CompletedCount++
		}
	}
	return s
}

// SelectionDiffers reports whether two prerequisite ID sets differ in
// membership. Drives whether a save action is enabled; duplicates and order
// are ignored.
func SelectionDiffers(current, proposed []string) bool {
	cur := toSet(current)
	prop := toSet(proposed)

	if len(cur) != len(prop) {
		return true
	}
	for id := range cur {
		if !prop[id] {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// CandidateGroup is a stage-number bucket of selectable prerequisites,
// annotated with the owning level's name when the stage belongs to one.
type CandidateGroup struct {
	Stage     int               `json:"stage"`
	LevelName string            `json:"level_name,omitempty"`
	Projects  []*models.Project `json:"projects"`
}

// Candidates returns every project of the curriculum except the one being
// edited, grouped by stage number ascending, each group annotated with its
// owning level.
func Candidates(projects []*models.Project, levels []*models.Level, excludeID string) []CandidateGroup {
	var selectable []*models.Project
	for _, p := range projects {
		if p.ID != excludeID {
			selectable = append(selectable, p)
		}
	}

	sorted := progress.SortProjectsByStageThenOrder(selectable)

	var groups []CandidateGroup
	for _, p := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].Stage != p.Stage {
			g := CandidateGroup{Stage: p.Stage}
			if lvl := hierarchy.LevelForStage(levels, p.Stage); lvl != nil {
				g.LevelName = lvl.Name
			}
			groups = append(groups, g)
		}
		groups[len(groups)-1].Projects = append(groups[len(groups)-1].Projects, p)
	}
	return groups
}
