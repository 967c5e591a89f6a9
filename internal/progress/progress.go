// Package progress derives completion statistics and display orderings over
// project collections. Pure functions over snapshots; sorters return new
// slices and never reorder their input.
package progress

import (
	"math"
	"sort"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// Stats summarizes completion over a set of projects
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// ProjectStats counts completed projects and derives a rounded percentage.
// An empty collection yields all zeroes.
func ProjectStats(projects []*models.Project) Stats {
	s := Stats{Total: len(projects)}
	if s.Total == 0 {
		return s
	}

	for _, p := range projects {
		if p.State == models.StateCompleted {
			s.Completed++
		}
	}
	s.Percentage = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	return s
}

// LevelStats pairs a level with the stats of the projects in its range
type LevelStats struct {
	Level *models.Level `json:"level"`
	Stats Stats         `json:"stats"`
}

// StatsByLevel computes per-level completion rollups in level display order.
// Projects whose stage falls outside every level range are not counted.
func StatsByLevel(projects []*models.Project, levels []*models.Level) []LevelStats {
	ordered := SortLevelsByOrder(levels)
	out := make([]LevelStats, 0, len(ordered))

	for _, lvl := range ordered {
		var in []*models.Project
		for _, p := range projects {
			if lvl.Contains(p.Stage) {
				in = append(in, p)
			}
		}
		out = append(out, LevelStats{Level: lvl, Stats: ProjectStats(in)})
	}
	return out
}

// SortProjectsByStageThenOrder returns the projects in display order:
// stage ascending; within a stage, defined orders (ascending) before
// undefined; undefined orders tie-break by creation time. The chain is a
// total order, so the result is deterministic for any input permutation.
func SortProjectsByStageThenOrder(projects []*models.Project) []*models.Project {
	out := make([]*models.Project, len(projects))
	copy(out, projects)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		switch {
		case a.Order != nil && b.Order != nil:
			if *a.Order != *b.Order {
				return *a.Order < *b.Order
			}
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return out
}

// SortLevelsByOrder returns the levels ascending by their order value.
func SortLevelsByOrder(levels []*models.Level) []*models.Level {
	out := make([]*models.Level, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// UniqueStagesUsed returns the ascending set of stage numbers referenced by
// at least one project.
func UniqueStagesUsed(projects []*models.Project) []int {
	seen := make(map[int]bool)
	var stages []int
	for _, p := range projects {
		if !seen[p.Stage] {
			seen[p.Stage] = true
			stages = append(stages, p.Stage)
		}
	}
	sort.Ints(stages)
	return stages
}

// NextIncompleteProjects returns up to count not-yet-completed projects in
// display order.
func NextIncompleteProjects(projects []*models.Project, count int) []*models.Project {
	if count <= 0 {
		return nil
	}

	var out []*models.Project
	for _, p := range SortProjectsByStageThenOrder(projects) {
		if p.State == models.StateCompleted {
			continue
		}
		out = append(out, p)
		if len(out) == count {
			break
		}
	}
	return out
}
