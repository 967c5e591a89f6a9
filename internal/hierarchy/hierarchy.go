// Package hierarchy implements the consistency rules between levels, stages
// and projects: non-overlapping level ranges, unique ordering per scope, and
// next-available-slot computation. Every function is pure over the snapshot
// it is handed; nothing here touches storage or mutates its inputs.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/pathworks/curriculum-engine/internal/models"
)

// Result is the outcome of a validating operation. Callers must check OK
// before proceeding; Reason is a human-readable explanation on failure.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func ok() Result {
	return Result{OK: true}
}

func fail(format string, args ...interface{}) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// LevelRangeOverlaps validates a candidate [start, end] stage range against
// the existing levels of a curriculum. excludeID lets an edit validate
// against all levels except itself; pass "" for inserts.
func LevelRangeOverlaps(start, end int, existing []*models.Level, excludeID string) Result {
	if start < 1 {
		return fail("stage range must start at 1 or above, got %d", start)
	}
	if end < start {
		return fail("stage range end %d is before start %d", end, start)
	}

	for _, lvl := range existing {
		if lvl.ID == excludeID {
			continue
		}
		// Inclusive ranges intersect unless one lies entirely beside the other
		if end < lvl.StageStart || start > lvl.StageEnd {
			continue
		}
		return fail("stage range %d-%d overlaps level %q (%d-%d)",
			start, end, lvl.Name, lvl.StageStart, lvl.StageEnd)
	}

	return ok()
}

// LevelOrderIsUnique validates a candidate order value against the existing
// levels, excluding the level being edited.
func LevelOrderIsUnique(order int, existing []*models.Level, excludeID string) Result {
	if order < 1 {
		return fail("order must be a positive integer, got %d", order)
	}

	for _, lvl := range existing {
		if lvl.ID == excludeID {
			continue
		}
		if lvl.Order == order {
			return fail("order %d is already used by level %q", order, lvl.Name)
		}
	}

	return ok()
}

// NextAvailableLevelOrder returns the smallest positive integer not already
// in use as a level order. Scans from 1 upward so gaps left by deletion are
// filled before extending past the maximum.
func NextAvailableLevelOrder(existing []*models.Level, excludeID string) int {
	used := make(map[int]bool, len(existing))
	for _, lvl := range existing {
		if lvl.ID == excludeID {
			continue
		}
		used[lvl.Order] = true
	}

	n := 1
	for used[n] {
		n++
	}
	return n
}

// StageRange is a suggested [StageStart, StageEnd] slot for a new level
type StageRange struct {
	StageStart int `json:"stage_start"`
	StageEnd   int `json:"stage_end"`
}

// NextAvailableStageRange suggests the range immediately following the level
// with the highest stage end, or [1, size] when no levels exist. Unlike
// order assignment this does not fill gaps.
func NextAvailableStageRange(existing []*models.Level, size int) StageRange {
	if size < 1 {
		size = 1
	}

	maxEnd := 0
	for _, lvl := range existing {
		if lvl.StageEnd > maxEnd {
			maxEnd = lvl.StageEnd
		}
	}

	return StageRange{
		StageStart: maxEnd + 1,
		StageEnd:   maxEnd + size,
	}
}

// LevelForStage returns the level whose range contains the stage number, or
// nil when the stage is unassigned to any level.
func LevelForStage(levels []*models.Level, stage int) *models.Level {
	for _, lvl := range levels {
		if lvl.Contains(stage) {
			return lvl
		}
	}
	return nil
}

// StageNumberIsUnique validates a candidate stage number against the
// existing stage definitions, excluding the stage being edited.
func StageNumberIsUnique(n int, existing []*models.Stage, excludeID string) Result {
	if n < 1 {
		return fail("stage number must be a positive integer, got %d", n)
	}

	for _, st := range existing {
		if st.ID == excludeID {
			continue
		}
		if st.StageNumber == n {
			return fail("stage number %d is already defined", n)
		}
	}

	return ok()
}

// NextAvailableStageNumber returns the smallest positive integer not already
// used as a stage number (gap-filling).
func NextAvailableStageNumber(existing []*models.Stage) int {
	used := make(map[int]bool, len(existing))
	for _, st := range existing {
		used[st.StageNumber] = true
	}

	n := 1
	for used[n] {
		n++
	}
	return n
}

// ProjectOrderIsUnique validates a candidate order among projects sharing
// the same stage number. Projects without an order never collide.
func ProjectOrderIsUnique(order, stage int, projects []*models.Project, excludeID string) Result {
	if order < 1 {
		return fail("order must be a positive integer, got %d", order)
	}

	for _, p := range projects {
		if p.ID == excludeID || p.Stage != stage || p.Order == nil {
			continue
		}
		if *p.Order == order {
			return fail("order %d is already used in stage %d by %q", order, stage, p.Name)
		}
	}

	return ok()
}

// NextAvailableProjectOrder returns the smallest positive integer not used
// as an order among projects sharing the given stage (gap-filling).
func NextAvailableProjectOrder(projects []*models.Project, stage int, excludeID string) int {
	used := make(map[int]bool)
	for _, p := range projects {
		if p.ID == excludeID || p.Stage != stage || p.Order == nil {
			continue
		}
		used[*p.Order] = true
	}

	n := 1
	for used[n] {
		n++
	}
	return n
}

// UsedProjectOrders returns the sorted order values actually in use for the
// given stage.
func UsedProjectOrders(projects []*models.Project, stage int, excludeID string) []int {
	var orders []int
	for _, p := range projects {
		if p.ID == excludeID || p.Stage != stage || p.Order == nil {
			continue
		}
		orders = append(orders, *p.Order)
	}
	sort.Ints(orders)
	return orders
}

// EffectiveGithubRepo resolves a project's repository: its own value when
// set, else the stage definition's default, else empty.
func EffectiveGithubRepo(project *models.Project, stage *models.Stage) string {
	if project != nil && project.GithubRepo != "" {
		return project.GithubRepo
	}
	if stage != nil {
		return stage.DefaultGithubRepo
	}
	return ""
}

// NextIdentifierSuffix suggests the numeric suffix for an auto-derived
// project identifier within a level: the count of other projects whose
// stage falls in the level's range, plus one. This counts current siblings
// rather than tracking a high-water mark, so a delete-then-create sequence
// can repeat a suggestion; identifiers are suggestions, not unique keys.
func NextIdentifierSuffix(level *models.Level, projects []*models.Project, excludeID string) int {
	if level == nil {
		return 1
	}

	count := 0
	for _, p := range projects {
		if p.ID == excludeID {
			continue
		}
		if level.Contains(p.Stage) {
			count++
		}
	}
	return count + 1
}

// SuggestIdentifier derives a full identifier suggestion from the level's
// prefix, or empty when the level has no default identifier.
func SuggestIdentifier(level *models.Level, projects []*models.Project, excludeID string) string {
	if level == nil || level.DefaultIdentifier == "" {
		return ""
	}
	return fmt.Sprintf("%s%d", level.DefaultIdentifier, NextIdentifierSuffix(level, projects, excludeID))
}
