package progress

import (
	"strings"

	"github.com/pathworks/curriculum-engine/internal/hierarchy"
	"github.com/pathworks/curriculum-engine/internal/models"
)

// FilterByStage keeps projects referencing the given stage number.
func FilterByStage(projects []*models.Project, stage int) []*models.Project {
	var out []*models.Project
	for _, p := range projects {
		if p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

// FilterByLevel keeps projects whose stage falls inside the named level's
// range. An unknown level ID matches nothing.
func FilterByLevel(projects []*models.Project, levels []*models.Level, levelID string) []*models.Project {
	var lvl *models.Level
	for _, l := range levels {
		if l.ID == levelID {
			lvl = l
			break
		}
	}
	if lvl == nil {
		return nil
	}

	var out []*models.Project
	for _, p := range projects {
		if lvl.Contains(p.Stage) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByTopic keeps projects tagged with the topic (case-insensitive).
func FilterByTopic(projects []*models.Project, topic string) []*models.Project {
	var out []*models.Project
	for _, p := range projects {
		for _, t := range p.Topics {
			if strings.EqualFold(t, topic) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// FilterByState keeps projects in the given state.
func FilterByState(projects []*models.Project, state models.ProjectState) []*models.Project {
	var out []*models.Project
	for _, p := range projects {
		if p.State == state {
			out = append(out, p)
		}
	}
	return out
}

// FilterByRepoPresence keeps projects with ("with") or without ("without") a
// linked repository, resolved through the stage default.
func FilterByRepoPresence(projects []*models.Project, stages []*models.Stage, mode models.RepoFilter) []*models.Project {
	if mode == models.RepoAny {
		return projects
	}

	byNumber := make(map[int]*models.Stage, len(stages))
	for _, st := range stages {
		byNumber[st.StageNumber] = st
	}

	var out []*models.Project
	for _, p := range projects {
		has := hierarchy.EffectiveGithubRepo(p, byNumber[p.Stage]) != ""
		if (mode == models.RepoWith) == has {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps projects whose name, description, identifier or any topic tag
// contains the query, case-insensitively. An empty query matches everything.
func Search(projects []*models.Project, query string) []*models.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return projects
	}

	var out []*models.Project
	for _, p := range projects {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *models.Project, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Identifier), q) {
		return true
	}
	for _, t := range p.Topics {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Apply runs every filter present in f over the snapshot. Filters are
// independent, so application order does not change the result; the final
// set is the intersection.
func Apply(projects []*models.Project, levels []*models.Level, stages []*models.Stage, f models.ProjectFilters) []*models.Project {
	out := projects
	if f.Stage != nil {
		out = FilterByStage(out, *f.Stage)
	}
	if f.LevelID != "" {
		out = FilterByLevel(out, levels, f.LevelID)
	}
	if f.Topic != "" {
		out = FilterByTopic(out, f.Topic)
	}
	if f.State != "" {
		out = FilterByState(out, f.State)
	}
	if f.Repo != models.RepoAny {
		out = FilterByRepoPresence(out, stages, f.Repo)
	}
	if f.Query != "" {
		out = Search(out, f.Query)
	}
	return out
}
