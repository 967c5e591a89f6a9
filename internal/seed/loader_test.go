package seed

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleBlueprint = `name: Systems Programming Track
description: Low-level fundamentals through toy rebuilds
levels:
  - name: Foundations
    stage_start: 1
    stage_end: 3
    order: 1
    default_identifier: F
stages:
  - number: 1
    name: Unix basics
    default_github_repo: systems-foundations
projects:
  - name: Build a shell
    stage: 1
    order: 1
    identifier: F1
    topics: [unix, processes]
  - name: Build a text editor
    stage: 2
    order: 1
    identifier: F2
    prerequisites: [F1]
resources:
  - name: The Linux Programming Interface
    type: book
    link: https://example.com/tlpi
`

func writeBlueprint(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write blueprint: %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "systems.yaml", sampleBlueprint)
	writeBlueprint(t, dir, "broken.yaml", "description: no name here")
	writeBlueprint(t, dir, "notes.txt", "not yaml")

	l := NewLoader()
	if err := l.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}

	// The broken file is skipped, not fatal
	if got := len(l.List()); got != 1 {
		t.Fatalf("loaded %d blueprints, want 1", got)
	}

	bp := l.Get("systems")
	if bp == nil {
		t.Fatal("blueprint \"systems\" not found")
	}
	if bp.Name != "Systems Programming Track" {
		t.Errorf("name = %q", bp.Name)
	}
	if len(bp.Levels) != 1 || bp.Levels[0].DefaultIdentifier != "F" {
		t.Errorf("levels = %+v", bp.Levels)
	}
	if len(bp.Stages) != 1 || bp.Stages[0].DefaultGithubRepo != "systems-foundations" {
		t.Errorf("stages = %+v", bp.Stages)
	}
	if len(bp.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(bp.Projects))
	}
	second := bp.Projects[1]
	if len(second.Prerequisites) != 1 || second.Prerequisites[0] != "F1" {
		t.Errorf("prerequisites = %v, want [F1]", second.Prerequisites)
	}
	if second.Order == nil || *second.Order != 1 {
		t.Errorf("order = %v, want 1", second.Order)
	}
}

func TestLoadFromFileRequiresName(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "anon.yaml", "description: nameless")

	l := NewLoader()
	if err := l.LoadFromFile(filepath.Join(dir, "anon.yaml")); err == nil {
		t.Fatal("expected error for blueprint without a name")
	}
}

func TestGetUnknownSlug(t *testing.T) {
	l := NewLoader()
	if bp := l.Get("missing"); bp != nil {
		t.Fatalf("Get(missing) = %+v, want nil", bp)
	}
}
