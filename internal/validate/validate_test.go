package validate

import (
	"strings"
	"testing"
)

func TestIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"R1_2-a", true},
		{"abc123", true},
		{"bad id!", false},
		{"has.dot", false},
		{strings.Repeat("a", 20), true},
		{strings.Repeat("a", 21), false},
	}

	for _, c := range cases {
		if got := Identifier(c.in); got != c.want {
			t.Errorf("Identifier(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRepoName(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"my-repo", true},
		{"my.repo_v2", true},
		{"my repo", false},
		{"repo/sub", false},
		{strings.Repeat("r", 100), true},
		{strings.Repeat("r", 101), false},
	}

	for _, c := range cases {
		if got := RepoName(c.in); got != c.want {
			t.Errorf("RepoName(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGithubUsername(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"octocat", true},
		{"oct-o-cat", true},
		{"a", true},
		{"-leading", false},
		{"trailing-", false},
		{"under_score", false},
		{strings.Repeat("u", 39), true},
		{strings.Repeat("u", 40), false},
	}

	for _, c := range cases {
		if got := GithubUsername(c.in); got != c.want {
			t.Errorf("GithubUsername(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?x=1", true},
		{"not a url", false},
		{"example.com", false},
		{"", false},
	}

	for _, c := range cases {
		if got := URL(c.in); got != c.want {
			t.Errorf("URL(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  x  "); got != "x" {
		t.Errorf("Normalize collapsed to %q", got)
	}
	if got := Normalize("   "); got != "" {
		t.Errorf("expected empty string for all-whitespace, got %q", got)
	}
}
