// Package validate holds the pure format predicates used by forms and the
// manager before any write is attempted. Empty input is valid everywhere:
// these fields are optional, required-ness is the caller's concern.
package validate

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	maxIdentifierLen = 20
	maxRepoNameLen   = 100
	maxUsernameLen   = 39
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	repoNameRe   = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	usernameRe   = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)
)

// Identifier reports whether s is a valid project identifier:
// empty, or at most 20 chars of letters, digits, underscore, hyphen.
func Identifier(s string) bool {
	if s == "" {
		return true
	}
	return len(s) <= maxIdentifierLen && identifierRe.MatchString(s)
}

// RepoName reports whether s is a valid repository name:
// empty, or at most 100 chars of letters, digits, dot, underscore, hyphen.
func RepoName(s string) bool {
	if s == "" {
		return true
	}
	return len(s) <= maxRepoNameLen && repoNameRe.MatchString(s)
}

// GithubUsername reports whether s is a valid external username:
// empty, or at most 39 alphanumeric chars with interior hyphens allowed
// (no leading or trailing hyphen).
func GithubUsername(s string) bool {
	if s == "" {
		return true
	}
	return len(s) <= maxUsernameLen && usernameRe.MatchString(s)
}

// URL reports whether s parses as a well-formed absolute URL.
func URL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Normalize trims surrounding whitespace, collapsing an all-whitespace value
// to the canonical absent representation (empty string).
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
