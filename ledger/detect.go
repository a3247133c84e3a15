package ledger

import (
	"context"
	"regexp"
	"strings"

	"github.com/websublime/workspace-tools-sub006/vcs"
)

// conventionalHeader matches a conventional-commit first line:
// "type(scope)!?: description". scope is optional and unused here — the
// affected package set instead comes from the files each commit touched.
var conventionalHeader = regexp.MustCompile(`^([a-z]+)(\([^)]*\))?(!)?:\s*(.+)$`)

const breakingTrailer = "BREAKING CHANGE:"

// parsedHeader is the result of parsing a commit's first message line.
type parsedHeader struct {
	changeType  ChangeType
	description string
	breaking    bool
}

func parseConventionalHeader(message string) parsedHeader {
	lines := strings.SplitN(message, "\n", 2)
	first := strings.TrimSpace(lines[0])

	breaking := false
	if len(lines) > 1 && strings.Contains(lines[1], breakingTrailer) {
		breaking = true
	}

	m := conventionalHeader.FindStringSubmatch(first)
	if m == nil {
		return parsedHeader{changeType: Unknown, description: first, breaking: breaking}
	}

	bang := m[3] == "!"
	return parsedHeader{
		changeType:  conventionalTypeOf(m[1]),
		description: m[4],
		breaking:    breaking || bang,
	}
}

// DetectChangesBetween implements spec.md §4.6's detect_changes_between:
// it asks the VCS adapter for the file-status diff and commit log between
// from and to, classifies the touched files into scopes, and allocates
// one Change per parsed commit per affected package. Changes produced
// this way are not persisted — the caller decides whether to store them.
//
// The adapter reports the touched-file diff for the whole ref range
// rather than per commit, so every commit in the range is attributed the
// same affected-package set: the range's touched files. This matches
// how the scheduler and planner consume detection results (as a batch
// over a release range) and avoids an N+1 per-commit diff call the
// adapter interface doesn't expose.
func DetectChangesBetween(ctx context.Context, adapter vcs.Adapter, detector *ScopeDetector, from, to string) ([]Change, error) {
	if adapter == nil {
		return nil, &NoGitRepositoryError{}
	}

	files, err := adapter.DiffFilesBetween(ctx, from, to)
	if err != nil {
		return nil, &InvalidReferenceError{Ref: from + ".." + to, Cause: err}
	}

	packages := make(map[string]bool)
	scopeKinds := make(map[ScopeKind]bool)
	for _, f := range files {
		scope := detector.ScopeOf(f.Path)
		scopeKinds[scope.Kind] = true
		if scope.Kind == ScopePackage {
			packages[scope.Name] = true
		}
	}

	commits, err := adapter.CommitsBetween(ctx, from, to)
	if err != nil {
		return nil, &InvalidReferenceError{Ref: from + ".." + to, Cause: err}
	}
	if len(commits) == 0 {
		return nil, &NoChangesFoundError{From: from, To: to}
	}

	targets := affectedTargets(packages, scopeKinds)

	var changes []Change
	for _, c := range commits {
		header := parseConventionalHeader(c.Message)
		ts, _ := parseCommitDate(c.AuthorDate)
		for _, target := range targets {
			changes = append(changes, Change{
				ID:          newChangeID(),
				Package:     target,
				ChangeType:  header.changeType,
				Description: header.description,
				Breaking:    header.breaking,
				Timestamp:   ts,
				Author:      commitAuthor(c),
			})
		}
	}

	return changes, nil
}

func affectedTargets(packages map[string]bool, scopeKinds map[ScopeKind]bool) []string {
	var out []string
	for name := range packages {
		out = append(out, name)
	}
	if scopeKinds[ScopeMonorepo] {
		out = append(out, monorepoPackage)
	}
	if scopeKinds[ScopeRoot] {
		out = append(out, rootPackage)
	}
	return out
}

func commitAuthor(c vcs.Commit) string {
	if c.AuthorName == "" {
		return c.AuthorEmail
	}
	if c.AuthorEmail == "" {
		return c.AuthorName
	}
	return c.AuthorName + " <" + c.AuthorEmail + ">"
}
