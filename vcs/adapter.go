// Package vcs declares the VCS adapter interface consumed by the change
// ledger (C6) and version planner (C7), per spec.md §6. It is deliberately
// dependency-free so packages that only need to hold or pass around a
// handle (Workspace) don't have to pull in a concrete VCS implementation;
// github.com/websublime/workspace-tools-sub006/vcsgit provides the
// go-git-backed implementation.
package vcs

import "context"

// FileStatus classifies how a file changed between two refs.
type FileStatus int

const (
	Added FileStatus = iota
	Modified
	Deleted
)

func (s FileStatus) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is one entry in a diff between two refs.
type FileChange struct {
	Path   string
	Status FileStatus
}

// Commit is one entry in the commit history between two refs.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	AuthorDate  string // RFC2822, per spec.md §6
	Message     string
}

// Adapter is the VCS surface the ledger and planner depend on. Concrete
// implementations live outside the core (spec.md §1 "out of scope").
type Adapter interface {
	CurrentSHA(ctx context.Context) (string, error)
	DiffFilesBetween(ctx context.Context, from, to string) ([]FileChange, error)
	CommitsBetween(ctx context.Context, from, to string) ([]Commit, error)
	CurrentBranch(ctx context.Context) (string, error)
	CreateTag(ctx context.Context, name, message string) error
}
