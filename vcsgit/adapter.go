// Package vcsgit implements vcs.Adapter on top of github.com/go-git/go-git/v5,
// a pure-Go git implementation. Grounded on NatoNathan-shipyard's own use of
// go-git for its release tooling (see SPEC_FULL.md DOMAIN STACK) and on the
// adapter shape golang-dep/vcs_repo.go establishes (current rev, branch,
// tag creation) generalized to spec.md §6's Adapter interface.
package vcsgit

import (
	"context"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/websublime/workspace-tools-sub006/vcs"
)

// Adapter implements vcs.Adapter against a single local git repository.
type Adapter struct {
	repo *git.Repository
}

// Open opens the git repository rooted at (or above) path.
func Open(path string) (*Adapter, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &GitError{Op: "open", Cause: err}
	}
	return &Adapter{repo: repo}, nil
}

var _ vcs.Adapter = (*Adapter)(nil)

// CurrentSHA returns the hash HEAD currently points to.
func (a *Adapter) CurrentSHA(ctx context.Context) (string, error) {
	head, err := a.repo.Head()
	if err != nil {
		return "", &GitError{Op: "current-sha", Cause: err}
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns HEAD's short branch name, or its hash if detached.
func (a *Adapter) CurrentBranch(ctx context.Context) (string, error) {
	head, err := a.repo.Head()
	if err != nil {
		return "", &GitError{Op: "current-branch", Cause: err}
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

// CreateTag creates an annotated tag named name at HEAD with message.
func (a *Adapter) CreateTag(ctx context.Context, name, message string) error {
	head, err := a.repo.Head()
	if err != nil {
		return &GitError{Op: "create-tag", Cause: err}
	}
	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{Message: message}
	}
	if _, err := a.repo.CreateTag(name, head.Hash(), opts); err != nil {
		return &GitError{Op: "create-tag", Cause: err}
	}
	return nil
}

// resolve turns "" into HEAD and anything else into a commit hash.
func (a *Adapter) resolve(ref string) (*plumbing.Hash, error) {
	if ref == "" {
		head, err := a.repo.Head()
		if err != nil {
			return nil, err
		}
		h := head.Hash()
		return &h, nil
	}
	h, err := a.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, &InvalidReferenceError{Ref: ref, Cause: err}
	}
	return h, nil
}

// DiffFilesBetween returns the file-status diff between from and to (empty
// to means the HEAD commit; the working tree is not compared).
func (a *Adapter) DiffFilesBetween(ctx context.Context, from, to string) ([]vcs.FileChange, error) {
	fromHash, err := a.resolve(from)
	if err != nil {
		return nil, err
	}
	toHash, err := a.resolve(to)
	if err != nil {
		return nil, err
	}

	fromCommit, err := a.repo.CommitObject(*fromHash)
	if err != nil {
		return nil, &GitError{Op: "diff", Cause: err}
	}
	toCommit, err := a.repo.CommitObject(*toHash)
	if err != nil {
		return nil, &GitError{Op: "diff", Cause: err}
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, &GitError{Op: "diff", Cause: err}
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, &GitError{Op: "diff", Cause: err}
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, &GitError{Op: "diff", Cause: err}
	}

	out := make([]vcs.FileChange, 0, len(changes))
	for _, c := range changes {
		action, err := c.Action()
		if err != nil {
			return nil, &GitError{Op: "diff", Cause: err}
		}
		fc := vcs.FileChange{}
		switch action {
		case merkletrie.Insert:
			fc.Status = vcs.Added
			fc.Path = c.To.Name
		case merkletrie.Delete:
			fc.Status = vcs.Deleted
			fc.Path = c.From.Name
		default:
			fc.Status = vcs.Modified
			fc.Path = c.To.Name
		}
		out = append(out, fc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// CommitsBetween returns the commit history in (from, to], oldest first.
func (a *Adapter) CommitsBetween(ctx context.Context, from, to string) ([]vcs.Commit, error) {
	toHash, err := a.resolve(to)
	if err != nil {
		return nil, err
	}

	var fromHash *plumbing.Hash
	if from != "" {
		fromHash, err = a.resolve(from)
		if err != nil {
			return nil, err
		}
	}

	iter, err := a.repo.Log(&git.LogOptions{From: *toHash})
	if err != nil {
		return nil, &GitError{Op: "commits-between", Cause: err}
	}
	defer iter.Close()

	var commits []vcs.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if fromHash != nil && c.Hash == *fromHash {
			return errStopIteration
		}
		commits = append(commits, vcs.Commit{
			Hash:        c.Hash.String(),
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			AuthorDate:  c.Author.When.Format(time.RFC1123Z),
			Message:     c.Message,
		})
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, &GitError{Op: "commits-between", Cause: err}
	}

	// iter walks newest-first; reverse for oldest-first per spec.md §6.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// errStopIteration short-circuits object.Commit.ForEach once the boundary
// commit (exclusive lower bound) is reached.
type stopIteration struct{}

func (stopIteration) Error() string { return "stop" }

var errStopIteration = stopIteration{}
