package ledger

import (
	"time"

	"github.com/google/uuid"
)

// newChangeID allocates an opaque 128-bit Change identifier (spec.md §3
// Change.id), grounded on untoldecay-BeadsLog's use of google/uuid for
// entity identifiers.
func newChangeID() string {
	return uuid.NewString()
}

// NewManualChange builds a Change for a caller (e.g. the CLI's "changes
// add" command) recording work by hand rather than through
// DetectChangesBetween, allocating its ID and timestamp.
func NewManualChange(pkg string, changeType ChangeType, description string, breaking bool) Change {
	return Change{
		ID:          newChangeID(),
		Package:     pkg,
		ChangeType:  changeType,
		Description: description,
		Breaking:    breaking,
		Timestamp:   time.Now(),
	}
}

// NewChangeset groups changes into a new Changeset, allocating its ID and
// CreatedAt timestamp (spec.md §3 Changeset).
func NewChangeset(summary string, changes []Change) Changeset {
	return Changeset{
		ID:        newChangeID(),
		Summary:   summary,
		Changes:   changes,
		CreatedAt: time.Now(),
	}
}

// parseCommitDate parses a vcs.Commit.AuthorDate (RFC2822/RFC1123Z, per
// vcsgit's formatting). An unparseable date yields the zero time rather
// than failing detection outright — a malformed author date on one
// commit shouldn't abort an otherwise-valid range.
func parseCommitDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
