package ledger

import (
	"context"
	"sort"
	"sync"
)

// ChangeStore is the polymorphic persistence interface of spec.md §4.6:
// get/store/remove a changeset by id, enumerate all, query by package,
// version, or environment, query unreleased changes, and mark changes
// released. MemoryStore and FileStore are the two provided variants.
type ChangeStore interface {
	Store(ctx context.Context, cs Changeset) error
	Get(ctx context.Context, id string) (Changeset, bool, error)
	Remove(ctx context.Context, id string) error
	All(ctx context.Context) ([]Changeset, error)

	ByPackage(ctx context.Context, pkg string) ([]Change, error)
	ByVersion(ctx context.Context, pkg, version string) ([]Change, error)
	ByEnvironment(ctx context.Context, env string) ([]Change, error)

	// UnreleasedChanges returns every unreleased Change, optionally
	// filtered to those applying to env (env == "" disables the filter).
	UnreleasedChanges(ctx context.Context, env string) ([]Change, error)

	// MarkReleased sets ReleaseVersion on every currently-unreleased
	// Change for pkg. With dryRun, the would-be-modified set is returned
	// without writing (spec.md §4.6 mark_released).
	MarkReleased(ctx context.Context, pkg, version string, dryRun bool) ([]Change, error)

	// MarkReleasedForEnvironment is MarkReleased restricted to changes that
	// apply to env, so a release to one environment (spec.md §8 Scenario 5,
	// e.g. "staging") never marks a change scoped to a different
	// environment as released.
	MarkReleasedForEnvironment(ctx context.Context, pkg, version, env string, dryRun bool) ([]Change, error)

	// MarkSpecificChangesAsReleased is MarkReleased restricted to a
	// caller-supplied id set (spec.md §4.6
	// mark_specific_changes_as_released).
	MarkSpecificChangesAsReleased(ctx context.Context, ids []string, version string, dryRun bool) ([]Change, error)
}

// MemoryStore is an in-process ChangeStore backed by a map, guarded by a
// mutex per spec.md §5's single-writer-caller contract (the mutex guards
// against accidental concurrent misuse, it is not a concurrency feature).
type MemoryStore struct {
	mu         sync.Mutex
	changesets map[string]Changeset
	order      []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{changesets: make(map[string]Changeset)}
}

var _ ChangeStore = (*MemoryStore)(nil)

func (s *MemoryStore) Store(ctx context.Context, cs Changeset) error {
	if cs.ID == "" {
		return &InvalidChangesetError{Reason: "id must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.changesets[cs.ID]; !exists {
		s.order = append(s.order, cs.ID)
	}
	s.changesets[cs.ID] = cs
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Changeset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.changesets[id]
	return cs, ok, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.changesets[id]; !ok {
		return &InvalidChangesetError{Reason: "no changeset with id " + id}
	}
	delete(s.changesets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Changeset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Changeset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.changesets[id])
	}
	return out, nil
}

func (s *MemoryStore) ByPackage(ctx context.Context, pkg string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.Package == pkg })
}

func (s *MemoryStore) ByVersion(ctx context.Context, pkg, version string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.Package == pkg && c.ReleaseVersion == version })
}

func (s *MemoryStore) ByEnvironment(ctx context.Context, env string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.AppliesToEnvironment(env) })
}

func (s *MemoryStore) UnreleasedChanges(ctx context.Context, env string) ([]Change, error) {
	return s.filter(func(c Change) bool {
		if !c.Unreleased() {
			return false
		}
		return env == "" || c.AppliesToEnvironment(env)
	})
}

func (s *MemoryStore) filter(pred func(Change) bool) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Change
	for _, id := range s.order {
		for _, c := range s.changesets[id].Changes {
			if pred(c) {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) MarkReleased(ctx context.Context, pkg, version string, dryRun bool) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReleasedLocked(func(c Change) bool { return c.Package == pkg && c.Unreleased() }, version, dryRun)
}

func (s *MemoryStore) MarkReleasedForEnvironment(ctx context.Context, pkg, version, env string, dryRun bool) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReleasedLocked(func(c Change) bool {
		return c.Package == pkg && c.Unreleased() && c.AppliesToEnvironment(env)
	}, version, dryRun)
}

func (s *MemoryStore) MarkSpecificChangesAsReleased(ctx context.Context, ids []string, version string, dryRun bool) ([]Change, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReleasedLocked(func(c Change) bool { return want[c.ID] && c.Unreleased() }, version, dryRun)
}

func (s *MemoryStore) markReleasedLocked(pred func(Change) bool, version string, dryRun bool) ([]Change, error) {
	var affected []Change
	for _, csID := range s.order {
		cs := s.changesets[csID]
		changed := false
		for i := range cs.Changes {
			if !pred(cs.Changes[i]) {
				continue
			}
			if dryRun {
				affected = append(affected, cs.Changes[i])
				continue
			}
			cs.Changes[i].ReleaseVersion = version
			affected = append(affected, cs.Changes[i])
			changed = true
		}
		if changed {
			s.changesets[csID] = cs
		}
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i].ID < affected[j].ID })
	return affected, nil
}
