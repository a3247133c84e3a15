package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is a ChangeStore rooted at a directory, serializing each
// changeset as a single JSON document named by id (spec.md §4.6
// "Persistence").
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir. dir is created on first
// write if it does not already exist.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

var _ ChangeStore = (*FileStore)(nil)

func (s *FileStore) pathFor(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Store(ctx context.Context, cs Changeset) error {
	if cs.ID == "" {
		return &InvalidChangesetError{Reason: "id must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &WriteError{Path: s.dir, Cause: err}
	}

	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return &SerializeError{Cause: err}
	}

	path := s.pathFor(cs.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Changeset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(id)
}

func (s *FileStore) readLocked(id string) (Changeset, bool, error) {
	path := s.pathFor(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Changeset{}, false, nil
		}
		return Changeset{}, false, &ReadError{Path: path, Cause: err}
	}
	var cs Changeset
	if err := json.Unmarshal(data, &cs); err != nil {
		return Changeset{}, false, &ParseError{Path: path, Cause: err}
	}
	return cs, true, nil
}

func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.pathFor(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &InvalidChangesetError{Reason: "no changeset with id " + id}
		}
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

func (s *FileStore) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ReadError{Path: s.dir, Cause: err}
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) All(ctx context.Context) ([]Changeset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	out := make([]Changeset, 0, len(ids))
	for _, id := range ids {
		cs, ok, err := s.readLocked(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (s *FileStore) filter(pred func(Change) bool) ([]Change, error) {
	all, err := s.All(context.Background())
	if err != nil {
		return nil, err
	}
	var out []Change
	for _, cs := range all {
		for _, c := range cs.Changes {
			if pred(c) {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) ByPackage(ctx context.Context, pkg string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.Package == pkg })
}

func (s *FileStore) ByVersion(ctx context.Context, pkg, version string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.Package == pkg && c.ReleaseVersion == version })
}

func (s *FileStore) ByEnvironment(ctx context.Context, env string) ([]Change, error) {
	return s.filter(func(c Change) bool { return c.AppliesToEnvironment(env) })
}

func (s *FileStore) UnreleasedChanges(ctx context.Context, env string) ([]Change, error) {
	return s.filter(func(c Change) bool {
		if !c.Unreleased() {
			return false
		}
		return env == "" || c.AppliesToEnvironment(env)
	})
}

func (s *FileStore) MarkReleased(ctx context.Context, pkg, version string, dryRun bool) ([]Change, error) {
	return s.markReleased(func(c Change) bool { return c.Package == pkg && c.Unreleased() }, version, dryRun)
}

func (s *FileStore) MarkReleasedForEnvironment(ctx context.Context, pkg, version, env string, dryRun bool) ([]Change, error) {
	return s.markReleased(func(c Change) bool {
		return c.Package == pkg && c.Unreleased() && c.AppliesToEnvironment(env)
	}, version, dryRun)
}

func (s *FileStore) MarkSpecificChangesAsReleased(ctx context.Context, ids []string, version string, dryRun bool) ([]Change, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.markReleased(func(c Change) bool { return want[c.ID] && c.Unreleased() }, version, dryRun)
}

func (s *FileStore) markReleased(pred func(Change) bool, version string, dryRun bool) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ids()
	if err != nil {
		return nil, err
	}

	var affected []Change
	for _, id := range ids {
		cs, ok, err := s.readLocked(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
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
			data, err := json.MarshalIndent(cs, "", "  ")
			if err != nil {
				return nil, &SerializeError{Cause: err}
			}
			path := s.pathFor(id)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return nil, &WriteError{Path: path, Cause: err}
			}
		}
	}

	sort.Slice(affected, func(i, j int) bool { return affected[i].ID < affected[j].ID })
	return affected, nil
}
