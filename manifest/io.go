package manifest

import (
	"os"

	"github.com/pkg/errors"
)

// ReadFile reads and parses the manifest at path.
func ReadFile(path string, filter DependencyFilter) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Cause: err}
	}
	m, err := Parse(data, filter)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Cause: err}
	}
	return m, nil
}

// WriteFile writes m's current raw document to path, preserving the
// original file mode if the file already exists.
func WriteFile(path string, m *Manifest) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode()
	}
	if err := os.WriteFile(path, m.RawDocument(), mode); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// Snapshot captures a manifest's raw bytes for later rollback (used by the
// planner's atomic apply, spec.md §4.7).
type Snapshot struct {
	Path string
	Data []byte
}

// TakeSnapshot reads path's current bytes without parsing them.
func TakeSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "snapshotting %s", path)
	}
	return Snapshot{Path: path, Data: data}, nil
}

// Restore writes the snapshot's original bytes back to its path.
func (s Snapshot) Restore() error {
	if err := os.WriteFile(s.Path, s.Data, 0o644); err != nil {
		return errors.Wrapf(err, "restoring %s", s.Path)
	}
	return nil
}
