// Package manifest implements C2: reading and writing a package manifest
// document ({name, version, dependencies}) while preserving unknown fields
// and field ordering on write, per spec.md §4.2.
//
// The teacher's own manifest.go (golang-dep) decodes into a plain Go map and
// re-encodes with encoding/json, which loses field order and silently drops
// anything it doesn't model. That is explicitly disallowed here, so reads
// and writes are done with gjson/sjson, which edit a JSON document
// surgically and leave everything else byte-for-byte untouched.
package manifest

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DependencyField names one of the dependency maps a manifest document may
// carry.
type DependencyField string

const (
	FieldDependencies    DependencyField = "dependencies"
	FieldDevDependencies DependencyField = "devDependencies"
	FieldOptionalDeps    DependencyField = "optionalDependencies"
	FieldPeerDeps        DependencyField = "peerDependencies"
)

// DependencyFilter controls which dependency maps are read into
// Manifest.Dependencies (spec.md §4.2: "Dependency map variants accepted:
// production, development, optional").
type DependencyFilter struct {
	IncludeProduction bool
	IncludeDev        bool
	IncludeOptional   bool
	IncludePeer       bool
}

// DefaultDependencyFilter reads production and optional dependencies, the
// set that participates in a monorepo's own internal version resolution;
// dev dependencies are excluded by default since they rarely carry internal
// workspace edges worth graphing.
func DefaultDependencyFilter() DependencyFilter {
	return DependencyFilter{IncludeProduction: true, IncludeOptional: true}
}

// AllDependencyFilter reads every dependency map variant.
func AllDependencyFilter() DependencyFilter {
	return DependencyFilter{IncludeProduction: true, IncludeDev: true, IncludeOptional: true, IncludePeer: true}
}

func (f DependencyFilter) fields() []DependencyField {
	var fields []DependencyField
	if f.IncludeProduction {
		fields = append(fields, FieldDependencies)
	}
	if f.IncludeDev {
		fields = append(fields, FieldDevDependencies)
	}
	if f.IncludeOptional {
		fields = append(fields, FieldOptionalDeps)
	}
	if f.IncludePeer {
		fields = append(fields, FieldPeerDeps)
	}
	return fields
}

// Dependency is one declared dependency range, as read from a manifest
// document (spec.md §3 Dependency, prior to registry interning).
type Dependency struct {
	Name  string
	Range string
	Field DependencyField
}

// Manifest is the decoded {name, version, dependencies} view of a package
// manifest document, plus the raw document bytes needed to write back
// preserving everything this type doesn't model.
type Manifest struct {
	Name         string
	Version      string
	Dependencies []Dependency

	raw []byte
}

// Parse decodes a manifest document according to filter. Dependencies
// within a single field are returned in the document's own key order;
// across fields they are concatenated in the order named in
// DependencyFilter.fields, each tagged with which field it came from.
// Duplicate names across *different* fields are both retained — it is the
// caller's job to decide; duplicates within the *same* field are rejected
// (spec.md §3 Package "duplicates by name forbidden").
func Parse(doc []byte, filter DependencyFilter) (*Manifest, error) {
	if !gjson.ValidBytes(doc) {
		return nil, &ParseError{Cause: errors.New("not valid JSON")}
	}

	name := gjson.GetBytes(doc, "name")
	if !name.Exists() || name.String() == "" {
		return nil, &ParseError{Cause: errors.New("manifest is missing a non-empty \"name\"")}
	}

	version := gjson.GetBytes(doc, "version")

	m := &Manifest{
		Name:    name.String(),
		Version: version.String(),
		raw:     doc,
	}

	for _, field := range filter.fields() {
		obj := gjson.GetBytes(doc, string(field))
		if !obj.Exists() || !obj.IsObject() {
			continue
		}
		seen := make(map[string]bool)
		var parseErr error
		obj.ForEach(func(key, value gjson.Result) bool {
			depName := key.String()
			if seen[depName] {
				parseErr = &ParseError{Cause: errors.Errorf("duplicate dependency %q in %s", depName, field)}
				return false
			}
			seen[depName] = true
			m.Dependencies = append(m.Dependencies, Dependency{
				Name:  depName,
				Range: value.String(),
				Field: field,
			})
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
	}

	return m, nil
}

// RawDocument returns the manifest's backing document bytes as last parsed
// or written.
func (m *Manifest) RawDocument() []byte {
	return m.raw
}

// DependencyNames returns the sorted, de-duplicated set of dependency names
// across all parsed fields.
func (m *Manifest) DependencyNames() []string {
	set := make(map[string]bool, len(m.Dependencies))
	for _, d := range m.Dependencies {
		set[d.Name] = true
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RangeFor returns the range declared for name in the given field, and
// whether it was found.
func (m *Manifest) RangeFor(name string, field DependencyField) (string, bool) {
	for _, d := range m.Dependencies {
		if d.Name == name && d.Field == field {
			return d.Range, true
		}
	}
	return "", false
}

// WithVersion returns a copy of m with Version set to v and the change
// staged into the raw document (the name/shape of every other field is
// untouched).
func (m *Manifest) WithVersion(v string) (*Manifest, error) {
	raw, err := sjson.SetBytes(m.raw, "version", v)
	if err != nil {
		return nil, &WriteError{Cause: errors.Wrap(err, "setting version")}
	}
	clone := *m
	clone.Version = v
	clone.raw = raw
	return &clone, nil
}

// WithDependencyRange returns a copy of m with the range for (field, name)
// set to rng, preserving every other key and its ordering. If the
// dependency did not previously exist in that field, it is appended.
func (m *Manifest) WithDependencyRange(field DependencyField, name, rng string) (*Manifest, error) {
	path := string(field) + "." + sjsonEscape(name)
	raw, err := sjson.SetBytes(m.raw, path, rng)
	if err != nil {
		return nil, &WriteError{Cause: errors.Wrapf(err, "setting %s.%s", field, name)}
	}

	clone := *m
	clone.raw = raw
	clone.Dependencies = append([]Dependency(nil), m.Dependencies...)
	found := false
	for i, d := range clone.Dependencies {
		if d.Name == name && d.Field == field {
			clone.Dependencies[i].Range = rng
			found = true
			break
		}
	}
	if !found {
		clone.Dependencies = append(clone.Dependencies, Dependency{Name: name, Range: rng, Field: field})
	}
	return &clone, nil
}

// sjsonEscape escapes path separators sjson treats specially inside a key.
func sjsonEscape(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '.' || c == '*' || c == '?' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
