package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/websublime/workspace-tools-sub006/ledger"
)

// changelogOrder is the canonical change_type grouping order of spec.md
// §4.7 "Changelog generation". Breaking is a synthetic first bucket
// collecting every change with Breaking==true regardless of its
// underlying ChangeType.
var changelogOrder = []ledger.ChangeType{
	ledger.Feature, ledger.Fix, ledger.Performance, ledger.Refactor,
	ledger.Documentation, ledger.Build, ledger.CI, ledger.Test,
	ledger.Style, ledger.Chore, ledger.Revert, ledger.Custom, ledger.Unknown,
}

// ChangelogConfig configures the header/entry templates of
// GenerateChangelog (spec.md §4.7).
type ChangelogConfig struct {
	// HeaderTemplate supports {package}, {version}, {date}. Defaults to
	// "## {package} {version} - {date}\n\n".
	HeaderTemplate string
	// EntryTemplate supports {type}, {description}, {breaking}, {issues},
	// {author}. Defaults to "- {description} ({type})\n".
	EntryTemplate string
	// UpdateExisting, when true and a changelog file already exists,
	// prepends the new section immediately after the file's own header
	// instead of creating a new file.
	UpdateExisting bool
	// FileName is the changelog's file name within the package directory.
	// Defaults to "CHANGELOG.md".
	FileName string
}

// DefaultChangelogConfig returns the canonical template set.
func DefaultChangelogConfig() ChangelogConfig {
	return ChangelogConfig{
		HeaderTemplate: "## {package} {version} - {date}\n\n",
		EntryTemplate:  "- {description} ({type})\n",
		FileName:       "CHANGELOG.md",
	}
}

// GenerateChangelog collates pkg's changes released at version (per
// store.ByVersion) and renders a section per spec.md §4.7.
func GenerateChangelog(ctx context.Context, store ledger.ChangeStore, pkg, version string, cfg ChangelogConfig, now time.Time) (string, error) {
	changes, err := store.ByVersion(ctx, pkg, version)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(renderTemplate(cfg.HeaderTemplate, map[string]string{
		"package": pkg,
		"version": version,
		"date":    now.Format("2006-01-02"),
	}))

	breaking := filterChanges(changes, func(c ledger.Change) bool { return c.Breaking })
	if len(breaking) > 0 {
		renderEntries(&b, breaking, cfg)
	}
	for _, t := range changelogOrder {
		bucket := filterChanges(changes, func(c ledger.Change) bool { return !c.Breaking && c.ChangeType == t })
		if len(bucket) > 0 {
			renderEntries(&b, bucket, cfg)
		}
	}

	return b.String(), nil
}

func filterChanges(changes []ledger.Change, pred func(ledger.Change) bool) []ledger.Change {
	var out []ledger.Change
	for _, c := range changes {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func renderEntries(b *strings.Builder, changes []ledger.Change, cfg ChangelogConfig) {
	for _, c := range changes {
		typeName := c.ChangeType.String()
		if c.ChangeType == ledger.Custom && c.CustomType != "" {
			typeName = c.CustomType
		}
		breakingMark := ""
		if c.Breaking {
			breakingMark = "BREAKING"
		}
		b.WriteString(renderTemplate(cfg.EntryTemplate, map[string]string{
			"type":        typeName,
			"description": c.Description,
			"breaking":    breakingMark,
			"author":      c.Author,
			"issues":      strings.Join(c.Issues, ", "),
		}))
	}
}

// WriteChangelog writes (or updates) pkgDir's changelog file with the
// section generated for pkg/version. When cfg.UpdateExisting is true and
// the file already exists, the new section is prepended immediately
// after the existing file's own first line (its header); otherwise a new
// file is written, overwriting anything previously there.
func WriteChangelog(ctx context.Context, store ledger.ChangeStore, pkgDir, pkg, version string, cfg ChangelogConfig, now time.Time) error {
	section, err := GenerateChangelog(ctx, store, pkg, version, cfg, now)
	if err != nil {
		return err
	}

	fileName := cfg.FileName
	if fileName == "" {
		fileName = "CHANGELOG.md"
	}
	path := filepath.Join(pkgDir, fileName)

	if cfg.UpdateExisting {
		existing, err := os.ReadFile(path)
		if err == nil {
			lines := strings.SplitN(string(existing), "\n", 2)
			header := lines[0] + "\n"
			rest := ""
			if len(lines) > 1 {
				rest = lines[1]
			}
			combined := header + "\n" + section + "\n" + rest
			if err := os.WriteFile(path, []byte(combined), 0o644); err != nil {
				return errors.Wrapf(err, "updating changelog for %s", pkg)
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "reading existing changelog for %s", pkg)
		}
	}

	content := fmt.Sprintf("# %s\n\n%s", pkg, section)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing changelog for %s", pkg)
	}
	return nil
}
