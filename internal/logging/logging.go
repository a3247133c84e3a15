// Package logging wraps a *logrus.Logger the way the teacher's log/logger.go
// wraps an io.Writer: a thin adapter adding field helpers (used by the CLI)
// to attribute log lines to a package or task, rather than a logging
// re-implementation.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger shared across components.
type Logger struct {
	*logrus.Logger
}

// New returns a Logger writing to w (os.Stderr if w is nil) with level and
// formatter configured for the given verbosity.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{Logger: l}
}

// WithPackage returns an entry tagged with the workspace package name.
func (l *Logger) WithPackage(name string) *logrus.Entry {
	return l.WithField("package", name)
}

// WithTask returns an entry tagged with the scheduler task name.
func (l *Logger) WithTask(name string) *logrus.Entry {
	return l.WithField("task", name)
}

// WithComponent returns an entry tagged with the owning subsystem, e.g.
// "depgraph", "planner", "scheduler".
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.WithField("component", name)
}
