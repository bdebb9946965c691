// SPDX-License-Identifier: MPL-2.0

// Package study implements the interactive study TUI: a lesson list in
// prerequisite order, a glamour-rendered lesson reader, and a quiz player
// backed by the progress store. The same model serves the local `kurso
// study` command and SSH sessions.
package study

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kurso/internal/course"
	"kurso/internal/progress"
)

// ErrNoLessons is returned when a course has nothing to study.
var ErrNoLessons = errors.New("course has no studyable lessons")

// Options configure a study session.
type Options struct {
	// Course is the discovered course to study.
	Course *course.Course
	// Store persists completions and quiz attempts. Nil runs the session
	// without persistence.
	Store *progress.Store
	// Learner identifies the person studying. Empty means the local
	// default learner.
	Learner string
	// Theme is a glamour style name; empty auto-detects.
	Theme string
	// Renderer draws styled output. SSH sessions pass a per-session
	// renderer; nil uses the process default.
	Renderer *lipgloss.Renderer
}

// Validate reports whether the options can produce a session.
func (o Options) Validate() error {
	if o.Course == nil {
		return fmt.Errorf("study: course is required")
	}
	if len(o.Course.StudyOrder()) == 0 {
		return ErrNoLessons
	}
	return nil
}

func (o Options) learner() string {
	if o.Learner == "" {
		return progress.DefaultLearner
	}
	return o.Learner
}

// Run starts a local study session on the current terminal and blocks
// until the learner quits.
func Run(ctx context.Context, opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("study session: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
