// SPDX-License-Identifier: MPL-2.0

package study

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kurso/internal/course"
	"kurso/internal/progress"
	"kurso/pkg/types"
)

type mode int

const (
	modeList mode = iota
	modeLesson
	modeQuiz
)

const storeTimeout = 5 * time.Second

type (
	// Model is the bubbletea model of a study session.
	Model struct {
		opts    Options
		order   []*course.Lesson
		summary *progress.Summary

		mode     mode
		list     list.Model
		viewport viewport.Model
		current  *course.Lesson
		quiz     *quizSession

		styles styles
		width  int
		height int
		ready  bool
		status string
		err    error
	}

	lessonItem struct {
		lesson *course.Lesson
		done   bool
	}

	// completionSavedMsg reports the result of persisting a completion.
	completionSavedMsg struct {
		lessonID types.Slug
		err      error
	}

	// attemptSavedMsg reports the result of persisting a quiz attempt.
	attemptSavedMsg struct {
		attempt progress.Attempt
		err     error
	}

	styles struct {
		title  lipgloss.Style
		status lipgloss.Style
		help   lipgloss.Style
		done   lipgloss.Style
	}
)

func (i lessonItem) Title() string {
	if i.done {
		return "✓ " + i.lesson.DisplayTitle()
	}
	return "  " + i.lesson.DisplayTitle()
}

func (i lessonItem) Description() string {
	desc := i.lesson.ID.String()
	if n := len(i.lesson.Doc.Fences); n == 1 {
		desc += " · 1 interactive block"
	} else if n > 1 {
		desc += fmt.Sprintf(" · %d interactive blocks", n)
	}
	return desc
}

func (i lessonItem) FilterValue() string { return i.lesson.DisplayTitle() }

// New assembles a study model from validated options. The model is not
// usable until the program delivers the first window size.
func New(opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	st := styles{
		title:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		status: renderer.NewStyle().Foreground(lipgloss.Color("#10B981")),
		help:   renderer.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		done:   renderer.NewStyle().Foreground(lipgloss.Color("#10B981")),
	}

	m := &Model{
		opts:   opts,
		order:  opts.Course.StudyOrder(),
		styles: st,
	}
	m.loadSummary()

	delegate := list.NewDefaultDelegate()
	l := list.New(m.listItems(), delegate, 0, 0)
	l.Title = opts.Course.Manifest.Title
	l.SetShowStatusBar(false)
	m.list = l
	return m, nil
}

// loadSummary refreshes the completion snapshot from the store. Without a
// store the summary stays empty and everything reads as not completed.
func (m *Model) loadSummary() {
	if m.opts.Store == nil {
		m.summary = &progress.Summary{}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	s, err := m.opts.Store.Summary(ctx, m.opts.Course.ID(), m.opts.learner())
	if err != nil {
		m.summary = &progress.Summary{}
		m.status = fmt.Sprintf("progress unavailable: %v", err)
		return
	}
	m.summary = s
}

func (m *Model) listItems() []list.Item {
	items := make([]list.Item, len(m.order))
	for i, l := range m.order {
		items[i] = lessonItem{lesson: l, done: m.summary.Completed(l.ID)}
	}
	return items
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-3)
		if m.current != nil {
			m.setLessonContent(m.current)
		}
		if m.mode == modeQuiz && m.quiz != nil {
			return m, m.quiz.form.Init()
		}
		return m, nil

	case completionSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not save completion: %v", msg.err)
			return m, nil
		}
		m.loadSummary()
		m.list.SetItems(m.listItems())
		m.status = fmt.Sprintf("marked %s complete", msg.lessonID)
		return m, nil

	case attemptSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not save quiz attempt: %v", msg.err)
			return m, nil
		}
		m.loadSummary()
		m.list.SetItems(m.listItems())
		return m, nil
	}

	switch m.mode {
	case modeList:
		return m.updateList(msg)
	case modeLesson:
		return m.updateLesson(msg)
	case modeQuiz:
		return m.updateQuiz(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c":
			if !m.list.SettingFilter() {
				return m, tea.Quit
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(lessonItem); ok {
				m.openLesson(item.lesson)
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateLesson(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			m.mode = modeList
			m.current = nil
			m.status = ""
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		case "c":
			return m, m.markComplete(m.current.ID)
		case "t":
			if session := newQuizSession(m.current); session != nil {
				m.quiz = session
				m.mode = modeQuiz
				return m, session.form.Init()
			}
			m.status = "this lesson has no quiz"
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) openLesson(l *course.Lesson) {
	m.current = l
	m.mode = modeLesson
	m.status = ""
	if m.ready {
		m.setLessonContent(l)
	}
}

func (m *Model) setLessonContent(l *course.Lesson) {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	content, err := RenderLesson(l.Doc, RenderOptions{Width: width, Theme: m.opts.Theme})
	if err != nil {
		content = fmt.Sprintf("could not render lesson: %v", err)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// markComplete persists a completion off the update loop.
func (m *Model) markComplete(id types.Slug) tea.Cmd {
	if m.opts.Store == nil {
		m.status = "progress store disabled"
		return nil
	}
	store, courseID, learner := m.opts.Store, m.opts.Course.ID(), m.opts.learner()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := store.MarkComplete(ctx, courseID, id, learner)
		return completionSavedMsg{lessonID: id, err: err}
	}
}

// recordAttempt persists a graded quiz off the update loop.
func (m *Model) recordAttempt(a progress.Attempt) tea.Cmd {
	if m.opts.Store == nil {
		return nil
	}
	store := m.opts.Store
	a.CourseID = m.opts.Course.ID()
	a.Learner = m.opts.learner()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		saved, err := store.RecordAttempt(ctx, a)
		return attemptSavedMsg{attempt: saved, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	switch m.mode {
	case modeLesson:
		header := m.styles.title.Render(m.current.DisplayTitle())
		help := m.styles.help.Render("↑/↓ scroll · c complete · t quiz · esc back")
		if m.status != "" {
			help = m.styles.status.Render(m.status)
		}
		return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), help)
	case modeQuiz:
		return m.quiz.view(m.styles, m.width)
	default:
		footer := m.styles.help.Render(fmt.Sprintf(
			"%d/%d complete · enter open · q quit",
			m.summary.CompletedCount(), len(m.order)))
		if m.status != "" {
			footer = m.styles.status.Render(m.status)
		}
		return m.list.View() + "\n" + footer
	}
}
