// SPDX-License-Identifier: MPL-2.0

package study

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"kurso/internal/course"
	"kurso/internal/progress"
	"kurso/pkg/fence"
)

type (
	// quizSession plays every quiz fence of one lesson in document order.
	quizSession struct {
		lesson  *course.Lesson
		quizzes []quizEntry
		idx     int

		form     *huh.Form
		single   string
		multi    []string
		answered bool
		last     quizResult
		results  []quizResult
	}

	quizEntry struct {
		quiz       *fence.Quiz
		fenceIndex int
	}

	quizResult struct {
		score int
		total int
	}
)

// newQuizSession collects the lesson's parseable quiz fences. It returns
// nil when the lesson has none; broken quizzes are lint's concern, not the
// study session's.
func newQuizSession(l *course.Lesson) *quizSession {
	var entries []quizEntry
	for _, b := range l.Doc.Fences {
		if b.Type != fence.TypeQuiz {
			continue
		}
		cfg, verrs := fence.Parse(b)
		if cfg == nil || verrs.HasErrors() {
			continue
		}
		if q, ok := cfg.(*fence.Quiz); ok {
			entries = append(entries, quizEntry{quiz: q, fenceIndex: b.Index})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	s := &quizSession{lesson: l, quizzes: entries}
	s.buildForm()
	return s
}

// buildForm creates the huh form for the current quiz. Option values are
// option indices so grading survives duplicate option texts.
func (s *quizSession) buildForm() {
	q := s.quizzes[s.idx].quiz
	opts := make([]huh.Option[string], len(q.Options))
	for i, o := range q.Options {
		opts[i] = huh.NewOption(o.Text, strconv.Itoa(i))
	}

	s.single = ""
	s.multi = nil
	var field huh.Field
	if q.Multiple {
		field = huh.NewMultiSelect[string]().
			Title(q.Title()).
			Description("select all that apply").
			Options(opts...).
			Value(&s.multi)
	} else {
		field = huh.NewSelect[string]().
			Title(q.Title()).
			Options(opts...).
			Value(&s.single)
	}
	s.form = huh.NewForm(huh.NewGroup(field))
	s.answered = false
}

// selected returns the chosen option indices for the current quiz.
func (s *quizSession) selected() map[int]bool {
	chosen := make(map[int]bool)
	if s.quizzes[s.idx].quiz.Multiple {
		for _, v := range s.multi {
			if i, err := strconv.Atoi(v); err == nil {
				chosen[i] = true
			}
		}
		return chosen
	}
	if i, err := strconv.Atoi(s.single); err == nil {
		chosen[i] = true
	}
	return chosen
}

// grade scores the current quiz: every option correctly classified —
// selected when correct, left alone when not — earns a point. A
// single-choice quiz therefore scores full marks exactly when the one
// correct option was picked.
func (s *quizSession) grade() quizResult {
	q := s.quizzes[s.idx].quiz
	chosen := s.selected()
	r := quizResult{total: len(q.Options)}
	for i, o := range q.Options {
		if chosen[i] == o.Correct {
			r.score++
		}
	}
	s.last = r
	s.results = append(s.results, r)
	s.answered = true
	return r
}

// perfect reports whether the last graded answer classified every option
// correctly.
func (s *quizSession) perfect() bool { return s.last.score == s.last.total }

// next advances to the following quiz, returning false when the session is
// finished.
func (s *quizSession) next() bool {
	if s.idx+1 >= len(s.quizzes) {
		return false
	}
	s.idx++
	s.buildForm()
	return true
}

// updateQuiz drives the quiz player: the form until submission, then the
// result screen until the learner moves on.
func (m *Model) updateQuiz(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.quiz

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.quiz = nil
			m.mode = modeLesson
			return m, nil
		}
		if s.answered && key.String() == "enter" {
			if s.next() {
				return m, s.form.Init()
			}
			m.status = s.summaryLine()
			m.quiz = nil
			m.mode = modeLesson
			return m, nil
		}
	}
	if s.answered {
		return m, nil
	}

	f, cmd := s.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		s.form = form
	}
	if s.form.State == huh.StateCompleted {
		r := s.grade()
		attempt := progress.Attempt{
			LessonID:   m.current.ID,
			FenceIndex: s.quizzes[s.idx].fenceIndex,
			Score:      r.score,
			Total:      r.total,
		}
		return m, tea.Batch(cmd, m.recordAttempt(attempt))
	}
	return m, cmd
}

// summaryLine reports the whole session once every quiz was answered.
func (s *quizSession) summaryLine() string {
	score, total := 0, 0
	for _, r := range s.results {
		score += r.score
		total += r.total
	}
	return fmt.Sprintf("quiz finished: %d/%d", score, total)
}

// view renders either the active form or the result screen.
func (s *quizSession) view(st styles, width int) string {
	q := s.quizzes[s.idx].quiz
	header := st.title.Render(fmt.Sprintf("Quiz %d of %d", s.idx+1, len(s.quizzes)))

	if !s.answered {
		return header + "\n\n" + s.form.View()
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	if s.perfect() {
		sb.WriteString(st.done.Render("Correct!"))
	} else {
		sb.WriteString(fmt.Sprintf("Score: %d/%d", s.last.score, s.last.total))
	}
	sb.WriteString("\n")

	chosen := s.selected()
	for i, o := range q.Options {
		marker := "  "
		switch {
		case o.Correct:
			marker = "✓ "
		case chosen[i]:
			marker = "✗ "
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", marker, o.Text))
		if chosen[i] && o.Explanation != "" {
			sb.WriteString(st.help.Render("    " + o.Explanation))
			sb.WriteString("\n")
		}
	}
	if q.Explanation != "" {
		sb.WriteString("\n")
		sb.WriteString(st.help.Render(wrap(q.Explanation, width)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(st.help.Render("enter continue · esc back to lesson"))
	return sb.String()
}

// wrap is a crude word wrapper for explanation paragraphs; lipgloss
// handles styling, not reflow, and explanations are plain prose.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	var sb strings.Builder
	line := 0
	for i, w := range words {
		if line > 0 && line+1+len(w) > width {
			sb.WriteByte('\n')
			line = 0
		} else if i > 0 {
			sb.WriteByte(' ')
			line++
		}
		sb.WriteString(w)
		line += len(w)
	}
	return sb.String()
}
