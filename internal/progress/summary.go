// SPDX-License-Identifier: MPL-2.0

package progress

import (
	"context"
	"fmt"
	"time"

	"kurso/pkg/types"
)

// Score is a quiz result as answered-correctly over question count.
type Score struct {
	Score int
	Total int
}

// String renders the score as "3/4".
func (sc Score) String() string {
	return fmt.Sprintf("%d/%d", sc.Score, sc.Total)
}

// Percent returns the score as a fraction in [0, 1]; a zero Total yields 0.
func (sc Score) Percent() float64 {
	if sc.Total == 0 {
		return 0
	}
	return float64(sc.Score) / float64(sc.Total)
}

// betterThan reports whether a beats b. Attempts are compared by fraction so
// that scores stay comparable when a quiz gains or loses questions between
// attempts; ties go to the higher absolute score.
func (sc Score) betterThan(other Score) bool {
	if sc.Percent() != other.Percent() {
		return sc.Percent() > other.Percent()
	}
	return sc.Score > other.Score
}

// LessonSummary aggregates one learner's state for a single lesson.
type LessonSummary struct {
	LessonID     types.Slug
	Completed    bool
	CompletedAt  time.Time
	Attempts     int
	Best         Score
	Last         Score
	LastAnswered time.Time
}

// Summary aggregates one learner's state across a course.
type Summary struct {
	CourseID string
	Learner  string
	Lessons  map[types.Slug]*LessonSummary
}

// Lesson returns the summary for id, or an empty summary when the learner
// has no recorded state for it.
func (s *Summary) Lesson(id types.Slug) LessonSummary {
	if s == nil || s.Lessons == nil {
		return LessonSummary{LessonID: id}
	}
	if ls, ok := s.Lessons[id]; ok {
		return *ls
	}
	return LessonSummary{LessonID: id}
}

// Completed reports whether the learner completed the lesson with id.
func (s *Summary) Completed(id types.Slug) bool {
	return s.Lesson(id).Completed
}

// CompletedCount returns the number of completed lessons in the summary.
func (s *Summary) CompletedCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, ls := range s.Lessons {
		if ls.Completed {
			n++
		}
	}
	return n
}

// Summary loads the learner's aggregated progress for courseID: per-lesson
// completion plus best and most recent quiz scores.
func (s *Store) Summary(ctx context.Context, courseID, learner string) (*Summary, error) {
	if learner == "" {
		learner = DefaultLearner
	}

	sum := &Summary{
		CourseID: courseID,
		Learner:  learner,
		Lessons:  make(map[types.Slug]*LessonSummary),
	}
	lesson := func(id types.Slug) *LessonSummary {
		ls, ok := sum.Lessons[id]
		if !ok {
			ls = &LessonSummary{LessonID: id}
			sum.Lessons[id] = ls
		}
		return ls
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT lesson_id, completed_at
	FROM lesson_completions
	WHERE course_id = ? AND learner = ?
	`, courseID, learner)
	if err != nil {
		return nil, fmt.Errorf("load lesson completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var lessonID, completedAt string
		if err := rows.Scan(&lessonID, &completedAt); err != nil {
			return nil, fmt.Errorf("scan lesson completion: %w", err)
		}
		ls := lesson(types.Slug(lessonID))
		ls.Completed = true
		if t, err := time.Parse(time.RFC3339, completedAt); err == nil {
			ls.CompletedAt = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load lesson completions: %w", err)
	}

	attempts, err := s.db.QueryContext(ctx, `
	SELECT lesson_id, score, total, answered_at
	FROM quiz_attempts
	WHERE course_id = ? AND learner = ?
	ORDER BY answered_at, id
	`, courseID, learner)
	if err != nil {
		return nil, fmt.Errorf("load quiz attempts: %w", err)
	}
	defer func() { _ = attempts.Close() }()

	for attempts.Next() {
		var lessonID, answeredAt string
		var score, total int
		if err := attempts.Scan(&lessonID, &score, &total, &answeredAt); err != nil {
			return nil, fmt.Errorf("scan quiz attempt: %w", err)
		}

		ls := lesson(types.Slug(lessonID))
		sc := Score{Score: score, Total: total}
		ls.Attempts++
		if ls.Attempts == 1 || sc.betterThan(ls.Best) {
			ls.Best = sc
		}
		// Rows arrive in answered_at order, so the last row wins.
		ls.Last = sc
		if t, err := time.Parse(time.RFC3339, answeredAt); err == nil {
			ls.LastAnswered = t
		}
	}
	if err := attempts.Err(); err != nil {
		return nil, fmt.Errorf("load quiz attempts: %w", err)
	}

	return sum, nil
}
