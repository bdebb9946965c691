// SPDX-License-Identifier: MPL-2.0

package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kurso/pkg/types"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// DefaultLearner is the learner id used for local (non-SSH) study sessions.
const DefaultLearner = "local"

// migrations holds the ordered schema migrations. Each entry is applied in
// its own transaction and recorded in schema_migrations, so a database
// created by an older binary is upgraded in place at open.
var migrations = []string{
	// v1: lesson completions + quiz attempts
	`
	CREATE TABLE IF NOT EXISTS lesson_completions (
		course_id    TEXT NOT NULL,
		lesson_id    TEXT NOT NULL,
		learner      TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		PRIMARY KEY (course_id, lesson_id, learner)
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id          TEXT PRIMARY KEY,
		course_id   TEXT NOT NULL,
		lesson_id   TEXT NOT NULL,
		learner     TEXT NOT NULL,
		fence_index INTEGER NOT NULL,
		score       INTEGER NOT NULL,
		total       INTEGER NOT NULL,
		answered_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quiz_attempts_course ON quiz_attempts(course_id, learner);
	`,
}

// Store provides SQLite persistence for learner progress.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the progress database at path and runs
// any pending schema migrations. The parent directory is created when
// missing so first use works without a separate setup step.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create progress directory: %w", err)
		}
	}

	// DSN pragmas apply to every connection in the pool. busy_timeout
	// avoids "database locked" errors when the HTTP and SSH servers share
	// the store with a local study session.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open progress database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping progress database: %w", err)
	}

	store := &Store{db: db, path: path}

	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate progress database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the underlying database.
func (s *Store) Path() string {
	return s.path
}

// migrate applies pending schema migrations, guarded by the
// schema_migrations version table.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1
		if version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, stmts); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}

	return nil
}

// MarkComplete records that learner finished lessonID of courseID. Marking
// an already-completed lesson keeps the original completion time.
func (s *Store) MarkComplete(ctx context.Context, courseID string, lessonID types.Slug, learner string) error {
	if learner == "" {
		learner = DefaultLearner
	}

	query := `
	INSERT INTO lesson_completions (course_id, lesson_id, learner, completed_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(course_id, lesson_id, learner) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		courseID, lessonID.String(), learner, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark lesson %q complete: %w", lessonID, err)
	}
	return nil
}

// Attempt is one submitted quiz run. ID and AnsweredAt are filled by
// RecordAttempt when left zero.
type Attempt struct {
	ID         string
	CourseID   string
	LessonID   types.Slug
	Learner    string
	FenceIndex int
	Score      int
	Total      int
	AnsweredAt time.Time
}

// RecordAttempt appends a quiz attempt and returns it with the generated id
// and timestamp filled in.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Learner == "" {
		a.Learner = DefaultLearner
	}
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now().UTC()
	}

	query := `
	INSERT INTO quiz_attempts (id, course_id, lesson_id, learner, fence_index, score, total, answered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.CourseID, a.LessonID.String(), a.Learner,
		a.FenceIndex, a.Score, a.Total, a.AnsweredAt.Format(time.RFC3339))
	if err != nil {
		return Attempt{}, fmt.Errorf("record quiz attempt for lesson %q: %w", a.LessonID, err)
	}
	return a, nil
}
