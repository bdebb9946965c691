// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"kurso/internal/course"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// start runs w in a goroutine and returns an idempotent stop function that
// cancels the context and reports Run's error.
func start(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Give the event loop a moment to come up.
	time.Sleep(50 * time.Millisecond)
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := <-errCh; err != nil {
				t.Fatalf("Run() error = %v", err)
			}
		})
	}
}

func TestWatcherCoalescesEvents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Root:     dir,
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	// Three rapid writes, well inside the debounce window.
	for _, name := range []string{"intro.md", "scalars.md", "arrays.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# L\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	// Settle so a spurious second fire would be counted.
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("callbacks = %d, want 1", calls)
	}
	// The callback receives the changed set sorted.
	want := []string{"arrays.md", "intro.md", "scalars.md"}
	if !slices.Equal(collected, want) {
		t.Errorf("changed = %v, want %v", collected, want)
	}
}

func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Root:     dir,
		Patterns: []string{"**/*.md"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "lesson.md"), []byte("# L\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		if slices.Contains(changed, "notes.txt") {
			t.Errorf("non-matching file fired: %v", changed)
		}
		if !slices.Contains(changed, "lesson.md") {
			t.Errorf("changed = %v, want lesson.md", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Root:     dir,
		Ignore:   []string{"**/*.bak"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "intro.md.bak"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "intro.md"), []byte("# Intro\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		if slices.Contains(changed, "intro.md.bak") {
			t.Errorf("ignored file fired: %v", changed)
		}
		if !slices.Contains(changed, "intro.md") {
			t.Errorf("changed = %v, want intro.md", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestForCourse(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"course.yml":    "title: T\n",
		"docs/intro.md": "# Intro\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "site"), 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := course.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	fired := make(chan []string, 10)
	cfg := ForCourse(c, func(_ context.Context, changed []string) error {
		fired <- changed
		return nil
	})
	cfg.Debounce = 50 * time.Millisecond
	cfg.Logger = quietLogger()

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	// Output written by a rebuild must not retrigger the watcher.
	if err := os.WriteFile(filepath.Join(root, "site", "intro.html"), []byte("<html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A stray root-level file is outside the watch patterns.
	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	select {
	case changed := <-fired:
		t.Fatalf("unexpected callback for %v", changed)
	default:
	}

	// Lesson and manifest edits both trigger.
	if err := os.WriteFile(filepath.Join(root, "docs", "intro.md"), []byte("# Intro2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case changed := <-fired:
		if !slices.Contains(changed, filepath.Join("docs", "intro.md")) {
			t.Errorf("changed = %v, want docs/intro.md", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for lesson change")
	}

	if err := os.WriteFile(filepath.Join(root, "course.yml"), []byte("title: T2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case changed := <-fired:
		if !slices.Contains(changed, "course.yml") {
			t.Errorf("changed = %v, want course.yml", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for manifest change")
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error on cancel = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	if err := w.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Errorf("second Run() error = %v, want run-once violation", err)
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		Root:     t.TempDir(),
		Patterns: []string{"[invalid"},
		Logger:   quietLogger(),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid watch pattern") {
		t.Errorf("New() error = %v, want invalid pattern", err)
	}

	_, err = New(Config{
		Root:   t.TempDir(),
		Ignore: []string{"[invalid"},
		Logger: quietLogger(),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid ignore pattern") {
		t.Errorf("New() error = %v, want invalid ignore pattern", err)
	}
}

func TestWatcherSkipWhileRebuilding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var logBuf bytes.Buffer
	var logMu sync.Mutex

	var (
		mu    sync.Mutex
		calls int
	)
	firstDone := make(chan struct{})

	logger := log.New(syncWriter{mu: &logMu, w: &logBuf})

	w, err := New(Config{
		Root:     dir,
		Debounce: 50 * time.Millisecond,
		Logger:   logger,
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := start(t, w)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "first.md"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Let the first rebuild start, then change another file while it runs.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "second.md"), []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first rebuild")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	// The busy guard allows the deferred retry to run after the first
	// rebuild finishes, but never a third overlapping one.
	if calls > 2 {
		t.Errorf("callbacks = %d, want at most 2", calls)
	}
	logMu.Lock()
	defer logMu.Unlock()
	if calls == 1 && !strings.Contains(logBuf.String(), "skipping rebuild") {
		t.Logf("log output: %s", logBuf.String())
	}
}

// syncWriter serializes writes from the watcher goroutine with reads from
// the test goroutine.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	isIgnoredByDefaults := func(rel string) bool {
		for _, pat := range defaultIgnores {
			if ok, err := doublestar.Match(pat, filepath.ToSlash(rel)); err == nil && ok {
				return true
			}
		}
		return false
	}

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".git/objects/ab/cd1234", true},
		{"hooks/__pycache__/interactive.cpython-312.pyc", true},
		{"docs/.intro.md.swp", true},
		{"docs/intro.md~", true},
		{".DS_Store", true},
		{"docs/.DS_Store", true},
		{"node_modules/left-pad/index.js", true},
		{"docs/intro.md", false},
		{"course.yml", false},
		{"docs/img/logo.png", false},
		{".gitignore", false},
	}
	for _, tt := range tests {
		if got := isIgnoredByDefaults(tt.path); got != tt.ignored {
			t.Errorf("default ignore %q = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}
