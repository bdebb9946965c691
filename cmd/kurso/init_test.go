// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kurso/internal/course"
	"kurso/internal/lint"
)

func TestRunInit(t *testing.T) {
	// Not parallel: subtests mutate the package-level initForce/initTitle vars.

	setInitFlags := func(t *testing.T, force bool, title string) {
		t.Helper()
		origForce, origTitle := initForce, initTitle
		t.Cleanup(func() { initForce, initTitle = origForce, origTitle })
		initForce, initTitle = force, title
	}

	t.Run("scaffolds a discoverable course", func(t *testing.T) {
		setInitFlags(t, false, "Test Course")
		dir := t.TempDir()

		if err := runInit(initCmd, []string{dir}); err != nil {
			t.Fatalf("runInit() error = %v", err)
		}

		for _, rel := range []string{"course.yml", "docs/index.md", "docs/first-lesson.md"} {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
				t.Errorf("expected %s to exist: %v", rel, err)
			}
		}

		c, err := course.Discover(context.Background(), dir)
		if err != nil {
			t.Fatalf("Discover() on scaffolded course: %v", err)
		}
		if c.Manifest.Title != "Test Course" {
			t.Errorf("manifest title = %q, want %q", c.Manifest.Title, "Test Course")
		}
		if got := len(c.StudyOrder()); got != 2 {
			t.Errorf("study order has %d lessons, want 2", got)
		}
	})

	t.Run("scaffold passes lint cleanly", func(t *testing.T) {
		setInitFlags(t, false, "Lintable")
		dir := t.TempDir()

		if err := runInit(initCmd, []string{dir}); err != nil {
			t.Fatalf("runInit() error = %v", err)
		}

		c, err := course.Discover(context.Background(), dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		result, err := lint.Run(context.Background(), c, lint.Options{})
		if err != nil {
			t.Fatalf("lint.Run() error = %v", err)
		}
		if n := result.ErrorCount(); n != 0 {
			t.Errorf("scaffolded course has %d lint errors: %v", n, result.Diagnostics)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		setInitFlags(t, false, "My Course")
		dir := t.TempDir()

		if err := runInit(initCmd, []string{dir}); err != nil {
			t.Fatalf("first runInit() error = %v", err)
		}
		err := runInit(initCmd, []string{dir})
		if err == nil {
			t.Fatal("second runInit() without --force succeeded, want error")
		}
		if !strings.Contains(err.Error(), "--force") {
			t.Errorf("error %q does not mention --force", err)
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		setInitFlags(t, true, "Replaced")
		dir := t.TempDir()

		if err := runInit(initCmd, []string{dir}); err != nil {
			t.Fatalf("first runInit() error = %v", err)
		}
		if err := runInit(initCmd, []string{dir}); err != nil {
			t.Fatalf("runInit() with --force error = %v", err)
		}
	})
}
