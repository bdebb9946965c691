// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	initForce bool
	initTitle string

	initCmd = &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a new course",
		Long: `Create a course skeleton: a course.yml manifest, a docs/ tree with a
welcome lesson, and a sample lesson showing every interactive fence
type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing course.yml")
	initCmd.Flags().StringVarP(&initTitle, "title", "t", "My Course", "course title")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := courseDirArg(args)
	manifestPath := filepath.Join(dir, "course.yml")

	if _, err := os.Stat(manifestPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", manifestPath)
	}

	files := map[string]string{
		"course.yml":           scaffoldManifest(initTitle),
		"docs/index.md":        scaffoldIndex(initTitle),
		"docs/first-lesson.md": scaffoldLesson(),
	}
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}

	absDir, _ := filepath.Abs(dir)
	fmt.Printf("%s Created course %q in %s\n",
		SuccessStyle.Render("✓"), initTitle, PathStyle.Render(absDir))
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit docs/ to add lessons")
	fmt.Println("  2. Run 'kurso lint' to validate the course")
	fmt.Println("  3. Run 'kurso study' to try it in the terminal")
	fmt.Println("  4. Run 'kurso serve' to preview it in the browser")
	return nil
}

func scaffoldManifest(title string) string {
	return fmt.Sprintf(`title: %s
description: A new interactive course
nav:
  - index.md
  - first-lesson.md
`, title)
}

func scaffoldIndex(title string) string {
	return fmt.Sprintf(`# %s

Welcome! This course is built with kurso. Lessons live under docs/ and
may embed interactive fenced blocks.

Continue with [the first lesson](first-lesson.md).
`, title)
}

func scaffoldLesson() string {
	return `---
title: First Lesson
id: first-lesson
---

# First Lesson

Markdown prose goes here. Interactive blocks are fenced code blocks
with a special info string:

` + "```quiz" + `
question: Does kurso validate this block?
options:
  - text: "Yes, with 'kurso lint'"
    correct: true
  - text: "No"
explanation: Lint checks every fence body against its schema.
` + "```" + `

` + "```terminal" + `
steps:
  - cmd: kurso lint
    output: "docs: no problems found"
` + "```" + `
`
}
