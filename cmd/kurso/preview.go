// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kurso/internal/config"
	"kurso/internal/course"
	"kurso/internal/issue"
	"kurso/internal/mdscan"
	"kurso/internal/study"
	"kurso/pkg/types"
)

var (
	previewWidth int
	previewTheme string

	previewCmd = &cobra.Command{
		Use:   "preview <lesson>",
		Short: "Render one lesson to the terminal",
		Long: `Render one lesson's Markdown to the terminal. Interactive fences are
shown as readable plain text. The lesson argument is a lesson id, a
docs-relative path, or a Markdown file path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0])
		},
	}
)

func init() {
	previewCmd.Flags().IntVar(&previewWidth, "width", 0, "wrap width (0 detects the terminal)")
	previewCmd.Flags().StringVar(&previewTheme, "theme", "", "glamour style (dark, light, ...; default auto)")
}

func runPreview(cmd *cobra.Command, arg string) error {
	doc, err := resolvePreviewDoc(cmd, arg)
	if err != nil {
		return err
	}

	width := previewWidth
	if width == 0 {
		if w, _, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil && w > 0 {
			width = w
		}
	}
	theme := previewTheme
	if theme == "" {
		theme = previewThemeFromConfig()
	}

	out, err := study.RenderLesson(doc, study.RenderOptions{Width: width, Theme: theme})
	if err != nil {
		return issue.WrapWithContext(err, "render lesson", arg)
	}
	fmt.Print(out)
	return nil
}

// previewThemeFromConfig maps the configured color scheme to a glamour
// style; auto stays empty so glamour detects.
func previewThemeFromConfig() string {
	switch effectiveConfig().UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return ""
	}
}

// resolvePreviewDoc accepts a lesson id, a docs-relative path, or a plain
// Markdown file. A bare file renders without course context.
func resolvePreviewDoc(cmd *cobra.Command, arg string) (*mdscan.Document, error) {
	if strings.HasSuffix(arg, ".md") {
		if _, statErr := os.Stat(arg); statErr == nil {
			if _, manifestErr := course.FindManifest(filepath.Dir(arg)); manifestErr != nil {
				return mdscan.Scan(arg)
			}
		}
	}

	c, err := discoverCourse(cmd.Context(), ".")
	if err != nil {
		if _, statErr := os.Stat(arg); statErr == nil {
			return mdscan.Scan(arg)
		}
		return nil, err
	}

	if l := c.LessonByRel(arg); l != nil {
		return l.Doc, nil
	}
	if l := c.Lesson(types.Slug(arg)); l != nil {
		return l.Doc, nil
	}
	// A path relative to the working directory rather than docs_dir.
	if abs, absErr := filepath.Abs(arg); absErr == nil {
		for _, l := range c.Lessons {
			if l.Path == abs {
				return l.Doc, nil
			}
		}
	}

	if rendered, renderErr := issue.Get(issue.LessonNotFoundId).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
	return nil, fmt.Errorf("lesson %q not found in course %q", arg, c.Manifest.Title)
}
