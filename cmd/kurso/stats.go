// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kurso/internal/course"
	"kurso/internal/progress"
	"kurso/pkg/fence"
)

var (
	statsLearner string
	statsDB      string

	statsCmd = &cobra.Command{
		Use:   "stats [dir]",
		Short: "Course statistics and learner progress",
		Long: `Summarize the course: lesson and fence counts per type, plus the
per-lesson completion state and best quiz scores of a learner.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), courseDirArg(args), os.Stdout)
		},
	}
)

func init() {
	statsCmd.Flags().StringVar(&statsLearner, "learner", "", "learner to report progress for (default: local)")
	statsCmd.Flags().StringVar(&statsDB, "db", "", "progress database path")
}

func runStats(ctx context.Context, dir string, w io.Writer) error {
	c, err := discoverCourse(ctx, dir)
	if err != nil {
		return err
	}

	store, err := openProgressStore(ctx, statsDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	learner := statsLearner
	if learner == "" {
		learner = progress.DefaultLearner
	}
	summary, err := store.Summary(ctx, c.ID(), learner)
	if err != nil {
		return err
	}

	writeStats(w, c, summary, learner)
	return nil
}

// writeStats renders the statistics report. Separated from runStats so
// tests can capture the output.
func writeStats(w io.Writer, c *course.Course, summary *progress.Summary, learner string) {
	fmt.Fprintln(w, TitleStyle.Render(c.Manifest.Title))
	if c.Manifest.Description != "" {
		fmt.Fprintln(w, SubtitleStyle.Render(c.Manifest.Description))
	}
	fmt.Fprintln(w)

	visible := c.Visible(false)
	drafts := len(c.Lessons) - len(visible)
	fmt.Fprintf(w, "lessons: %d", len(visible))
	if drafts > 0 {
		fmt.Fprintf(w, " (+%d drafts)", drafts)
	}
	fmt.Fprintln(w)

	counts := fenceCounts(c)
	for _, t := range fence.AllTypes() {
		if counts[t] > 0 {
			fmt.Fprintf(w, "  %-17s %d\n", t.Humanize()+":", counts[t])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "progress for %s: %d/%d lessons complete\n",
		PathStyle.Render(learner), summary.CompletedCount(), len(visible))
	for _, l := range c.StudyOrder() {
		ls := summary.Lesson(l.ID)
		mark := " "
		if ls.Completed {
			mark = SuccessStyle.Render("✓")
		}
		line := fmt.Sprintf("  %s %s", mark, l.DisplayTitle())
		if ls.Best.Total > 0 {
			line += SubtitleStyle.Render(fmt.Sprintf("  best quiz score %s", ls.Best))
		}
		fmt.Fprintln(w, line)
	}
}

// fenceCounts tallies interactive fences per type across the whole
// course, drafts included.
func fenceCounts(c *course.Course) map[fence.Type]int {
	counts := make(map[fence.Type]int)
	for _, l := range c.Lessons {
		for _, b := range l.Doc.Fences {
			counts[b.Type]++
		}
	}
	return counts
}
