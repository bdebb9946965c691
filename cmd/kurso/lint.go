// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kurso/internal/config"
	"kurso/internal/lint"
	"kurso/internal/watch"
	"kurso/pkg/types"
)

var (
	lintFormat string
	lintFailOn string
	lintWatch  bool

	lintCmd = &cobra.Command{
		Use:   "lint [dir]",
		Short: "Validate a course: manifest, lessons, fences, links",
		Long: `Validate a course: manifest structure, lesson frontmatter, interactive
fence bodies, internal links and anchors, heading hierarchy, and
prerequisite consistency.

Exit codes:
  0  no findings at or above the fail threshold
  1  the course could not be checked at all
  2  findings at or above the fail threshold (--fail-on)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), courseDirArg(args))
		},
	}
)

func init() {
	lintCmd.Flags().StringVar(&lintFormat, "format", "text", "output format (text, json)")
	lintCmd.Flags().StringVar(&lintFailOn, "fail-on", "", "lowest severity that fails the run (error, warning)")
	lintCmd.Flags().BoolVarP(&lintWatch, "watch", "w", false, "re-lint when course files change")
}

// lintFailLevel resolves the fail threshold: flag first, then config, then
// error-severity only.
func lintFailLevel() (config.FailLevel, error) {
	level := config.FailLevel(lintFailOn)
	if lintFailOn == "" {
		level = effectiveConfig().Lint.FailOn
	}
	if level == "" {
		level = config.FailOnError
	}
	if valid, errs := level.IsValid(); !valid {
		return "", fmt.Errorf("invalid --fail-on value: %v", errs[0])
	}
	return level, nil
}

func runLint(ctx context.Context, dir string) error {
	level, err := lintFailLevel()
	if err != nil {
		return err
	}

	if lintWatch {
		return lintWatchLoop(ctx, dir, level)
	}

	failed, err := lintOnce(ctx, dir, level)
	if err != nil {
		return err
	}
	if failed {
		return &ExitError{Code: types.ExitFindings}
	}
	return nil
}

// lintOnce runs the rule set a single time and reports whether findings
// reach the fail threshold.
func lintOnce(ctx context.Context, dir string, level config.FailLevel) (bool, error) {
	c, err := discoverCourse(ctx, dir)
	if err != nil {
		return false, err
	}
	result, err := lint.Run(ctx, c, lint.Options{})
	if err != nil {
		return false, err
	}

	switch lintFormat {
	case "json":
		if err := lint.WriteJSON(os.Stdout, result); err != nil {
			return false, err
		}
	case "text", "":
		if err := lint.WriteText(os.Stdout, result); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unknown format %q (valid: text, json)", lintFormat)
	}

	failed := result.ErrorCount() > 0
	if level == config.FailOnWarning {
		failed = failed || result.WarningCount() > 0
	}
	return failed, nil
}

// lintWatchLoop re-lints on every debounced change until the context is
// cancelled. Watch mode never exits non-zero for findings; it is a
// feedback loop, not a gate.
func lintWatchLoop(ctx context.Context, dir string, level config.FailLevel) error {
	c, err := discoverCourse(ctx, dir)
	if err != nil {
		return err
	}

	if _, err := lintOnce(ctx, dir, level); err != nil {
		return err
	}

	cfg := watch.ForCourse(c, func(ctx context.Context, changed []string) error {
		fmt.Println()
		if _, err := lintOnce(ctx, dir, level); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("lint: ")+formatErrorForDisplay(err, verbose))
		}
		return nil
	})
	w, err := watch.New(cfg)
	if err != nil {
		return err
	}
	fmt.Println(SubtitleStyle.Render("watching for changes, ctrl+c to stop"))
	return w.Run(ctx)
}
