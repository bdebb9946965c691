// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kurso/internal/config"
	"kurso/internal/course"
	"kurso/internal/issue"
	"kurso/internal/progress"
)

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// courseDirArg resolves the optional [dir] positional argument shared by
// the course commands.
func courseDirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// discoverCourse loads the course rooted at (or above) dir, rendering the
// matching issue card on failure.
func discoverCourse(ctx context.Context, dir string) (*course.Course, error) {
	c, err := course.Discover(ctx, dir)
	if err != nil {
		id := issue.CourseNotFoundId
		if errors.Is(err, course.ErrManifestInvalid) {
			id = issue.ManifestParseErrorId
		}
		if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, issue.WrapWithContext(err, "discover course", dir)
	}
	return c, nil
}

// openProgressStore opens the progress database: the --db flag when set,
// else the configured path, else the default under the user data dir.
func openProgressStore(ctx context.Context, override string) (*progress.Store, error) {
	path := override
	if path == "" {
		path = effectiveConfig().Progress.DBPath.String()
	}
	if path == "" {
		var err error
		path, err = config.DefaultProgressDBPath()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "resolve progress database path")
		}
	}
	store, err := progress.Open(ctx, path)
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ProgressStoreFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, issue.WrapWithContext(err, "open progress store", path)
	}
	return store, nil
}
