// SPDX-License-Identifier: MPL-2.0

package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"kurso/internal/course"
	"kurso/internal/lint"
	"kurso/internal/site"
)

// builder rediscovers and rebuilds the course. It remembers the last good
// course so a broken edit degrades to log noise instead of a dead server.
type builder struct {
	courseDir  string
	siteDir    string
	liveReload bool
	logger     *log.Logger
	reloader   *reloader

	mu     sync.Mutex
	course *course.Course
	result *site.Result
}

// rebuild runs the full pipeline: discover, lint (feeding the diagnostics
// gauge), build, stamp bump.
func (b *builder) rebuild(ctx context.Context) error {
	start := time.Now()

	c, err := course.Discover(ctx, b.courseDir)
	if err != nil {
		siteBuilds.WithLabelValues("failure").Inc()
		return fmt.Errorf("discover course: %w", err)
	}

	lintRes, err := lint.Run(ctx, c, lint.Options{})
	if err != nil {
		siteBuilds.WithLabelValues("failure").Inc()
		return fmt.Errorf("lint course: %w", err)
	}
	lintDiagnostics.WithLabelValues("error").Set(float64(lintRes.ErrorCount()))
	lintDiagnostics.WithLabelValues("warning").Set(float64(lintRes.WarningCount()))
	if n := lintRes.ErrorCount() + lintRes.WarningCount(); n > 0 {
		b.logger.Warn("course has lint findings",
			"errors", lintRes.ErrorCount(), "warnings", lintRes.WarningCount())
	}

	res, err := site.Build(ctx, c, site.Options{
		LiveReload: b.liveReload,
		SiteDir:    b.siteDir,
	})
	if err != nil {
		siteBuilds.WithLabelValues("failure").Inc()
		return fmt.Errorf("build site: %w", err)
	}

	siteBuilds.WithLabelValues("success").Inc()
	buildSeconds.Observe(time.Since(start).Seconds())

	b.mu.Lock()
	b.course = c
	b.result = res
	b.mu.Unlock()

	b.reloader.Bump()
	b.logger.Info("site built",
		"pages", res.Pages, "assets", res.Assets, "duration", res.Duration)
	return nil
}

// snapshot returns the last good course and build result.
func (b *builder) snapshot() (*course.Course, *site.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.course, b.result
}

// onChange adapts rebuild for the watcher: failures are logged and swallowed
// so the previous site stays up.
func (b *builder) onChange(ctx context.Context, changed []string) error {
	b.logger.Debug("change detected", "files", changed)
	if err := b.rebuild(ctx); err != nil {
		b.logger.Error("rebuild failed, keeping previous site", "err", err)
	}
	return nil
}
