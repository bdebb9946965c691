// SPDX-License-Identifier: MPL-2.0

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kurso_http_requests_total",
		Help: "HTTP requests served, by status code and method.",
	}, []string{"code", "method"})

	siteBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kurso_site_builds_total",
		Help: "Site builds triggered by the preview server, by result.",
	}, []string{"result"})

	buildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kurso_site_build_seconds",
		Help:    "Wall-clock site build duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	lintDiagnostics = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kurso_lint_diagnostics",
		Help: "Diagnostics reported by the last rebuild lint, by severity.",
	}, []string{"severity"})
)
