// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for kurso: linting, building,
// previewing, studying, and serving interactive Markdown courses, plus the
// transcript tooling and the usual init/config/completion plumbing.
package cmd
