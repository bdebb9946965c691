// SPDX-License-Identifier: MPL-2.0

// Package progress persists per-learner course progress in an embedded
// SQLite database: lesson completions (idempotent) and quiz attempts
// (append-only). The study TUI and the stats command read it; local study
// writes under the "local" learner, SSH sessions under the SSH user name.
package progress
