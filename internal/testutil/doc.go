// SPDX-License-Identifier: MPL-2.0

// Package testutil provides small helpers shared by kurso's tests:
// environment management with automatic restore (MustSetenv, MustUnsetenv,
// SetHomeDir), fixture writes (MustWriteFile), and resource cleanup
// (MustClose, MustStop).
//
// Course fixtures live in the coursetest subpackage.
package testutil
