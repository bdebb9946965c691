// SPDX-License-Identifier: MPL-2.0

// Package server implements the kurso preview server: a chi router serving
// the built static site with health, metrics, and livereload endpoints, plus
// a filesystem watcher that rebuilds the site on change. Build failures keep
// the previously built site on disk.
package server
