// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/kurso/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/kurso/config.cue on macOS, %APPDATA%\kurso\config.cue
// on Windows), with a course-local kurso.cue taking precedence when present. The package
// provides type-safe configuration access for lint thresholds, the preview server, the
// SSH study server, the progress store, and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
