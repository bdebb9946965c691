// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize bounds the size of user-supplied documents. Course
// manifests, config files, and fence bodies are all small; anything beyond
// this is either corrupt or hostile.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB

type options struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// Option configures ParseAndDecode and ValidateYAML.
type Option func(*options)

// WithFilename sets the file name used in error messages. Defaults to
// "<input>" when unset.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides the default document size limit.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

// WithoutConcrete disables the concreteness requirement during validation.
// Useful when the decoded struct supplies defaults for absent fields.
func WithoutConcrete() Option {
	return func(o *options) { o.concrete = false }
}
