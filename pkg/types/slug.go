// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSlug is the sentinel error wrapped by InvalidSlugError.
var ErrInvalidSlug = errors.New("invalid slug")

// slugPattern matches one or more lowercase alphanumeric segments separated
// by single hyphens, optionally joined by slashes ("basics/perl-scalars").
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*(?:/[a-z0-9]+(?:-[a-z0-9]+)*)*$`)

type (
	// Slug identifies a lesson across the course: in URLs, in the progress
	// store, and in prerequisite references. Slugs are lowercase alphanumeric
	// segments separated by hyphens, with "/" separating path components.
	// The zero value ("") is invalid.
	Slug string

	// InvalidSlugError is returned when a Slug value does not match the
	// slug grammar.
	InvalidSlugError struct {
		Value Slug
	}
)

// String returns the string representation of the Slug.
func (s Slug) String() string { return string(s) }

// Validate returns an error if the Slug does not match the slug grammar.
func (s Slug) Validate() error {
	if !slugPattern.MatchString(string(s)) {
		return &InvalidSlugError{Value: s}
	}
	return nil
}

// Base returns the final path component of the slug.
func (s Slug) Base() string {
	str := string(s)
	if idx := strings.LastIndex(str, "/"); idx != -1 {
		return str[idx+1:]
	}
	return str
}

// Error implements the error interface for InvalidSlugError.
func (e *InvalidSlugError) Error() string {
	return fmt.Sprintf("invalid slug %q: must be lowercase alphanumeric segments separated by hyphens", e.Value)
}

// Unwrap returns ErrInvalidSlug for errors.Is() compatibility.
func (e *InvalidSlugError) Unwrap() error { return ErrInvalidSlug }

// Slugify derives a Slug from arbitrary text: lowercased, with runs of
// non-alphanumeric characters collapsed into single hyphens. Path separators
// are preserved so relative lesson paths keep their structure.
func Slugify(text string) Slug {
	var sb strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		case r == '/':
			// Trim a trailing hyphen before the separator and collapse
			// repeated separators.
			trimmed := strings.TrimSuffix(sb.String(), "-")
			sb.Reset()
			sb.WriteString(trimmed)
			if trimmed != "" && !strings.HasSuffix(trimmed, "/") {
				sb.WriteRune('/')
			}
			lastHyphen = true
		default:
			if !lastHyphen {
				sb.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	out := strings.TrimSuffix(sb.String(), "-")
	out = strings.Trim(out, "/")
	return Slug(out)
}
