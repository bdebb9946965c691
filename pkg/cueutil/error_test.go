// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		err := FormatError(nil, "course.yml")
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "course.yml")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "course.yml") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !strings.Contains(err.Error(), "some error") {
			t.Errorf("error should contain original message, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{
			name:     "empty path",
			path:     []string{},
			expected: "",
		},
		{
			name:     "single element",
			path:     []string{"question"},
			expected: "question",
		},
		{
			name:     "nested path",
			path:     []string{"steps", "cmd"},
			expected: "steps.cmd",
		},
		{
			name:     "array index",
			path:     []string{"options", "0", "text"},
			expected: "options[0].text",
		},
		{
			name:     "multiple array indices",
			path:     []string{"parts", "0", "choices", "2", "flag"},
			expected: "parts[0].choices[2].flag",
		},
		{
			name:     "nested arrays",
			path:     []string{"items", "0", "values", "1"},
			expected: "items[0].values[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatPath(tt.path)
			if got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestValidationErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with cue path",
			err:  &ValidationError{FilePath: "lesson.md", CUEPath: "options[1].text", Message: "conflicting values"},
			want: "lesson.md: options[1].text: conflicting values",
		},
		{
			name: "without cue path",
			err:  &ValidationError{FilePath: "lesson.md", Message: "invalid YAML"},
			want: "lesson.md: invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	t.Run("under limit passes", func(t *testing.T) {
		t.Parallel()

		if err := CheckFileSize([]byte("question: ok"), 1024, "quiz"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("over limit fails with filename", func(t *testing.T) {
		t.Parallel()

		err := CheckFileSize(make([]byte, 32), 16, "quiz")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "quiz") {
			t.Errorf("error should name the file, got: %v", err)
		}
	})
}
