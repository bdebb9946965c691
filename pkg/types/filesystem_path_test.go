// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_String(t *testing.T) {
	t.Parallel()

	p := FilesystemPath("/home/user/course")
	if p.String() != "/home/user/course" {
		t.Errorf("String() = %q, want %q", p.String(), "/home/user/course")
	}
}

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  FilesystemPath
		valid bool
	}{
		{"absolute path", "/home/user/course", true},
		{"relative path", "docs/basics", true},
		{"single dot", ".", true},
		{"empty", "", false},
		{"spaces only", "   ", false},
		{"tabs only", "\t\t", false},
		{"mixed whitespace", " \t ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.path.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid {
				if len(errs) != 1 {
					t.Fatalf("expected 1 error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidFilesystemPath) {
					t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", errs[0])
				}
			}
		})
	}
}
