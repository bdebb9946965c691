// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme ColorScheme
		valid  bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"sepia", false},
		{"", false},
		{"DARK", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.scheme.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid {
				if len(errs) != 1 {
					t.Fatalf("expected 1 error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs[0])
				}
			}
		})
	}
}

func TestFailLevel_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level FailLevel
		valid bool
	}{
		{FailOnError, true},
		{FailOnWarning, true},
		{"info", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.level.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid && !errors.Is(errs[0], ErrInvalidFailLevel) {
				t.Errorf("error should wrap ErrInvalidFailLevel, got: %v", errs[0])
			}
		})
	}
}

func TestDBFilePath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  DBFilePath
		valid bool
	}{
		{"zero value means default", "", true},
		{"explicit path", "/state/progress.db", true},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.path.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid && !errors.Is(errs[0], ErrInvalidDBFilePath) {
				t.Errorf("error should wrap ErrInvalidDBFilePath, got: %v", errs[0])
			}
		})
	}
}

func TestHostKeyPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  HostKeyPath
		valid bool
	}{
		{"zero value means config dir", "", true},
		{"explicit path", "/keys/host_ed25519", true},
		{"whitespace only", "\t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.path.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid && !errors.Is(errs[0], ErrInvalidHostKeyPath) {
				t.Errorf("error should wrap ErrInvalidHostKeyPath, got: %v", errs[0])
			}
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	valid, errs := cfg.IsValid()
	if !valid {
		t.Errorf("DefaultConfig() should be valid, got errors: %v", errs)
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Lint.FailOn = "nonsense"
	cfg.Serve.Addr = ""
	cfg.UI.ColorScheme = "sepia"

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("config with invalid fields should not be valid")
	}
	if len(errs) != 1 {
		t.Fatalf("expected wrapped InvalidConfigError, got %d errors", len(errs))
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got: %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("expected 3 sub-config errors, got %d: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("error should wrap ErrInvalidConfig")
	}
}
