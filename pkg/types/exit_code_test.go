// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCode_Constants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitFailure != 1 {
		t.Errorf("ExitFailure = %d, want 1", ExitFailure)
	}
	if ExitFindings != 2 {
		t.Errorf("ExitFindings = %d, want 2", ExitFindings)
	}
}

func TestExitCode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    ExitCode
		wantErr bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{255, false},
		{-1, true},
		{256, true},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			t.Parallel()

			err := tt.code.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error should wrap ErrInvalidExitCode, got: %v", err)
			}
		})
	}
}

func TestExitCode_IsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitSuccess.IsSuccess() {
		t.Error("ExitSuccess.IsSuccess() should be true")
	}
	if ExitFailure.IsSuccess() {
		t.Error("ExitFailure.IsSuccess() should be false")
	}
	if ExitFindings.IsSuccess() {
		t.Error("ExitFindings.IsSuccess() should be false")
	}
}

func TestExitCode_String(t *testing.T) {
	t.Parallel()

	if ExitFindings.String() != "2" {
		t.Errorf("String() = %q, want %q", ExitFindings.String(), "2")
	}
}
