// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	fatal := []error{
		errnoTooManyOpenFiles,
		errnoInvalidHandle,
		errnoNotEnoughMemory,
		fmt.Errorf("fsnotify: %w", errnoInvalidHandle),
	}
	for _, err := range fatal {
		if !isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = false, want true", err)
		}
	}

	benign := []error{
		errors.New("transient hiccup"),
		nil,
	}
	for _, err := range benign {
		if isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = true, want false", err)
		}
	}
}
