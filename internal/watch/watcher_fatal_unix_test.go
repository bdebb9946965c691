// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	fatal := []error{
		syscall.ENOSPC,
		syscall.EMFILE,
		syscall.ENFILE,
		fmt.Errorf("fsnotify: %w", syscall.ENOSPC),
	}
	for _, err := range fatal {
		if !isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = false, want true", err)
		}
	}

	benign := []error{
		syscall.EACCES,
		syscall.EPERM,
		errors.New("transient hiccup"),
		nil,
	}
	for _, err := range benign {
		if isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = true, want false", err)
		}
	}
}
