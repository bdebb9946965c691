// SPDX-License-Identifier: MPL-2.0

//go:build windows

package transcript

import (
	"context"
	"runtime"

	"kurso/pkg/fence"
)

// Record is unsupported on Windows: the recording pipeline depends on
// Unix PTYs.
func Record(_ context.Context, _ RecordOptions) (*fence.Terminal, error) {
	return nil, &UnsupportedPlatformError{GOOS: runtime.GOOS}
}
