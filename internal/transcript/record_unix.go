// SPDX-License-Identifier: MPL-2.0

//go:build unix

package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"

	"kurso/pkg/fence"
)

// Record runs a shell under a PTY, mirrors it to the user's terminal, and
// reconstructs the session as a terminal fence once the shell exits. The
// recording shell gets PS1 set to the split prompt so reconstruction does
// not depend on the user's prompt configuration.
func Record(ctx context.Context, opts RecordOptions) (*fence.Terminal, error) {
	shell := opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "sh"
	}
	prompt := opts.prompt()

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	cmd := exec.CommandContext(ctx, shell)
	cmd.Env = append(os.Environ(), "PS1="+prompt+" ", "TERM=dumb")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start %s under pty: %w", shell, err)
	}
	defer func() { _ = ptmx.Close() }()

	// Raw mode so keystrokes reach the recorded shell unmangled. Stdin may
	// not be a terminal (tests, pipes); recording still works then.
	if f, ok := stdin.(*os.File); ok {
		if oldState, rawErr := term.MakeRaw(int(f.Fd())); rawErr == nil {
			defer func() { _ = term.Restore(int(f.Fd()), oldState) }()
		}
	}
	if f, ok := stdout.(*os.File); ok {
		_ = pty.InheritSize(f, ptmx)
	}

	go func() {
		_, _ = io.Copy(ptmx, stdin)
	}()

	var capture bytes.Buffer
	_, copyErr := io.Copy(io.MultiWriter(stdout, &capture), ptmx)

	waitErr := cmd.Wait()
	// The PTY read fails with EIO once the shell exits; that is the normal
	// end of a recording, not a failure.
	if copyErr != nil && !errors.Is(copyErr, io.EOF) && waitErr == nil && !isPTYClosed(copyErr) {
		return nil, fmt.Errorf("record session: %w", copyErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Reconstruct(capture.Bytes(), prompt), nil
}

// isPTYClosed reports whether err is the read error a closing PTY
// produces.
func isPTYClosed(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
