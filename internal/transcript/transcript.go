// SPDX-License-Identifier: MPL-2.0

// Package transcript turns recorded PTY sessions into terminal fence
// bodies and back: record (Unix only), check, and play.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kurso/pkg/fence"
)

// ErrUnsupportedPlatform is returned by Record on platforms without PTY
// support.
var ErrUnsupportedPlatform = errors.New("transcript recording is not supported on this platform")

type (
	// RecordOptions configure a recording session.
	RecordOptions struct {
		// Shell is the program to record. Empty uses $SHELL, then "sh".
		Shell string
		// Prompt is the prompt string used to split the capture into
		// steps. Empty means the terminal fence default.
		Prompt string
		// Stdin, Stdout attach the session to the recording user's
		// terminal.
		Stdin  io.Reader
		Stdout io.Writer
	}

	// PlayOptions configure transcript replay.
	PlayOptions struct {
		// NoDelay skips the per-step pacing delays.
		NoDelay bool
	}

	// UnsupportedPlatformError is returned when recording is requested on
	// a platform without PTY support. It wraps ErrUnsupportedPlatform for
	// errors.Is() compatibility.
	UnsupportedPlatformError struct {
		GOOS string
	}
)

// Error implements the error interface for UnsupportedPlatformError.
func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("transcript recording is not supported on %s", e.GOOS)
}

// Unwrap returns ErrUnsupportedPlatform for errors.Is() compatibility.
func (e *UnsupportedPlatformError) Unwrap() error { return ErrUnsupportedPlatform }

func (o RecordOptions) prompt() string {
	if o.Prompt == "" {
		return fence.DefaultPrompt
	}
	return o.Prompt
}

// ansiRe matches the escape sequences interactive shells emit: CSI
// sequences (colors, cursor movement), OSC sequences (window titles,
// terminated by BEL or ST), and lone two-byte escapes.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-_]`)

// StripANSI removes terminal control sequences and carriage returns from a
// raw capture.
func StripANSI(b []byte) []byte {
	b = ansiRe.ReplaceAll(b, nil)
	return []byte(strings.ReplaceAll(string(b), "\r", ""))
}

// Reconstruct splits a cleaned capture into terminal fence steps. A line
// beginning with the prompt starts a new step whose command is the echoed
// input; everything until the next prompt line is that step's output. Text
// before the first prompt (the shell's banner) is dropped, as is a final
// bare "exit" that only ended the recording.
func Reconstruct(capture []byte, prompt string) *fence.Terminal {
	t := &fence.Terminal{}
	if prompt != fence.DefaultPrompt {
		t.Prompt = prompt
	}

	marker := prompt + " "
	var current *fence.TerminalStep
	flush := func() {
		if current == nil {
			return
		}
		current.Output = strings.TrimRight(current.Output, "\n")
		t.Steps = append(t.Steps, *current)
		current = nil
	}

	for _, line := range strings.Split(string(StripANSI(capture)), "\n") {
		switch {
		case strings.HasPrefix(line, marker):
			flush()
			cmd := strings.TrimSpace(strings.TrimPrefix(line, marker))
			if cmd == "" {
				continue
			}
			current = &fence.TerminalStep{Cmd: cmd}
		case line == strings.TrimRight(prompt, " "):
			// An empty prompt line, usually the last one before exit.
			flush()
		case current != nil:
			current.Output += line + "\n"
		}
	}
	flush()

	if n := len(t.Steps); n > 0 && t.Steps[n-1].Cmd == "exit" && t.Steps[n-1].Output == "" {
		t.Steps = t.Steps[:n-1]
	}
	return t
}

// encodedStep mirrors fence.TerminalStep with omitempty so encoded bodies
// stay as small as hand-written ones.
type encodedStep struct {
	Cmd          string `yaml:"cmd"`
	Output       string `yaml:"output,omitempty"`
	DelayMs      int    `yaml:"delay_ms,omitempty"`
	AllowInvalid bool   `yaml:"allow_invalid,omitempty"`
}

type encodedBody struct {
	Prompt string        `yaml:"prompt,omitempty"`
	Steps  []encodedStep `yaml:"steps"`
}

// EncodeBody renders a terminal fence body as YAML, ready to paste into a
// lesson.
func EncodeBody(t *fence.Terminal) ([]byte, error) {
	body := encodedBody{Prompt: t.Prompt}
	for _, s := range t.Steps {
		body.Steps = append(body.Steps, encodedStep(s))
	}
	out, err := yaml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return out, nil
}

// EncodeFenced renders the body wrapped in a ```terminal fence.
func EncodeFenced(t *fence.Terminal) ([]byte, error) {
	body, err := EncodeBody(t)
	if err != nil {
		return nil, err
	}
	return []byte("```terminal\n" + string(body) + "```\n"), nil
}

// Check validates a transcript body file the way lint validates an
// embedded terminal fence.
func Check(path string, body []byte) (fence.Config, fence.ValidationErrors) {
	return fence.Parse(fence.Block{
		Type:     fence.TypeTerminal,
		Body:     []byte(strings.TrimRight(string(body), "\n")),
		Path:     path,
		Line:     1,
		BodyLine: 1,
	})
}

// Play replays a transcript to w with per-step pacing. The context cancels
// a replay mid-delay.
func Play(ctx context.Context, w io.Writer, t *fence.Terminal, opts PlayOptions) error {
	prompt := t.EffectivePrompt()
	for _, step := range t.Steps {
		if !opts.NoDelay && step.DelayMs > 0 {
			select {
			case <-time.After(time.Duration(step.DelayMs) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", prompt, step.Cmd); err != nil {
			return err
		}
		if step.Output != "" {
			if _, err := fmt.Fprintln(w, step.Output); err != nil {
				return err
			}
		}
	}
	return nil
}
