// SPDX-License-Identifier: MPL-2.0

package transcript

import (
	"context"
	"strings"
	"testing"

	"kurso/pkg/fence"
)

func TestStripANSI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "color codes",
			in:   "\x1b[32mok\x1b[0m",
			want: "ok",
		},
		{
			name: "carriage returns",
			in:   "line\r\n",
			want: "line\n",
		},
		{
			name: "osc title",
			in:   "\x1b]0;title\x07prompt",
			want: "prompt",
		},
		{
			name: "cursor movement",
			in:   "a\x1b[2Kb\x1b[1;1Hc",
			want: "abc",
		},
		{
			name: "plain text untouched",
			in:   "perl -v\n",
			want: "perl -v\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := string(StripANSI([]byte(tt.in))); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReconstruct(t *testing.T) {
	t.Parallel()

	capture := strings.Join([]string{
		"welcome banner",
		"$ perl -e 'print \"hi\\n\"'",
		"hi",
		"$ true",
		"$ echo one && echo two",
		"one",
		"two",
		"$ exit",
		"$",
		"",
	}, "\r\n")

	got := Reconstruct([]byte(capture), "$")
	if got.Prompt != "" {
		t.Errorf("Prompt = %q, want empty for the default prompt", got.Prompt)
	}
	want := []fence.TerminalStep{
		{Cmd: `perl -e 'print "hi\n"'`, Output: "hi"},
		{Cmd: "true"},
		{Cmd: "echo one && echo two", Output: "one\ntwo"},
	}
	if len(got.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d: %+v", len(got.Steps), len(want), got.Steps)
	}
	for i, w := range want {
		if got.Steps[i] != w {
			t.Errorf("step %d = %+v, want %+v", i, got.Steps[i], w)
		}
	}
}

func TestReconstructCustomPrompt(t *testing.T) {
	t.Parallel()

	got := Reconstruct([]byte(">> ls\nfile.txt\n"), ">>")
	if got.Prompt != ">>" {
		t.Errorf("Prompt = %q, want %q", got.Prompt, ">>")
	}
	if len(got.Steps) != 1 || got.Steps[0].Cmd != "ls" || got.Steps[0].Output != "file.txt" {
		t.Errorf("Steps = %+v", got.Steps)
	}
}

func TestEncodeBody(t *testing.T) {
	t.Parallel()

	tr := &fence.Terminal{
		Steps: []fence.TerminalStep{
			{Cmd: "perl -v", Output: "This is perl 5"},
			{Cmd: "true"},
		},
	}
	body, err := EncodeBody(tr)
	if err != nil {
		t.Fatalf("EncodeBody() error: %v", err)
	}
	got := string(body)
	if strings.Contains(got, "prompt:") {
		t.Errorf("default prompt should be omitted:\n%s", got)
	}
	if strings.Contains(got, "output: \"\"") || strings.Contains(got, "delay_ms") {
		t.Errorf("zero fields should be omitted:\n%s", got)
	}

	// The encoded body must round-trip through the fence validator.
	cfg, verrs := Check("out.yml", body)
	if cfg == nil || verrs.HasErrors() {
		t.Fatalf("encoded body fails validation: %v", verrs)
	}
}

func TestEncodeFenced(t *testing.T) {
	t.Parallel()

	tr := &fence.Terminal{Steps: []fence.TerminalStep{{Cmd: "ls"}}}
	out, err := EncodeFenced(tr)
	if err != nil {
		t.Fatalf("EncodeFenced() error: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "```terminal\n") || !strings.HasSuffix(s, "```\n") {
		t.Errorf("EncodeFenced() = %q, want ```terminal wrapper", s)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()

		cfg, verrs := Check("t.yml", []byte("steps:\n  - cmd: ls\n    output: file\n"))
		if cfg == nil {
			t.Fatalf("Check() config = nil, errors: %v", verrs)
		}
		if verrs.HasErrors() {
			t.Errorf("Check() errors: %v", verrs)
		}
	})

	t.Run("missing steps", func(t *testing.T) {
		t.Parallel()

		_, verrs := Check("t.yml", []byte("prompt: '$'\n"))
		if !verrs.HasErrors() {
			t.Error("Check() accepted a body without steps")
		}
	})

	t.Run("broken shell syntax is a warning", func(t *testing.T) {
		t.Parallel()

		cfg, verrs := Check("t.yml", []byte("steps:\n  - cmd: \"echo 'unterminated\"\n"))
		if cfg == nil {
			t.Fatalf("Check() config = nil, errors: %v", verrs)
		}
		if verrs.HasErrors() {
			t.Errorf("shell syntax should be a warning, got errors: %v", verrs)
		}
		if verrs.WarningCount() == 0 {
			t.Error("expected a shell syntax warning")
		}
	})
}

func TestPlay(t *testing.T) {
	t.Parallel()

	tr := &fence.Terminal{
		Prompt: ">>",
		Steps: []fence.TerminalStep{
			{Cmd: "perl -v", Output: "This is perl 5", DelayMs: 500},
			{Cmd: "true"},
		},
	}

	var sb strings.Builder
	if err := Play(context.Background(), &sb, tr, PlayOptions{NoDelay: true}); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	want := ">> perl -v\nThis is perl 5\n>> true\n"
	if sb.String() != want {
		t.Errorf("Play() output = %q, want %q", sb.String(), want)
	}
}

func TestPlayCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &fence.Terminal{Steps: []fence.TerminalStep{{Cmd: "ls"}}}
	var sb strings.Builder
	if err := Play(ctx, &sb, tr, PlayOptions{}); err == nil {
		t.Error("Play() ignored a cancelled context")
	}
}
