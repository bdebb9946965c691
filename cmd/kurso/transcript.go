// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kurso/internal/issue"
	"kurso/internal/transcript"
	"kurso/pkg/fence"
	"kurso/pkg/types"
)

var (
	transcriptShell  string
	transcriptPrompt string
	transcriptOut    string
	transcriptFenced bool
	transcriptFast   bool

	transcriptCmd = &cobra.Command{
		Use:   "transcript",
		Short: "Record, check, and replay terminal fence transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	transcriptRecordCmd = &cobra.Command{
		Use:   "record",
		Short: "Record a shell session into a terminal fence body",
		Long: `Run a shell under a PTY and turn the session into the YAML body of a
terminal fence. The shell's prompt is set to the split prompt, so type
commands as usual and exit the shell to finish the recording.`,
		Args: cobra.NoArgs,
		RunE: runTranscriptRecord,
	}

	transcriptCheckCmd = &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a transcript fence body file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscriptCheck,
	}

	transcriptPlayCmd = &cobra.Command{
		Use:   "play <file>",
		Short: "Replay a transcript with its recorded pacing",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscriptPlay,
	}
)

func init() {
	transcriptRecordCmd.Flags().StringVar(&transcriptShell, "shell", "", "shell to record (default $SHELL, then sh)")
	transcriptRecordCmd.Flags().StringVar(&transcriptPrompt, "prompt", "", "prompt string used to split steps (default $)")
	transcriptRecordCmd.Flags().StringVarP(&transcriptOut, "out", "o", "", "write the result to a file instead of stdout")
	transcriptRecordCmd.Flags().BoolVar(&transcriptFenced, "fenced", false, "wrap the body in a ```terminal fence")
	transcriptPlayCmd.Flags().BoolVar(&transcriptFast, "fast", false, "skip the recorded delays")

	transcriptCmd.AddCommand(transcriptRecordCmd)
	transcriptCmd.AddCommand(transcriptCheckCmd)
	transcriptCmd.AddCommand(transcriptPlayCmd)
}

func runTranscriptRecord(cmd *cobra.Command, _ []string) error {
	t, err := transcript.Record(cmd.Context(), transcript.RecordOptions{
		Shell:  transcriptShell,
		Prompt: transcriptPrompt,
	})
	if err != nil {
		if errorsIsUnsupported(err) {
			if rendered, renderErr := issue.Get(issue.TranscriptPtyUnavailableId).Render("dark"); renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return issue.WrapWithOperation(err, "record transcript")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("recording produced no steps")
	}

	var out []byte
	if transcriptFenced {
		out, err = transcript.EncodeFenced(t)
	} else {
		out, err = transcript.EncodeBody(t)
	}
	if err != nil {
		return err
	}

	if transcriptOut == "" {
		fmt.Print(string(out))
		return nil
	}
	if err := os.WriteFile(transcriptOut, out, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	fmt.Printf("%s Wrote %d steps to %s\n",
		SuccessStyle.Render("✓"), len(t.Steps), PathStyle.Render(transcriptOut))
	return nil
}

func runTranscriptCheck(_ *cobra.Command, args []string) error {
	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	_, verrs := transcript.Check(args[0], body)
	for _, v := range verrs {
		style := WarningStyle
		if v.IsError() {
			style = ErrorStyle
		}
		fmt.Printf("%s %s\n", style.Render(v.Severity.String()+":"), v.Error())
	}
	if verrs.HasErrors() {
		return &ExitError{Code: types.ExitFindings}
	}
	if len(verrs) == 0 {
		fmt.Printf("%s %s is a valid terminal fence body\n", SuccessStyle.Render("✓"), args[0])
	}
	return nil
}

func runTranscriptPlay(cmd *cobra.Command, args []string) error {
	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	cfg, verrs := transcript.Check(args[0], body)
	if cfg == nil || verrs.HasErrors() {
		return fmt.Errorf("transcript is not playable: %s", verrs.Error())
	}
	t, ok := cfg.(*fence.Terminal)
	if !ok {
		return fmt.Errorf("transcript is not a terminal fence body")
	}
	return transcript.Play(cmd.Context(), os.Stdout, t, transcript.PlayOptions{NoDelay: transcriptFast})
}

// errorsIsUnsupported reports whether err is the no-PTY platform error.
func errorsIsUnsupported(err error) bool {
	return errors.Is(err, transcript.ErrUnsupportedPlatform)
}
