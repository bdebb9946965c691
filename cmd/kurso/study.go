// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"kurso/internal/study"
)

var (
	studyDB      string
	studyLearner string

	studyCmd = &cobra.Command{
		Use:   "study [dir]",
		Short: "Study the course interactively in the terminal",
		Long: `Open the interactive study TUI: browse lessons in prerequisite order,
read them in the terminal, take quizzes, and track completion in the
local progress store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := discoverCourse(cmd.Context(), courseDirArg(args))
			if err != nil {
				return err
			}

			store, err := openProgressStore(cmd.Context(), studyDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return study.Run(cmd.Context(), study.Options{
				Course:  c,
				Store:   store,
				Learner: studyLearner,
				Theme:   previewThemeFromConfig(),
			})
		},
	}
)

func init() {
	studyCmd.Flags().StringVar(&studyDB, "db", "", "progress database path (default: user data dir)")
	studyCmd.Flags().StringVar(&studyLearner, "learner", "", "learner name recorded with progress (default: local)")
}
