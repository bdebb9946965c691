// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"kurso/internal/config"
	"kurso/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// loadedConfig is the configuration resolved during initRootConfig.
	// Command handlers read it instead of re-loading.
	loadedConfig *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "kurso",
		Short: "A toolchain for interactive Markdown courses",
		Long: TitleStyle.Render("kurso") + SubtitleStyle.Render(" - a toolchain for interactive Markdown courses") + `

kurso discovers, validates, renders, serves, and plays Markdown courses
whose lessons embed interactive fenced blocks: quizzes, terminal
transcripts, exercises, code walkthroughs, and command builders.

A course is a directory with a course.yml manifest and a docs/ tree of
Markdown lessons.

` + SubtitleStyle.Render("Examples:") + `
  kurso init my-course      Scaffold a new course
  kurso lint                Validate the course in the current directory
  kurso build               Render the course to a static site
  kurso study               Study the course in the terminal
  kurso serve               Serve the built site with live rebuilds`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/kurso/config.cue)")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// initRootConfig loads configuration once before any command runs.
func initRootConfig() {
	opts := config.LoadOptions{}
	if cfgFile != "" {
		opts.ConfigFilePath = types.FilesystemPath(cfgFile)
	}

	cfg, err := config.NewProvider().Load(context.Background(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	loadedConfig = cfg

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// effectiveConfig returns the loaded configuration, falling back to an
// empty one when loading failed (the warning was already printed).
func effectiveConfig() *config.Config {
	if loadedConfig == nil {
		return &config.Config{}
	}
	return loadedConfig
}
