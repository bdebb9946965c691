// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kurso/internal/config"
	"kurso/internal/issue"
	"kurso/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kurso configuration",
	Long: `Manage kurso configuration.

Configuration is stored in:
  - Linux: ~/.config/kurso/config.cue
  - macOS: ~/Library/Application Support/kurso/config.cue
  - Windows: %APPDATA%\kurso\config.cue

A course-local kurso.cue overrides the user-level file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which configuration file is in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Printf("%s Created default config under %s\n",
				SuccessStyle.Render("✓"), PathStyle.Render(dir))
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, err := loadConfigOrRender(ctx)
	if err != nil {
		return err
	}
	fmt.Print(config.GenerateCUE(cfg))
	return nil
}

func showConfigPath(ctx context.Context) error {
	opts := config.LoadOptions{}
	if cfgFile != "" {
		opts.ConfigFilePath = types.FilesystemPath(cfgFile)
	}
	_, path, err := config.LoadWithPath(ctx, opts)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(SubtitleStyle.Render("no config file found; defaults are in effect"))
		dir, dirErr := config.ConfigDir()
		if dirErr == nil {
			fmt.Printf("expected location: %s\n", PathStyle.Render(dir))
		}
		return nil
	}
	fmt.Println(path)
	return nil
}

func loadConfigOrRender(ctx context.Context) (*config.Config, error) {
	opts := config.LoadOptions{}
	if cfgFile != "" {
		opts.ConfigFilePath = types.FilesystemPath(cfgFile)
	}
	cfg, err := config.NewProvider().Load(ctx, opts)
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, err
	}
	return cfg, nil
}
