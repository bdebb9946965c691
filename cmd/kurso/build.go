// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kurso/internal/issue"
	"kurso/internal/site"
)

var (
	buildClean   bool
	buildDrafts  bool
	buildSiteDir string

	buildCmd = &cobra.Command{
		Use:   "build [dir]",
		Short: "Render the course to a static HTML site",
		Long: `Render every lesson to a static HTML site under the manifest's
site_dir. Interactive fences become the data-config divs the course
runtime hydrates in the browser; plain code blocks get server-side
syntax highlighting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := discoverCourse(cmd.Context(), courseDirArg(args))
			if err != nil {
				return err
			}

			result, err := site.Build(cmd.Context(), c, site.Options{
				Clean:   buildClean,
				Drafts:  buildDrafts,
				SiteDir: buildSiteDir,
			})
			if err != nil {
				if rendered, renderErr := issue.Get(issue.BuildFailedId).Render("dark"); renderErr == nil {
					fmt.Fprint(os.Stderr, rendered)
				}
				return issue.WrapWithOperation(err, "build site")
			}

			for _, d := range result.Diagnostics {
				fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: ")+d.String())
			}
			fmt.Printf("%s Built %d pages and %d assets in %s (%s)\n",
				SuccessStyle.Render("✓"), result.Pages, result.Assets,
				PathStyle.Render(result.Dir), result.Duration.Round(time.Millisecond))
			return nil
		},
	}
)

func init() {
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "empty the output directory before building")
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "include draft lessons")
	buildCmd.Flags().StringVarP(&buildSiteDir, "output", "o", "", "override the output directory")
}
