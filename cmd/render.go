package cmd

import (
	"fmt"

	"github.com/danielolaszy/changelog/internal/changelog"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render one changelog directive from flags",
		Long: `Render one changelog directive and print the resulting HTML.

Flags mirror the directive options. Boolean options accept true, 1, yes or on
(any case); every other value means false. Options that are not given keep
their defaults: kind=tag and every display toggle on.

Example:
  changelog render --repo https://github.com/owner/repo --kind release --commits no`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only options the user set are passed on, so defaults stay with the parser.
			opts := map[string]string{}
			for _, name := range changelog.OptionNames {
				if !cmd.Flags().Changed(name) {
					continue
				}
				value, err := cmd.Flags().GetString(name)
				if err != nil {
					return err
				}
				opts[name] = value
			}

			d, err := newDirective(cmd)
			if err != nil {
				return err
			}

			node := d.Run(cmd.Context(), opts)
			fmt.Fprintln(cmd.OutOrStdout(), node.HTML())
			return nil
		},
	}

	renderCmd.Flags().String(changelog.OptionRepo, "", "Repository URL (e.g., 'https://github.com/owner/repo')")
	renderCmd.Flags().String(changelog.OptionKind, "tag", "Listing kind: 'tag' or 'release'")
	renderCmd.Flags().String(changelog.OptionTitle, "true", "Show the release or tag name")
	renderCmd.Flags().String(changelog.OptionDesc, "true", "Show the description")
	renderCmd.Flags().String(changelog.OptionCommits, "true", "Show commit links")
	renderCmd.Flags().String(changelog.OptionDate, "true", "Show the date")

	return renderCmd
}
