package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/spf13/cobra"
)

func newExpandCmd() *cobra.Command {
	expandCmd := &cobra.Command{
		Use:   "expand FILE...",
		Short: "Replace changelog directives in documentation sources",
		Long: `Expand every changelog directive in the given files and print the result.

Both reStructuredText directives and Markdown fences are recognised:

  .. changelog::
     :repo: https://github.com/owner/repo
     :kind: release

  ` + "```changelog" + `
  repo: https://github.com/owner/repo
  kind: release
  ` + "```" + `

Everything outside a directive is copied unchanged. Use "-" to read stdin.
A failed fetch is rendered in place of the directive and does not stop the run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single input file")
			}

			d, err := newDirective(cmd)
			if err != nil {
				return err
			}

			for _, path := range args {
				doc, err := readSource(cmd, path)
				if err != nil {
					return err
				}

				logger := logging.GetLogger().With("file", path)
				logger.Info("expanding changelog directives")
				expanded := d.Expand(cmd.Context(), doc)

				if output != "" {
					if err := os.WriteFile(output, []byte(expanded), 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", output, err)
					}
					logger.Info("wrote expanded document", "output", output)
					continue
				}
				if _, err := io.WriteString(cmd.OutOrStdout(), expanded); err != nil {
					return err
				}
			}

			return nil
		},
	}

	expandCmd.Flags().StringP("output", "o", "", "Write the expanded document to this file instead of stdout")

	return expandCmd
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
