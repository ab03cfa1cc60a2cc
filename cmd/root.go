// Package cmd provides the command-line interface for the changelog tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/danielolaszy/changelog/internal/changelog"
	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/directive"
	"github.com/danielolaszy/changelog/internal/github"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "changelog",
		Short: "Render GitHub tags and releases as HTML changelog fragments",
		Long: `changelog renders the tags or releases of a GitHub repository as HTML
fragments for documentation pages.

It can render a single directive from flags, or expand every changelog
directive found in reStructuredText or Markdown sources:

  .. changelog::
     :repo: https://github.com/owner/repo
     :kind: release

Credentials are read from GITHUB_USERNAME and GITHUB_TOKEN, optionally
loaded from a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().String("env-file", "", "Environment file to load instead of ./.env")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newExpandCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the environment file and configuration named by the
// persistent flags and applies the configured log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn("could not load .env", "error", err)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.SetupLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level))
	logging.Debug("configuration loaded",
		"domain", cfg.GitHub.Domain,
		"auth_mode", cfg.GitHub.AuthMode,
		"username", cfg.GitHub.Username,
		"token", logging.MaskSensitive(cfg.GitHub.Token),
		"timezone", cfg.Changelog.Timezone)

	return cfg, nil
}

// newDirective wires configuration, GitHub client and renderer together.
func newDirective(cmd *cobra.Command) (*directive.Directive, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	githubClient, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github client: %w", err)
	}

	return directive.New(changelog.NewRenderer(githubClient, cfg)), nil
}
