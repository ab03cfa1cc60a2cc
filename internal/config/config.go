// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the target zone must resolve on hosts without a zoneinfo database

	"github.com/spf13/viper"
)

const (
	// DefaultDomain is the public GitHub host.
	DefaultDomain = "github.com"
	// DefaultTimezone is the zone changelog dates are displayed in.
	DefaultTimezone = "America/Sao_Paulo"

	// AuthBasic sends the username/token pair as HTTP Basic credentials.
	AuthBasic = "basic"
	// AuthToken sends the token as an OAuth2 bearer token.
	AuthToken = "token"
)

// Config holds all configuration parameters for the application.
// It is built once at startup and passed to every component that needs it.
type Config struct {
	GitHub    GitHubConfig
	Changelog ChangelogConfig
	Log       LogConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Username string
	Token    string
	Domain   string
	AuthMode string

	// APIBaseURL overrides the API root derived from Domain.
	APIBaseURL string
}

// ChangelogConfig holds rendering configuration.
type ChangelogConfig struct {
	Timezone string
	Location *time.Location
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// APIURL returns the REST API base URL for the configured domain.
func (g GitHubConfig) APIURL() string {
	if g.APIBaseURL != "" {
		return strings.TrimSuffix(g.APIBaseURL, "/") + "/"
	}
	if g.domain() == DefaultDomain {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", g.domain())
}

// WebURL returns the base URL used for links into the web UI, without a trailing slash.
func (g GitHubConfig) WebURL() string {
	return "https://" + g.domain()
}

func (g GitHubConfig) domain() string {
	d := strings.TrimSuffix(strings.TrimSpace(g.Domain), "/")
	if d == "" {
		return DefaultDomain
	}
	return d
}

// LoadConfig loads configuration from environment variables and, when path is
// not empty, from a config file. Environment variables take precedence.
// Credentials are passed through as-is; missing credentials are not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("github.domain", DefaultDomain)
	v.SetDefault("github.auth_mode", AuthBasic)
	v.SetDefault("changelog.timezone", DefaultTimezone)
	v.SetDefault("log.level", "info")

	// Map specific environment variables
	v.BindEnv("github.username", "GITHUB_USERNAME")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.auth_mode", "GITHUB_AUTH_MODE")
	v.BindEnv("github.api_url", "GITHUB_API_URL")
	v.BindEnv("changelog.timezone", "CHANGELOG_TIMEZONE")
	v.BindEnv("log.level", "LOG_LEVEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	config := &Config{
		GitHub: GitHubConfig{
			Username:   v.GetString("github.username"),
			Token:      v.GetString("github.token"),
			Domain:     v.GetString("github.domain"),
			AuthMode:   strings.ToLower(v.GetString("github.auth_mode")),
			APIBaseURL: v.GetString("github.api_url"),
		},
		Changelog: ChangelogConfig{
			Timezone: v.GetString("changelog.timezone"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig checks the settings that have a closed set of valid values
// and resolves the display time zone.
func validateConfig(config *Config) error {
	switch config.GitHub.AuthMode {
	case AuthBasic, AuthToken:
	default:
		return fmt.Errorf("invalid GITHUB_AUTH_MODE %q, expected %q or %q",
			config.GitHub.AuthMode, AuthBasic, AuthToken)
	}

	loc, err := time.LoadLocation(config.Changelog.Timezone)
	if err != nil {
		return fmt.Errorf("invalid CHANGELOG_TIMEZONE %q: %w", config.Changelog.Timezone, err)
	}
	config.Changelog.Location = loc

	return nil
}
