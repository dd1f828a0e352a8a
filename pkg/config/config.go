package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/github"
)

// Config holds the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	GitHub      GitHubConfig      `yaml:"github"`
	DevRedirect DevRedirectConfig `yaml:"dev_redirect"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port               int `yaml:"port" env:"PORT"`
	ReadTimeout        int `yaml:"read_timeout" env:"READ_TIMEOUT_SECONDS"`
	WriteTimeout       int `yaml:"write_timeout" env:"WRITE_TIMEOUT_SECONDS"`
	ShutdownTimeout    int `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT_SECONDS"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// GitHubConfig describes the OAuth app registered on GitHub.
// ClientSecret is only ever sent to TokenURL.
type GitHubConfig struct {
	ClientID       string   `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret   string   `yaml:"client_secret" env:"CLIENT_SECRET"`
	TokenURL       string   `yaml:"token_url" env:"GITHUB_TOKEN_URL"`
	AuthorizeURL   string   `yaml:"authorize_url" env:"GITHUB_AUTHORIZE_URL"`
	Scopes         []string `yaml:"scopes" env:"GITHUB_SCOPES" envSeparator:","`
	UserAgent      string   `yaml:"user_agent" env:"USER_AGENT"`
	TimeoutSeconds int      `yaml:"timeout_seconds" env:"UPSTREAM_TIMEOUT_SECONDS"`
}

// DevRedirectConfig controls the local development callback helper
type DevRedirectConfig struct {
	Enabled bool `yaml:"enabled" env:"DEV_REDIRECT_ENABLED"`
}

// Timeout returns the outbound token request timeout
func (g GitHubConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// String describes the GitHub config without the client secret
func (g GitHubConfig) String() string {
	return fmt.Sprintf("client_id=%s secret_len=%d token_url=%s scopes=%s",
		g.ClientID, len(g.ClientSecret), g.TokenURL, strings.Join(g.Scopes, ","))
}

// SetDefaults sets default values for configuration options that are not specified
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.GitHub.TokenURL == "" {
		c.GitHub.TokenURL = github.Endpoint.TokenURL
	}
	if c.GitHub.AuthorizeURL == "" {
		c.GitHub.AuthorizeURL = github.Endpoint.AuthURL
	}
	c.GitHub.Scopes = filterEmpty(c.GitHub.Scopes)
	if len(c.GitHub.Scopes) == 0 {
		c.GitHub.Scopes = []string{"repo"}
	}
	if c.GitHub.UserAgent == "" {
		c.GitHub.UserAgent = "github-lite"
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		c.GitHub.TimeoutSeconds = 30
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.ClientID == "" {
		return fmt.Errorf("client id is required (CLIENT_ID)")
	}
	if c.GitHub.ClientSecret == "" {
		return fmt.Errorf("client secret is required (CLIENT_SECRET)")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limit cannot be negative: %d", c.Server.RateLimitPerMinute)
	}

	if err := validateEndpoint(c.GitHub.TokenURL); err != nil {
		return fmt.Errorf("token url: %w", err)
	}
	if err := validateEndpoint(c.GitHub.AuthorizeURL); err != nil {
		return fmt.Errorf("authorize url: %w", err)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level '%s', must be one of: %s", c.Logging.Level, strings.Join(validLevels, ", "))
	}
	validFormats := []string{"text", "json"}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format '%s', must be one of: %s", c.Logging.Format, strings.Join(validFormats, ", "))
	}

	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an absolute http(s) URL: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %s", raw)
	}
	return nil
}

// Helper function to check if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Helper function to filter out empty strings from slice
func filterEmpty(slice []string) []string {
	var result []string
	for _, item := range slice {
		if strings.TrimSpace(item) != "" {
			result = append(result, strings.TrimSpace(item))
		}
	}
	return result
}
