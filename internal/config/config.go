package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Supported output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Config holds all application configuration.
type Config struct {
	BackendURL string
	DBPath     string
	OutputDir  string
	Format     string // "markdown" or "json"
	Lookback   time.Duration
	Verbose    bool
	ConfigFile string

	AI AIConfig
}

// AIConfig holds completion provider defaults. The API key and model chosen
// with `report-relay ai set` are persisted in the local store; values here act
// as overrides from flags and environment.
type AIConfig struct {
	Provider string // "deepseek" or "doubao"
	Model    string
	APIKey   string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", "report-relay")

	return &Config{
		BackendURL: "http://localhost:8080",
		DBPath:     filepath.Join(configDir, "report-relay.db"),
		OutputDir:  "./reports",
		Format:     "markdown",
		Lookback:   7 * 24 * time.Hour,
		AI: AIConfig{
			Provider: "deepseek",
			Model:    "deepseek-chat",
		},
	}
}

// ParseLookback parses a lookback string like "7d", "2w", "1m" into a duration.
// Supports: Nd (days), Nw (weeks), Nm (months of 30 days), and standard Go durations like "1h".
func ParseLookback(s string) (time.Duration, error) {
	if s == "" {
		return 7 * 24 * time.Hour, nil
	}

	s = strings.TrimSpace(strings.ToLower(s))

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid lookback format: %q", s)
	}

	numStr := s[:len(s)-1]
	unit := s[len(s)-1]

	// Try our custom d/w/m suffixes first (these take priority over Go duration parsing)
	if unit == 'd' || unit == 'w' || unit == 'm' {
		var num int
		if _, err := fmt.Sscanf(numStr, "%d", &num); err == nil {
			switch unit {
			case 'd':
				return time.Duration(num) * 24 * time.Hour, nil
			case 'w':
				return time.Duration(num) * 7 * 24 * time.Hour, nil
			case 'm':
				return time.Duration(num) * 30 * 24 * time.Hour, nil
			}
		}
	}

	// Fall back to standard Go duration (e.g., "1h", "30s", "2h30m")
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	return 0, fmt.Errorf("invalid lookback format: %q (use Nd, Nw, Nm, or Go duration like 1h)", s)
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL must not be empty")
	}
	if c.Format != FormatMarkdown && c.Format != FormatJSON {
		return fmt.Errorf("format must be 'markdown' or 'json', got %q", c.Format)
	}
	if c.AI.Provider != "deepseek" && c.AI.Provider != "doubao" {
		return fmt.Errorf("ai provider must be 'deepseek' or 'doubao', got %q", c.AI.Provider)
	}
	return nil
}
