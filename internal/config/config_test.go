package config

import (
	"testing"
	"time"
)

func TestParseLookback(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"14d", 14 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"1m", 30 * 24 * time.Hour, false},
		{"", 7 * 24 * time.Hour, false}, // default
		{"1h", time.Hour, false},                         // standard duration
		{"30m", 30 * 30 * 24 * time.Hour, false},         // 30 months (custom format takes priority)
		{"2h30m0s", 2*time.Hour + 30*time.Minute, false}, // standard Go duration
		{"abc", 0, true},
		{"x", 0, true},
		{"7x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLookback(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseLookback(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.want {
				t.Errorf("ParseLookback(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Lookback != 7*24*time.Hour {
		t.Errorf("Lookback = %v, want 7d", cfg.Lookback)
	}
	if cfg.OutputDir != "./reports" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "./reports")
	}
	if cfg.Format != FormatMarkdown {
		t.Errorf("Format = %q, want %q", cfg.Format, FormatMarkdown)
	}
	if cfg.BackendURL != "http://localhost:8080" {
		t.Errorf("BackendURL = %q, want localhost default", cfg.BackendURL)
	}
	if cfg.AI.Provider != "deepseek" {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, "deepseek")
	}
	if cfg.AI.Model != "deepseek-chat" {
		t.Errorf("AI.Model = %q, want %q", cfg.AI.Model, "deepseek-chat")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "json format",
			modify:  func(c *Config) { c.Format = FormatJSON },
			wantErr: false,
		},
		{
			name:    "doubao provider",
			modify:  func(c *Config) { c.AI.Provider = "doubao" },
			wantErr: false,
		},
		{
			name:    "empty backend URL",
			modify:  func(c *Config) { c.BackendURL = "" },
			wantErr: true,
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Format = "yaml" },
			wantErr: true,
		},
		{
			name:    "unknown ai provider",
			modify:  func(c *Config) { c.AI.Provider = "openai" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
