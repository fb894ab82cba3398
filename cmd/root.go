package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gordyrad/report-relay/internal/auth"
	"github.com/gordyrad/report-relay/internal/backend"
	"github.com/gordyrad/report-relay/internal/catalog"
	"github.com/gordyrad/report-relay/internal/config"
	"github.com/gordyrad/report-relay/internal/providers"
	"github.com/gordyrad/report-relay/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "report-relay",
	Short: "Work report bridge for DingTalk and Feishu",
	Long: `A CLI tool that logs into DingTalk or Feishu through the report backend,
pulls work-report templates and submitted reports into one canonical shape,
and synthesizes new report drafts with an AI completion provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("backend-url", "http://localhost:8080", "Report backend base URL")
	pf.String("db-path", "", "SQLite database path (default ~/.config/report-relay/report-relay.db)")
	pf.String("output-dir", "./reports", "Output directory for exported files")
	pf.String("format", "markdown", "Output format: markdown, json")
	pf.String("lookback", "7d", "How far back to list reports (e.g., 7d, 2w, 1m)")
	pf.String("ai-provider", "", "AI provider override: deepseek, doubao")
	pf.String("ai-model", "", "AI model override")
	pf.String("ai-api-key", "", "AI API key override")
	pf.Bool("verbose", false, "Verbose logging")
	pf.String("config", "", "Path to YAML config file")

	flags := []string{
		"backend-url", "db-path", "output-dir", "format", "lookback",
		"ai-provider", "ai-model", "ai-api-key", "verbose", "config",
	}
	for _, f := range flags {
		_ = viper.BindPFlag(f, pf.Lookup(f))
	}
}

func initConfig() {
	// A .env in the working directory supplies API keys during development.
	_ = godotenv.Load()

	cfg = config.DefaultConfig()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	_ = viper.BindEnv("backend-url", "RELAY_BACKEND_URL")
	_ = viper.BindEnv("db-path", "RELAY_DB_PATH")
	_ = viper.BindEnv("output-dir", "RELAY_OUTPUT_DIR")
	_ = viper.BindEnv("format", "RELAY_FORMAT")
	_ = viper.BindEnv("lookback", "RELAY_LOOKBACK")
	_ = viper.BindEnv("ai-provider", "RELAY_AI_PROVIDER")
	_ = viper.BindEnv("ai-model", "RELAY_AI_MODEL")
	_ = viper.BindEnv("ai-api-key", "DEEPSEEK_API_KEY", "ARK_API_KEY")
	_ = viper.BindEnv("verbose", "RELAY_VERBOSE")

	_ = viper.ReadInConfig()

	if v := viper.GetString("backend-url"); v != "" {
		cfg.BackendURL = v
	}
	if v := viper.GetString("db-path"); v != "" {
		cfg.DBPath = v
	}
	if v := viper.GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v := viper.GetString("format"); v != "" {
		cfg.Format = v
	}
	if v := viper.GetString("lookback"); v != "" {
		if d, err := config.ParseLookback(v); err == nil {
			cfg.Lookback = d
		}
	}
	if v := viper.GetString("ai-provider"); v != "" {
		cfg.AI.Provider = v
	}
	if v := viper.GetString("ai-model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetString("ai-api-key"); v != "" {
		cfg.AI.APIKey = v
	}
	cfg.Verbose = viper.GetBool("verbose")
}

// components wires up the store, credential store, and catalog the way every
// provider-facing command needs them. The caller closes the returned store.
func components() (*store.Store, *auth.CredentialStore, *catalog.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening store: %w", err)
	}

	creds := auth.New(s, cfg.BackendURL)
	creds.OnSessionExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Run `report-relay login` to sign in again.")
	})

	client := backend.NewClient(creds, cfg.BackendURL)
	registry := providers.NewRegistry(
		providers.NewDingTalkAdapter(client),
		providers.NewFeishuAdapter(client),
	)

	return s, creds, catalog.New(creds, registry, s), nil
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
