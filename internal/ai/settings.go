package ai

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gordyrad/report-relay/internal/store"
)

// Settings is the persisted AI configuration.
type Settings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
}

// DefaultSettings returns the settings used before the user configures
// anything: DeepSeek with its first model and no key.
func DefaultSettings() Settings {
	return Settings{
		Provider: "deepseek",
		Model:    DefaultModel("deepseek"),
	}
}

// LoadSettings reads AI settings from the store. Missing or corrupt stored
// JSON degrades to the defaults with a logged warning.
func LoadSettings(s *store.Store) Settings {
	raw, err := s.GetSetting(store.KeyAISettings)
	if err != nil {
		log.Printf("ai: warning: reading settings: %v", err)
		return DefaultSettings()
	}
	if raw == "" {
		return DefaultSettings()
	}

	var settings Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Printf("ai: warning: stored settings are not valid JSON, using defaults: %v", err)
		return DefaultSettings()
	}
	if settings.Provider == "" {
		settings.Provider = "deepseek"
	}
	if settings.Model == "" {
		settings.Model = DefaultModel(settings.Provider)
	}
	return settings
}

// SaveSettings persists AI settings to the store.
func SaveSettings(s *store.Store, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding ai settings: %w", err)
	}
	if err := s.PutSetting(store.KeyAISettings, string(raw)); err != nil {
		return fmt.Errorf("storing ai settings: %w", err)
	}
	return nil
}
