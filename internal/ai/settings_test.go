package ai

import (
	"testing"

	"github.com/gordyrad/report-relay/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	settings := LoadSettings(s)
	if settings.Provider != "deepseek" {
		t.Errorf("Provider = %q, want deepseek", settings.Provider)
	}
	if settings.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat", settings.Model)
	}
	if settings.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", settings.APIKey)
	}
}

func TestSettingsRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := Settings{Provider: "doubao", Model: "doubao-1-5-pro-32k-250115", APIKey: "ak-test"}
	if err := SaveSettings(s, in); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got := LoadSettings(s)
	if got != in {
		t.Errorf("LoadSettings = %+v, want %+v", got, in)
	}
}

func TestLoadSettingsCorruptJSON(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutSetting(store.KeyAISettings, "{not valid"); err != nil {
		t.Fatalf("PutSetting failed: %v", err)
	}

	got := LoadSettings(s)
	if got != DefaultSettings() {
		t.Errorf("LoadSettings on corrupt JSON = %+v, want defaults", got)
	}
}

func TestLoadSettingsBackfillsModel(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutSetting(store.KeyAISettings, `{"provider":"doubao","apiKey":"ak"}`); err != nil {
		t.Fatalf("PutSetting failed: %v", err)
	}

	got := LoadSettings(s)
	if got.Model != DefaultModel("doubao") {
		t.Errorf("Model = %q, want backfilled default for doubao", got.Model)
	}
}
