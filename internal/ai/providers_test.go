package ai

import (
	"encoding/json"
	"testing"
)

func TestExtractOpenAIDelta(t *testing.T) {
	tests := []struct {
		name    string
		chunk   string
		want    string
		wantErr bool
	}{
		{"content fragment", `{"choices":[{"delta":{"content":"你好"}}]}`, "你好", false},
		{"empty choices", `{"choices":[]}`, "", false},
		{"role frame", `{"choices":[{"delta":{"role":"assistant"}}]}`, "", false},
		{"malformed json", `{not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractOpenAIDelta([]byte(tt.chunk))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("fragment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderFor(t *testing.T) {
	for _, name := range []string{"deepseek", "doubao"} {
		p, err := ProviderFor(name)
		if err != nil {
			t.Errorf("ProviderFor(%q) failed: %v", name, err)
			continue
		}
		if p.Name != name {
			t.Errorf("ProviderFor(%q).Name = %q", name, p.Name)
		}
		if p.BaseURL == "" || len(p.Models) == 0 {
			t.Errorf("provider %q is incomplete: %+v", name, p)
		}
	}

	if _, err := ProviderFor("openai"); err == nil {
		t.Error("ProviderFor should reject unknown providers")
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel("deepseek"); got != "deepseek-chat" {
		t.Errorf("DefaultModel(deepseek) = %q", got)
	}
	if got := DefaultModel("doubao"); got == "" {
		t.Error("DefaultModel(doubao) should not be empty")
	}
	if got := DefaultModel("unknown"); got != "" {
		t.Errorf("DefaultModel(unknown) = %q, want empty", got)
	}
}

// Ark rejects max_tokens, so the doubao payload must not carry it while the
// deepseek payload must.
func TestTransformRequestMaxTokens(t *testing.T) {
	req := Request{
		Model:       "m",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Stream:      true,
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	for name, wantKey := range map[string]bool{"deepseek": true, "doubao": false} {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(Providers[name].TransformRequest(req))
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			_, has := payload["max_tokens"]
			if has != wantKey {
				t.Errorf("max_tokens present = %v, want %v", has, wantKey)
			}
			if payload["model"] != "m" || payload["stream"] != true {
				t.Errorf("payload = %v", payload)
			}
		})
	}
}
