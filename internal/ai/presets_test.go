package ai

import (
	"strings"
	"testing"
)

func TestPresetFor(t *testing.T) {
	p, err := PresetFor("总结")
	if err != nil {
		t.Fatalf("PresetFor failed: %v", err)
	}
	if !strings.Contains(p.Prompt, "总结") {
		t.Errorf("prompt = %q, want a summarization instruction", p.Prompt)
	}

	if _, err := PresetFor("没有这个"); err == nil {
		t.Error("PresetFor should fail for an unknown name")
	}
}

func TestPresetsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Presets {
		if p.Name == "" || p.Prompt == "" || p.Description == "" {
			t.Errorf("preset %+v has an empty field", p)
		}
		if seen[p.Name] {
			t.Errorf("duplicate preset name %q", p.Name)
		}
		seen[p.Name] = true
	}
	if len(Presets) < 10 {
		t.Errorf("len(Presets) = %d, catalog looks truncated", len(Presets))
	}
}
