package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gordyrad/report-relay/internal/canonical"
)

func draftTemplate() *canonical.Template {
	return &canonical.Template{
		ID:   "tpl1",
		Name: "月报",
		Fields: []canonical.Field{
			{ID: "field_tpl1_0", Label: "本月总结", Type: canonical.FieldRichText},
			{ID: "field_tpl1_1", Label: "下月计划", Type: canonical.FieldRichText},
		},
	}
}

func TestMarkdownWriteDraft(t *testing.T) {
	dir := t.TempDir()
	g := NewMarkdownGenerator(dir)

	path, err := g.WriteDraft(draftTemplate(), map[string]string{
		"field_tpl1_0": "完成了三项重点工作",
	})
	if err != nil {
		t.Fatalf("WriteDraft failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading draft: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "# 月报 — 草稿") {
		t.Errorf("draft missing title header:\n%s", content)
	}
	if !strings.Contains(content, "## 本月总结") || !strings.Contains(content, "完成了三项重点工作") {
		t.Errorf("draft missing generated field:\n%s", content)
	}
	// A field with no content gets the empty marker, not a silent omission.
	if !strings.Contains(content, "## 下月计划") || !strings.Contains(content, "_（无内容）_") {
		t.Errorf("draft missing empty-field marker:\n%s", content)
	}

	if !strings.HasPrefix(filepath.Base(path), "draft-") || !strings.HasSuffix(path, ".md") {
		t.Errorf("draft filename = %q", filepath.Base(path))
	}
}

func TestMarkdownWriteReports(t *testing.T) {
	dir := t.TempDir()
	g := NewMarkdownGenerator(dir)

	reports := []canonical.Report{
		{
			Title: "日报 - 张三 (2026-08-20 09:30)",
			Fields: []canonical.ReportField{
				{Name: "今日完成工作", Value: "写代码"},
			},
		},
	}
	path, err := g.WriteReports("dingtalk", reports)
	if err != nil {
		t.Fatalf("WriteReports failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "# Reports (dingtalk)") {
		t.Errorf("export missing header:\n%s", content)
	}
	if !strings.Contains(content, "## 日报 - 张三 (2026-08-20 09:30)") {
		t.Errorf("export missing report title:\n%s", content)
	}
	if !strings.Contains(content, "**今日完成工作**") || !strings.Contains(content, "写代码") {
		t.Errorf("export missing field:\n%s", content)
	}
}

func TestJSONWriteDraft(t *testing.T) {
	dir := t.TempDir()
	g := NewJSONGenerator(dir)

	fields := map[string]string{"field_tpl1_0": "内容"}
	path, err := g.WriteDraft(draftTemplate(), fields)
	if err != nil {
		t.Fatalf("WriteDraft failed: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("path = %q, want .json", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading draft: %v", err)
	}

	var doc struct {
		Template *canonical.Template `json:"template"`
		Fields   map[string]string   `json:"fields"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("draft is not valid JSON: %v", err)
	}
	if doc.Template == nil || doc.Template.ID != "tpl1" {
		t.Errorf("template = %+v", doc.Template)
	}
	if doc.Fields["field_tpl1_0"] != "内容" {
		t.Errorf("fields = %v", doc.Fields)
	}
}

func TestJSONWriteReports(t *testing.T) {
	dir := t.TempDir()
	g := NewJSONGenerator(dir)

	path, err := g.WriteReports("feishu", []canonical.Report{{ID: "t1", Title: "每日汇报"}})
	if err != nil {
		t.Fatalf("WriteReports failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var doc struct {
		Provider string             `json:"provider"`
		Reports  []canonical.Report `json:"reports"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Provider != "feishu" || len(doc.Reports) != 1 || doc.Reports[0].ID != "t1" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"月报", "月报"},
		{"Weekly Report", "Weekly-Report"},
		{"a/b\\c:d", "a-b-c-d"},
		{"  spaced  out  ", "spaced-out"},
		{"///", "untitled"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
