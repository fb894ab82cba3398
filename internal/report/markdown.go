package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gordyrad/report-relay/internal/canonical"
)

// MarkdownGenerator writes Markdown-formatted output files to disk.
type MarkdownGenerator struct {
	outputDir string
}

// NewMarkdownGenerator creates a new MarkdownGenerator that writes to outputDir.
func NewMarkdownGenerator(outputDir string) *MarkdownGenerator {
	return &MarkdownGenerator{outputDir: outputDir}
}

// WriteDraft renders a synthesized draft (generated field contents for a
// target template) and returns the file path.
func (g *MarkdownGenerator) WriteDraft(target *canonical.Template, fields map[string]string) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s — 草稿\n\n", target.Name)
	fmt.Fprintf(&b, "> Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))

	for _, field := range target.Fields {
		fmt.Fprintf(&b, "## %s\n\n", field.Label)
		content := fields[field.ID]
		if content == "" {
			content = "_（无内容）_"
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	path := filepath.Join(g.outputDir, draftFilename(target, "md"))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing draft file: %w", err)
	}
	return path, nil
}

// WriteReports renders a listing of canonical reports and returns the file path.
func (g *MarkdownGenerator) WriteReports(provider string, reports []canonical.Report) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reports (%s)\n\n", provider)
	fmt.Fprintf(&b, "> Exported: %s | %d report(s)\n\n", time.Now().Format("2006-01-02 15:04"), len(reports))

	for _, r := range reports {
		fmt.Fprintf(&b, "## %s\n\n", r.Title)
		for _, f := range r.Fields {
			fmt.Fprintf(&b, "**%s**\n\n%s\n\n", f.Name, f.Value)
		}
	}

	path := filepath.Join(g.outputDir, reportsFilename(provider, "md"))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing reports file: %w", err)
	}
	return path, nil
}

func draftFilename(target *canonical.Template, ext string) string {
	return fmt.Sprintf("draft-%s-%s.%s", slugify(target.Name), time.Now().Format("2006-01-02"), ext)
}

func reportsFilename(provider, ext string) string {
	return fmt.Sprintf("reports-%s-%s.%s", provider, time.Now().Format("2006-01-02"), ext)
}

// slugify makes a template name safe for a filename.
func slugify(name string) string {
	s := strings.TrimSpace(name)
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "} {
		s = strings.ReplaceAll(s, c, "-")
	}
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}
