package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gordyrad/report-relay/internal/canonical"
)

// JSONGenerator writes JSON-formatted output files to disk.
type JSONGenerator struct {
	outputDir string
}

// NewJSONGenerator creates a new JSONGenerator that writes to outputDir.
func NewJSONGenerator(outputDir string) *JSONGenerator {
	return &JSONGenerator{outputDir: outputDir}
}

type draftDocument struct {
	Template    *canonical.Template `json:"template"`
	Fields      map[string]string   `json:"fields"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type reportsDocument struct {
	Provider   string             `json:"provider"`
	Reports    []canonical.Report `json:"reports"`
	ExportedAt time.Time          `json:"exported_at"`
}

// WriteDraft writes a synthesized draft as JSON and returns the file path.
func (g *JSONGenerator) WriteDraft(target *canonical.Template, fields map[string]string) (string, error) {
	doc := draftDocument{Template: target, Fields: fields, GeneratedAt: time.Now()}
	return g.write(draftFilename(target, "json"), doc)
}

// WriteReports writes a report listing as JSON and returns the file path.
func (g *JSONGenerator) WriteReports(provider string, reports []canonical.Report) (string, error) {
	doc := reportsDocument{Provider: provider, Reports: reports, ExportedAt: time.Now()}
	return g.write(reportsFilename(provider, "json"), doc)
}

func (g *JSONGenerator) write(filename string, doc any) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	path := filepath.Join(g.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return path, nil
}
