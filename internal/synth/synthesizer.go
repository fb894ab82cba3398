// Package synth generates a new report draft from a set of source reports
// and a target template, one buffered completion call per target field.
package synth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/gordyrad/report-relay/internal/ai"
	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/store"
)

// sourceDivider separates rendered source reports in the prompt text.
const sourceDivider = "\n---\n"

// CompletionClient is the slice of the ai client the synthesizer needs.
type CompletionClient interface {
	Process(ctx context.Context, prompt, text string, onChunk ai.ChunkFunc, opts ai.Options) (string, error)
}

// Synthesizer produces per-field content for a target template from source
// reports. Fields are generated sequentially in the template's declared
// order; one field's failure never aborts the rest.
type Synthesizer struct {
	llm   CompletionClient
	store *store.Store
	model string
}

// New creates a Synthesizer. The store may be nil to disable result caching.
func New(llm CompletionClient, s *store.Store, model string) *Synthesizer {
	return &Synthesizer{llm: llm, store: s, model: model}
}

// SummarizeReports generates content for every field of the target template.
// The returned map has one entry per field ID: generated text on success, a
// manual-entry placeholder for fields whose completion call failed.
func (s *Synthesizer) SummarizeReports(ctx context.Context, sources []canonical.Report, target *canonical.Template) (map[string]string, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source reports to summarize")
	}

	block := RenderSourceBlock(sources)
	summary := make(map[string]string, len(target.Fields))

	for _, field := range target.Fields {
		content, err := s.generateField(ctx, block, target.ID, field)
		if err != nil {
			log.Printf("synth: warning: generating field %q failed: %v", field.Label, err)
			summary[field.ID] = manualPlaceholder(field.Label)
			continue
		}
		summary[field.ID] = content
	}

	return summary, nil
}

// generateField produces content for one target field, consulting the cache
// first so re-runs over unchanged sources skip the API call.
func (s *Synthesizer) generateField(ctx context.Context, block, templateID string, field canonical.Field) (string, error) {
	prompt := buildPrompt(field.Label)
	promptHash := hashContent(prompt)
	cacheKey := buildCacheKey(templateID, field.ID, hashContent(block), promptHash)

	if s.store != nil {
		cached, err := s.store.GetSynthesisCache(cacheKey)
		if err == nil && cached != nil {
			return cached.Result, nil
		}
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("checking synthesis cache: %w", err)
		}
	}

	content, err := s.llm.Process(ctx, prompt, block, nil, ai.Options{Buffered: true})
	if err != nil {
		return "", err
	}

	if s.store != nil {
		if cacheErr := s.store.PutSynthesisCache(&store.SynthesisCache{
			CacheKey:   cacheKey,
			TemplateID: templateID,
			FieldID:    field.ID,
			PromptHash: promptHash,
			Result:     content,
			Model:      s.model,
		}); cacheErr != nil {
			log.Printf("synth: warning: caching result for field %q: %v", field.Label, cacheErr)
		}
	}

	return content, nil
}

// RenderSourceBlock flattens source reports into the delimited plain-text
// block fed to the model: each report as a titled section listing
// "name: value" per field, sections separated by a fixed divider.
func RenderSourceBlock(reports []canonical.Report) string {
	sections := make([]string, 0, len(reports))
	for _, report := range reports {
		var b strings.Builder
		fmt.Fprintf(&b, "【%s】\n", report.Title)
		for _, field := range report.Fields {
			fmt.Fprintf(&b, "%s: %s\n", field.Name, field.Value)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, sourceDivider)
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func buildCacheKey(templateID, fieldID, contentHash, promptHash string) string {
	return fmt.Sprintf("%s:%s:%s:%s", templateID, fieldID, contentHash[:16], promptHash[:16])
}
