package ai

import (
	"encoding/json"
	"fmt"
)

// Message is one chat message in the canonical request shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the canonical completion payload. Providers transform it into
// their own wire shape before it goes out.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider describes one completion provider: where to send requests, how to
// shape them, and how to pull the incremental text fragment out of a stream
// chunk. Adding a provider means adding one more entry to Providers.
type Provider struct {
	Name             string
	Label            string
	BaseURL          string
	Models           []ModelInfo
	TransformRequest func(req Request) any
	ExtractDelta     func(chunk []byte) (string, error)
}

// openAIStreamChunk is the OpenAI-compatible stream chunk envelope both
// in-source providers use.
type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// extractOpenAIDelta pulls choices[0].delta.content out of a chunk. An empty
// string means the chunk carried no text (role frames, keepalives).
func extractOpenAIDelta(chunk []byte) (string, error) {
	var c openAIStreamChunk
	if err := json.Unmarshal(chunk, &c); err != nil {
		return "", fmt.Errorf("parsing stream chunk: %w", err)
	}
	if len(c.Choices) == 0 {
		return "", nil
	}
	return c.Choices[0].Delta.Content, nil
}

// Providers is the completion provider table.
var Providers = map[string]*Provider{
	"deepseek": {
		Name:    "deepseek",
		Label:   "DeepSeek",
		BaseURL: "https://api.deepseek.com",
		Models: []ModelInfo{
			{ID: "deepseek-chat", Name: "DeepSeek Chat"},
			{ID: "deepseek-reasoner", Name: "DeepSeek Reasoner"},
		},
		TransformRequest: func(req Request) any {
			return map[string]any{
				"model":       req.Model,
				"messages":    req.Messages,
				"stream":      req.Stream,
				"temperature": req.Temperature,
				"max_tokens":  req.MaxTokens,
			}
		},
		ExtractDelta: extractOpenAIDelta,
	},
	"doubao": {
		Name:    "doubao",
		Label:   "火山方舟 (豆包)",
		BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
		Models: []ModelInfo{
			{ID: "kimi-k2-250711", Name: "Kimi-K2"},
			{ID: "doubao-1-5-pro-32k-250115", Name: "Doubao Pro 32k"},
			{ID: "doubao-1-5-lite-32k-250115", Name: "Doubao Lite 32k"},
		},
		// Ark rejects max_tokens on these models, so it is left out.
		TransformRequest: func(req Request) any {
			return map[string]any{
				"model":       req.Model,
				"messages":    req.Messages,
				"stream":      req.Stream,
				"temperature": req.Temperature,
			}
		},
		ExtractDelta: extractOpenAIDelta,
	},
}

// ProviderFor returns the provider table entry for the given name.
func ProviderFor(name string) (*Provider, error) {
	p, ok := Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %q", name)
	}
	return p, nil
}

// DefaultModel returns the first model of the named provider, or an empty
// string for unknown providers.
func DefaultModel(provider string) string {
	p, ok := Providers[provider]
	if !ok || len(p.Models) == 0 {
		return ""
	}
	return p.Models[0].ID
}
