// Package ai drives OpenAI-compatible chat completion endpoints, in both
// buffered and incrementally streamed modes, behind a provider table so the
// rest of the application sees one uniform text stream.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gordyrad/report-relay/internal/canonical"
)

const (
	defaultSystemPrompt = "你是一个专业的文本编辑助手，请根据用户的要求对文本进行处理。直接返回处理后的结果，不要添加额外的解释或格式。"
	defaultTemperature  = 0.7
	defaultMaxTokens    = 2000

	ssePrefix   = "data: "
	sseDoneLine = "data: [DONE]"
)

// Options tune a single completion call. Zero values fall back to the
// defaults the providers expect.
type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	// Buffered disables streaming: the whole completion arrives as one JSON
	// body and no chunk callbacks fire.
	Buffered bool
}

// ChunkFunc receives each incremental fragment along with everything
// accumulated so far.
type ChunkFunc func(fragment, accumulated string)

// Client issues chat completion calls for the configured provider.
type Client struct {
	settings   Settings
	httpClient *http.Client

	// baseURL overrides the provider's endpoint base when non-empty.
	// Tests point it at a local server.
	baseURL string
}

// NewClient creates a completion client with the given settings.
func NewClient(settings Settings) *Client {
	return &Client{
		settings: settings,
		httpClient: &http.Client{
			// Streamed completions can legitimately run for minutes.
			Timeout: 5 * time.Minute,
		},
	}
}

// SetBaseURL overrides the provider endpoint base. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// bufferedResponse is the single-object completion body.
type bufferedResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiError is the error body completion providers return on non-2xx.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Process sends prompt and text to the configured model and returns the full
// completion text. In streaming mode (the default) onChunk is invoked per
// fragment as it arrives; in buffered mode the result comes back in one
// piece and onChunk is never called. A missing API key fails before any
// network attempt.
func (c *Client) Process(ctx context.Context, prompt, text string, onChunk ChunkFunc, opts Options) (string, error) {
	if c.settings.APIKey == "" {
		return "", canonical.ErrMissingAPIKey
	}

	provider, err := ProviderFor(c.settings.Provider)
	if err != nil {
		return "", err
	}

	resp, err := c.call(ctx, provider, prompt, text, opts)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if opts.Buffered {
		var br bufferedResponse
		if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
			return "", fmt.Errorf("parsing completion response: %w", err)
		}
		if len(br.Choices) == 0 {
			return "", fmt.Errorf("completion response has no choices")
		}
		return br.Choices[0].Message.Content, nil
	}

	return readStream(ctx, resp.Body, provider, onChunk)
}

// call builds the provider payload and issues the POST. Non-2xx responses
// become canonical.UpstreamError with whatever message the body yields.
func (c *Client) call(ctx context.Context, provider *Provider, prompt, text string, opts Options) (*http.Response, error) {
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload := provider.TransformRequest(Request{
		Model: c.settings.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt + "\n\n" + text},
		},
		Stream:      !opts.Buffered,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	base := c.baseURL
	if base == "" {
		base = provider.BaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		msg := ""
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(raw, &ae) == nil {
				msg = ae.Error.Message
			}
		}
		resp.Body.Close()
		return nil, &canonical.UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	return resp, nil
}

// readStream consumes an SSE-framed response body line by line. Frames look
// like "data: <json>\n" and the stream ends with "data: [DONE]". A malformed
// line is logged and skipped; it never aborts the stream. The caller closes
// the body, so every exit path releases the transport.
func readStream(ctx context.Context, body io.Reader, provider *Provider, onChunk ChunkFunc) (string, error) {
	var accumulated strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return accumulated.String(), ctx.Err()
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) || line == sseDoneLine {
			continue
		}

		fragment, err := provider.ExtractDelta([]byte(strings.TrimPrefix(line, ssePrefix)))
		if err != nil {
			log.Printf("ai: warning: skipping malformed stream line: %v", err)
			continue
		}
		if fragment == "" {
			continue
		}

		accumulated.WriteString(fragment)
		if onChunk != nil {
			onChunk(fragment, accumulated.String())
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return accumulated.String(), ctx.Err()
		}
		return accumulated.String(), fmt.Errorf("reading stream: %w", err)
	}

	return accumulated.String(), nil
}
