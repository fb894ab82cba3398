package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gordyrad/report-relay/internal/canonical"
)

func newStreamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srvURL string) *Client {
	c := NewClient(Settings{Provider: "deepseek", Model: "deepseek-chat", APIKey: "sk-test"})
	c.SetBaseURL(srvURL)
	return c
}

func chunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`, content)
}

func TestProcessStreaming(t *testing.T) {
	srv := newStreamServer(t, []string{
		chunk("Hel"),
		chunk("lo"),
		chunk(" 世界"),
		"data: [DONE]",
	})
	client := testClient(srv.URL)

	var fragments []string
	var lastAccumulated string
	got, err := client.Process(context.Background(), "总结", "内容", func(fragment, accumulated string) {
		fragments = append(fragments, fragment)
		lastAccumulated = accumulated
	}, Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got != "Hello 世界" {
		t.Errorf("result = %q, want %q", got, "Hello 世界")
	}
	if len(fragments) != 3 || fragments[0] != "Hel" || fragments[2] != " 世界" {
		t.Errorf("fragments = %v", fragments)
	}
	if lastAccumulated != "Hello 世界" {
		t.Errorf("accumulated = %q, want full text", lastAccumulated)
	}
}

func TestProcessStreamingSkipsMalformedLines(t *testing.T) {
	srv := newStreamServer(t, []string{
		chunk("A"),
		"data: {not json",
		": keepalive comment",
		"",
		`data: {"choices":[]}`,
		chunk("B"),
		"data: [DONE]",
	})
	client := testClient(srv.URL)

	got, err := client.Process(context.Background(), "p", "t", nil, Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got != "AB" {
		t.Errorf("result = %q, want %q (malformed and empty frames skipped)", got, "AB")
	}
}

func TestProcessBuffered(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"choices":[{"message":{"content":"完整结果"}}]}`))
	}))
	defer srv.Close()
	client := testClient(srv.URL)

	chunkCalls := 0
	got, err := client.Process(context.Background(), "p", "t", func(_, _ string) { chunkCalls++ }, Options{Buffered: true})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got != "完整结果" {
		t.Errorf("result = %q", got)
	}
	if chunkCalls != 0 {
		t.Errorf("onChunk fired %d times in buffered mode, want 0", chunkCalls)
	}
	if gotPayload["stream"] != false {
		t.Errorf("payload stream = %v, want false", gotPayload["stream"])
	}
}

func TestProcessBufferedNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	client := testClient(srv.URL)

	_, err := client.Process(context.Background(), "p", "t", nil, Options{Buffered: true})
	if err == nil {
		t.Fatal("Process should fail on a response with no choices")
	}
}

func TestProcessMissingAPIKey(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := NewClient(Settings{Provider: "deepseek", Model: "deepseek-chat"})
	client.SetBaseURL(srv.URL)

	_, err := client.Process(context.Background(), "p", "t", nil, Options{})
	if !errors.Is(err, canonical.ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want 0 (key checked before network)", requests)
	}
}

func TestProcessUnknownProvider(t *testing.T) {
	client := NewClient(Settings{Provider: "openai", Model: "gpt-4", APIKey: "sk-test"})

	_, err := client.Process(context.Background(), "p", "t", nil, Options{})
	if err == nil {
		t.Fatal("Process should fail for an unknown provider")
	}
}

func TestProcessUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()
	client := testClient(srv.URL)

	_, err := client.Process(context.Background(), "p", "t", nil, Options{})
	var ue *canonical.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if ue.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", ue.Status)
	}
	if ue.Message != "rate limit exceeded" {
		t.Errorf("Message = %q", ue.Message)
	}
}

func TestProcessRequestShape(t *testing.T) {
	var gotAuth string
	var gotPayload struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		Stream      bool      `json:"stream"`
		Temperature float64   `json:"temperature"`
		MaxTokens   int       `json:"max_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		fmt.Fprintln(w, "data: [DONE]")
	}))
	defer srv.Close()
	client := testClient(srv.URL)

	_, err := client.Process(context.Background(), "总结以下内容", "正文", nil, Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload.Model != "deepseek-chat" {
		t.Errorf("model = %q", gotPayload.Model)
	}
	if len(gotPayload.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(gotPayload.Messages))
	}
	if gotPayload.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", gotPayload.Messages[0].Role)
	}
	if gotPayload.Messages[1].Content != "总结以下内容\n\n正文" {
		t.Errorf("user content = %q", gotPayload.Messages[1].Content)
	}
	if !gotPayload.Stream {
		t.Error("stream should default to true")
	}
	if gotPayload.Temperature != defaultTemperature {
		t.Errorf("temperature = %v, want %v", gotPayload.Temperature, defaultTemperature)
	}
	if gotPayload.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want %d", gotPayload.MaxTokens, defaultMaxTokens)
	}
}
