// Package backend is the thin GraphQL client for the report backend. Provider
// adapters build queries; this client handles transport, authentication, and
// the response envelope.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gordyrad/report-relay/internal/auth"
	"github.com/gordyrad/report-relay/internal/canonical"
)

// Client issues GraphQL requests against the backend through the credential
// store's authenticated-call wrapper. Requests are rate limited so a burst of
// per-template detail fetches does not hammer the backend.
type Client struct {
	creds       *auth.CredentialStore
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a backend client for the given base URL.
func NewClient(creds *auth.CredentialStore, baseURL string) *Client {
	return &Client{
		creds:       creds,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// Query executes a GraphQL query or mutation and unmarshals the data object
// into out. GraphQL-level errors are returned as a single wrapped error.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.creds.AuthenticatedDo(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &canonical.UpstreamError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var envelope gqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("parsing graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql error: %s", strings.Join(msgs, "; "))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("parsing graphql data: %w", err)
		}
	}

	return nil
}
