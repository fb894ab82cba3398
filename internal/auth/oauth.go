package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/store"
)

// loginResponse is the backend's answer to a login request: where to send the
// user, plus the anti-forgery state we must see again on the way back.
type loginResponse struct {
	AuthURL  string `json:"auth_url"`
	State    string `json:"state"`
	Provider string `json:"provider"`
}

// wireUser is the backend's user payload shape.
type wireUser struct {
	OpenID   string `json:"open_id"`
	UserID   string `json:"userid"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// exchangeResponse is the backend's answer to a code exchange.
type exchangeResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      wireUser `json:"user"`
}

// BeginLogin requests an authorization URL and state token for the chosen
// provider, persists the state and provider for callback verification, and
// returns the URL the user must visit.
func (c *CredentialStore) BeginLogin(ctx context.Context, provider string) (string, error) {
	u := fmt.Sprintf("%s/api/auth/%s/login", c.baseURL, url.PathEscape(provider))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating login request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting auth URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError(resp)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("parsing login response: %w", err)
	}
	if lr.AuthURL == "" || lr.State == "" {
		return "", fmt.Errorf("login response missing auth_url or state")
	}

	if err := c.store.PutSetting(store.KeyOAuthState, lr.State); err != nil {
		return "", fmt.Errorf("persisting oauth state: %w", err)
	}
	if err := c.store.PutSetting(store.KeyOAuthProvider, provider); err != nil {
		return "", fmt.Errorf("persisting oauth provider: %w", err)
	}

	return lr.AuthURL, nil
}

// HandleCallback completes the login handshake from the redirect URL the
// provider sent the user back to. The returned state must exactly match the
// persisted one; a mismatch fails with canonical.ErrInvalidState before any
// exchange call is made. On success the session is persisted and the
// transient state and provider entries are scrubbed.
func (c *CredentialStore) HandleCallback(ctx context.Context, redirectURL string) (*canonical.Session, error) {
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URL: %w", err)
	}
	code := parsed.Query().Get("code")
	state := parsed.Query().Get("state")

	if code == "" {
		return nil, fmt.Errorf("no authorization code in redirect URL")
	}

	storedState, err := c.store.GetSetting(store.KeyOAuthState)
	if err != nil {
		return nil, fmt.Errorf("reading stored oauth state: %w", err)
	}
	if state == "" || storedState == "" || state != storedState {
		return nil, canonical.ErrInvalidState
	}

	provider, err := c.store.GetSetting(store.KeyOAuthProvider)
	if err != nil {
		return nil, fmt.Errorf("reading stored oauth provider: %w", err)
	}
	if provider == "" {
		provider = "dingtalk"
	}

	body, err := json.Marshal(map[string]string{
		"provider": provider,
		"code":     code,
		"state":    state,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding exchange request: %w", err)
	}

	u := fmt.Sprintf("%s/api/auth/%s/exchange", c.baseURL, url.PathEscape(provider))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var er exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing exchange response: %w", err)
	}
	if er.Token == "" {
		return nil, fmt.Errorf("exchange response missing token")
	}

	sess := &canonical.Session{
		Token:     er.Token,
		ExpiresAt: er.ExpiresAt,
		User:      normalizeUser(er.User, provider),
	}
	if err := c.SetSession(sess); err != nil {
		return nil, err
	}

	// Scrub the transient handshake state.
	if err := c.store.DeleteSetting(store.KeyOAuthState, store.KeyOAuthProvider); err != nil {
		log.Printf("auth: warning: clearing oauth state: %v", err)
	}

	return sess, nil
}

// Logout tells the backend to invalidate the token (best effort) and always
// clears the local session.
func (c *CredentialStore) Logout(ctx context.Context) error {
	token, _ := c.store.GetSetting(store.KeyAuthToken)
	if token != "" {
		u := c.baseURL + "/api/auth/logout"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")
			if resp, err := c.httpClient.Do(req); err != nil {
				log.Printf("auth: warning: logout request failed: %v", err)
			} else {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}
	}
	return c.Clear()
}

// CurrentUser fetches the user profile for the active session and refreshes
// the stored copy.
func (c *CredentialStore) CurrentUser(ctx context.Context) (*canonical.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/user", nil)
	if err != nil {
		return nil, fmt.Errorf("creating user request: %w", err)
	}

	resp, err := c.AuthenticatedDo(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var wu wireUser
	if err := json.NewDecoder(resp.Body).Decode(&wu); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	user := normalizeUser(wu, wu.Provider)
	userJSON, err := json.Marshal(user)
	if err == nil {
		if putErr := c.store.PutSetting(store.KeyUserInfo, string(userJSON)); putErr != nil {
			log.Printf("auth: warning: refreshing stored user info: %v", putErr)
		}
	}

	return &user, nil
}

// normalizeUser maps the backend's user payload to the canonical shape.
// DingTalk accounts carry a userid, Feishu accounts an open_id.
func normalizeUser(wu wireUser, provider string) canonical.User {
	id := wu.UserID
	if id == "" {
		id = wu.OpenID
	}
	if wu.Provider != "" {
		provider = wu.Provider
	}
	return canonical.User{
		ID:          id,
		Provider:    provider,
		DisplayName: wu.Name,
	}
}

// upstreamError reads as much of an error message as the body yields and
// wraps the status in a canonical.UpstreamError.
func upstreamError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(body, &payload) == nil {
			msg = payload.Message
			if msg == "" {
				msg = payload.Error
			}
		}
	}
	return &canonical.UpstreamError{Status: resp.StatusCode, Message: msg}
}
