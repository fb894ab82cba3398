// Package auth owns the session lifecycle: token and profile persistence,
// liveness checks, the OAuth handshake with the backend, and the single
// authenticated-call choke point every other component routes through.
package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/store"
)

// CredentialStore holds the bearer token and user profile in the local store
// and wraps outbound calls with authentication. Session state is mutated only
// by login, exchange, and clear; everything else reads it.
type CredentialStore struct {
	store      *store.Store
	baseURL    string
	httpClient *http.Client
	onExpired  func()
}

// New creates a CredentialStore backed by the given store, talking to the
// backend at baseURL.
func New(s *store.Store, baseURL string) *CredentialStore {
	return &CredentialStore{
		store:   s,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OnSessionExpired registers a hook invoked when an authenticated call hits a
// 401 and the session is cleared. The CLI uses it to tell the user to log in
// again; a UI would navigate to its login screen.
func (c *CredentialStore) OnSessionExpired(fn func()) {
	c.onExpired = fn
}

// Session returns the persisted session, or nil if none is stored.
func (c *CredentialStore) Session() (*canonical.Session, error) {
	token, err := c.store.GetSetting(store.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	sess := &canonical.Session{Token: token}
	if exp, ok := tokenExpiry(token); ok {
		sess.ExpiresAt = exp.Unix()
	}

	userJSON, err := c.store.GetSetting(store.KeyUserInfo)
	if err != nil {
		return nil, fmt.Errorf("reading user info: %w", err)
	}
	if userJSON != "" {
		if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
			log.Printf("auth: warning: stored user info is not valid JSON: %v", err)
		}
	}

	return sess, nil
}

// SetSession persists a session, replacing any existing one. Only the token
// and user info are stored: ExpiresAt is never persisted, Session and IsLive
// always re-derive expiry from the token's exp claim so the stored value
// cannot drift from the token that carries it.
func (c *CredentialStore) SetSession(sess *canonical.Session) error {
	if err := c.store.PutSetting(store.KeyAuthToken, sess.Token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encoding user info: %w", err)
	}
	if err := c.store.PutSetting(store.KeyUserInfo, string(userJSON)); err != nil {
		return fmt.Errorf("storing user info: %w", err)
	}
	return nil
}

// Clear destroys the persisted session.
func (c *CredentialStore) Clear() error {
	return c.store.DeleteSetting(store.KeyAuthToken, store.KeyUserInfo)
}

// IsLive reports whether a token is present and its encoded expiry is
// strictly in the future. Malformed tokens are treated as not live, never
// an error.
func (c *CredentialStore) IsLive() bool {
	token, err := c.store.GetSetting(store.KeyAuthToken)
	if err != nil || token == "" {
		return false
	}
	exp, ok := tokenExpiry(token)
	if !ok {
		return false
	}
	return exp.After(time.Now())
}

// tokenExpiry decodes the exp claim from a JWT without verifying the
// signature. Verification is the backend's job; locally we only need the
// expiry to avoid sending calls that are guaranteed to bounce.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AuthenticatedDo attaches the bearer token if present, issues the request,
// and funnels 401 responses into a forced re-login: the session is cleared,
// the expiry hook fires, and canonical.ErrAuthRequired is returned. All
// protected backend calls must go through here.
func (c *CredentialStore) AuthenticatedDo(req *http.Request) (*http.Response, error) {
	token, err := c.store.GetSetting(store.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if clearErr := c.Clear(); clearErr != nil {
			log.Printf("auth: warning: clearing expired session: %v", clearErr)
		}
		if c.onExpired != nil {
			c.onExpired()
		}
		return nil, canonical.ErrAuthRequired
	}

	return resp, nil
}
