package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gordyrad/report-relay/internal/auth"
	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/store"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	creds := auth.New(s, srv.URL)
	if err := creds.SetSession(&canonical.Session{
		Token: signed,
		User:  canonical.User{ID: "u1", Provider: "dingtalk"},
	}); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	return NewClient(creds, srv.URL)
}

func TestQueryUnmarshalsData(t *testing.T) {
	var gotQuery string
	var gotVars map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/graphql" {
			t.Errorf("path = %q, want /api/graphql", r.URL.Path)
		}
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotQuery = req.Query
		gotVars = req.Variables
		w.Write([]byte(`{"data": {"things": [{"name": "a"}, {"name": "b"}]}}`))
	}))

	var out struct {
		Things []struct {
			Name string `json:"name"`
		} `json:"things"`
	}
	err := client.Query(context.Background(), "query Q($x: String) { things { name } }",
		map[string]any{"x": "1"}, &out)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(out.Things) != 2 || out.Things[0].Name != "a" {
		t.Errorf("out = %+v", out)
	}
	if gotQuery == "" || gotVars["x"] != "1" {
		t.Errorf("request query = %q, vars = %v", gotQuery, gotVars)
	}
}

func TestQueryGraphQLErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "bad field"}, {"message": "bad type"}]}`))
	}))

	err := client.Query(context.Background(), "query { x }", nil, nil)
	if err == nil {
		t.Fatal("Query should fail on graphql errors")
	}
	want := "graphql error: bad field; bad type"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestQueryHTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))

	err := client.Query(context.Background(), "query { x }", nil, nil)
	var ue *canonical.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if ue.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", ue.Status)
	}
}

func TestQueryUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Query(context.Background(), "query { x }", nil, nil)
	if !errors.Is(err, canonical.ErrAuthRequired) {
		t.Fatalf("error = %v, want ErrAuthRequired", err)
	}
}
