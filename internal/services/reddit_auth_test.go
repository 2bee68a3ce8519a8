package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/XZXY-AI/reddit-crawler/internal/config"
	"github.com/XZXY-AI/reddit-crawler/internal/observability"
)

var testCreds = config.RedditConfig{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	UserAgent:    "reddit-crawler-test/1.0",
	RedirectURI:  "http://localhost:3000/callback",
}

func newTestAuth(serverURL string) *RedditAuth {
	return NewRedditAuth(testCreds, Endpoints{
		AuthorizeURL: "https://www.reddit.com/api/v1/authorize",
		TokenURL:     serverURL + "/api/v1/access_token",
		APIBaseURL:   serverURL,
	}, nil, observability.Discard())
}

func TestAuthorizationURL(t *testing.T) {
	auth := newTestAuth("http://unused")

	raw := auth.AuthorizationURL("nonce-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Unexpected error parsing URL: %v", err)
	}
	if u.Scheme+"://"+u.Host+u.Path != "https://www.reddit.com/api/v1/authorize" {
		t.Errorf("Unexpected authorize endpoint: %s", raw)
	}

	expected := map[string]string{
		"client_id":     "client-id",
		"response_type": "code",
		"state":         "nonce-123",
		"redirect_uri":  "http://localhost:3000/callback",
		"duration":      "temporary",
		"scope":         "read",
	}
	q := u.Query()
	for key, want := range expected {
		if got := q.Get(key); got != want {
			t.Errorf("Expected %s=%q, got %q", key, want, got)
		}
	}
}

func TestNewState(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		state, err := NewState()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(state) < 20 {
			t.Errorf("Expected at least 128 bits of entropy, got %q", state)
		}
		if url.QueryEscape(state) != state {
			t.Errorf("Expected URL-safe state, got %q", state)
		}
		if seen[state] {
			t.Fatalf("Duplicate state %q", state)
		}
		seen[state] = true
	}
}

func TestCheckCallback(t *testing.T) {
	testCases := []struct {
		name      string
		errParam  string
		code      string
		state     string
		expected  string
		expectErr error
	}{
		{name: "provider error wins", errParam: "access_denied", code: "c", state: "s", expected: "s", expectErr: ErrOAuthDenied},
		{name: "missing code", state: "s", expected: "s", expectErr: ErrMissingCode},
		{name: "missing code and state", expectErr: ErrMissingCode},
		{name: "tampered state", code: "c", state: "s-tampered", expected: "s", expectErr: ErrStateMismatch},
		{name: "no state in session", code: "c", state: "", expected: "", expectErr: ErrStateMismatch},
		{name: "valid", code: "c", state: "s", expected: "s"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCallback(tc.errParam, tc.code, tc.state, tc.expected)
			if tc.expectErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.expectErr) {
				t.Errorf("Expected %v, got %v", tc.expectErr, err)
			}
		})
	}
}

func TestExchangeCode(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expectToken string
		expectErr   bool
	}{
		{name: "success", status: http.StatusOK, body: `{"access_token":"user-token","token_type":"bearer","expires_in":3600,"scope":"read"}`, expectToken: "user-token"},
		{name: "non-200", status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`, expectErr: true},
		{name: "error in 200 body", status: http.StatusOK, body: `{"error":"invalid_grant"}`, expectErr: true},
		{name: "empty token", status: http.StatusOK, body: `{"token_type":"bearer"}`, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/v1/access_token" {
					t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
				}
				user, pass, ok := r.BasicAuth()
				if !ok || user != "client-id" || pass != "client-secret" {
					t.Errorf("Expected basic auth with client credentials, got %q/%q", user, pass)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("parse form: %v", err)
				}
				if r.PostForm.Get("grant_type") != "authorization_code" ||
					r.PostForm.Get("code") != "the-code" ||
					r.PostForm.Get("redirect_uri") != "http://localhost:3000/callback" {
					t.Errorf("Unexpected form: %v", r.PostForm)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			token, err := newTestAuth(srv.URL).ExchangeCode(context.Background(), "the-code")
			if tc.expectErr {
				if !errors.Is(err, ErrTokenExchangeFailed) {
					t.Errorf("Expected ErrTokenExchangeFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if token != tc.expectToken {
				t.Errorf("Expected token %q, got %q", tc.expectToken, token)
			}
		})
	}
}

func TestAppTokenIsCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("Expected client_credentials grant, got %q", r.PostForm.Get("grant_type"))
		}
		_, _ = w.Write([]byte(`{"access_token":"app-token","expires_in":3600}`))
	}))
	defer srv.Close()

	auth := newTestAuth(srv.URL)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		token, err := auth.AppToken(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if token != "app-token" {
			t.Errorf("Expected app-token, got %q", token)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected one token request, got %d", calls)
	}

	// inside the expiry buffer the token is refreshed
	now = now.Add(56 * time.Minute)
	if _, err := auth.AppToken(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected a refresh near expiry, got %d requests", calls)
	}
}
