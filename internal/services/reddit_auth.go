// File: internal/services/reddit_auth.go

package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/XZXY-AI/reddit-crawler/internal/config"
)

const (
	redditAuthorizeURL = "https://www.reddit.com/api/v1/authorize"
	redditTokenURL     = "https://www.reddit.com/api/v1/access_token"
	redditAPIBaseURL   = "https://oauth.reddit.com"

	tokenExpiryBuffer = 5 * time.Minute
	stateBytes        = 16
)

// Endpoints are the Reddit URLs the services talk to
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
}

// DefaultEndpoints returns the production Reddit endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthorizeURL: redditAuthorizeURL,
		TokenURL:     redditTokenURL,
		APIBaseURL:   redditAPIBaseURL,
	}
}

// RedditAuth manages Reddit API authentication: the authorization-code flow
// for user sessions and an app-only token for anonymous searches.
type RedditAuth struct {
	creds      config.RedditConfig
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger

	appToken    string
	tokenExpiry time.Time
	tokenLock   sync.RWMutex
	now         func() time.Time
}

// NewRedditAuth creates a new Reddit authentication manager
func NewRedditAuth(creds config.RedditConfig, endpoints Endpoints, httpClient *http.Client, logger *slog.Logger) *RedditAuth {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &RedditAuth{
		creds:      creds,
		endpoints:  endpoints,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// NewState returns a random URL-safe nonce binding an authorization request to its callback
func NewState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthorizationURL builds the URL the browser is sent to for consent
func (r *RedditAuth) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", r.creds.ClientID)
	params.Set("response_type", "code")
	params.Set("state", state)
	params.Set("redirect_uri", r.creds.RedirectURI)
	params.Set("duration", "temporary")
	params.Set("scope", "read")

	return r.endpoints.AuthorizeURL + "?" + params.Encode()
}

// CheckCallback validates the query parameters of an OAuth callback against
// the state stored in the session. It never touches the network.
func CheckCallback(providerErr, code, state, expectedState string) error {
	if providerErr != "" {
		return fmt.Errorf("%w: %s", ErrOAuthDenied, providerErr)
	}
	if code == "" {
		return ErrMissingCode
	}
	// a session that never asked for a URL has no state to match
	if expectedState == "" || state != expectedState {
		return ErrStateMismatch
	}
	return nil
}

// ExchangeCode trades an authorization code for a user access token
func (r *RedditAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", r.creds.RedirectURI)

	token, err := r.requestToken(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	r.logger.Info("exchanged authorization code for access token", "expires_in", token.ExpiresIn, "scope", token.Scope)
	return token.AccessToken, nil
}

// AppToken obtains or refreshes an application-only token used when the
// session carries no user token.
func (r *RedditAuth) AppToken(ctx context.Context) (string, error) {
	// First check if we have a valid token (read lock)
	r.tokenLock.RLock()
	if r.appToken != "" && r.now().Add(tokenExpiryBuffer).Before(r.tokenExpiry) {
		token := r.appToken
		r.tokenLock.RUnlock()
		return token, nil
	}
	r.tokenLock.RUnlock()

	r.tokenLock.Lock()
	defer r.tokenLock.Unlock()

	// Double-check after acquiring the write lock
	if r.appToken != "" && r.now().Add(tokenExpiryBuffer).Before(r.tokenExpiry) {
		return r.appToken, nil
	}

	r.logger.Debug("obtaining new app-only reddit token")

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	token, err := r.requestToken(ctx, data)
	if err != nil {
		return "", err
	}

	r.appToken = token.AccessToken
	r.tokenExpiry = r.now().Add(time.Duration(token.ExpiresIn) * time.Second)

	r.logger.Info("obtained app-only reddit token", "expires_in", token.ExpiresIn)
	return r.appToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// requestToken POSTs form to the token endpoint with HTTP Basic client credentials
func (r *RedditAuth) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("User-Agent", r.creds.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(r.creds.ClientID, r.creds.ClientSecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status: %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	// reddit reports some failures as 200 with an error field
	if token.Error != "" {
		return nil, fmt.Errorf("reddit auth error: %s", token.Error)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("received empty access token")
	}

	return &token, nil
}
