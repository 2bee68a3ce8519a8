package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
)

// ContentClient fetches submissions and comments from Reddit
type ContentClient interface {
	SearchAll(ctx context.Context, query string, limit int, timeFilter, sort string) ([]models.Submission, error)
	UserSubmissions(ctx context.Context, name string, limit int) ([]models.Submission, error)
	SubredditListing(ctx context.Context, name, sort string, limit int) ([]models.Submission, error)
	TopComments(ctx context.Context, submissionID string, max int) ([]models.Comment, error)
}

// ClientFactory builds a ContentClient for one request. An empty session
// token yields an application-only, read-only client.
type ClientFactory interface {
	NewClient(ctx context.Context, sessionToken string) (ContentClient, error)
}

// RedditClientFactory creates RedditClients backed by the OAuth API
type RedditClientFactory struct {
	auth       *RedditAuth
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRedditClientFactory creates a factory sharing auth's HTTP client and credentials
func NewRedditClientFactory(auth *RedditAuth) *RedditClientFactory {
	return &RedditClientFactory{
		auth:       auth,
		baseURL:    strings.TrimRight(auth.endpoints.APIBaseURL, "/"),
		userAgent:  auth.creds.UserAgent,
		httpClient: auth.httpClient,
		logger:     auth.logger,
	}
}

// NewClient returns a client authenticated with sessionToken, or with an app-only token when it is empty
func (f *RedditClientFactory) NewClient(ctx context.Context, sessionToken string) (ContentClient, error) {
	token := sessionToken
	if token == "" {
		appToken, err := f.auth.AppToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClientInitFailed, err)
		}
		token = appToken
	}

	return &RedditClient{
		baseURL:    f.baseURL,
		userAgent:  f.userAgent,
		token:      token,
		httpClient: f.httpClient,
		logger:     f.logger,
	}, nil
}

// RedditClient talks to the Reddit JSON API with a bearer token
type RedditClient struct {
	baseURL    string
	userAgent  string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// SearchAll searches every public subreddit
func (c *RedditClient) SearchAll(ctx context.Context, query string, limit int, timeFilter, sort string) ([]models.Submission, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("t", timeFilter)
	params.Set("sort", sort)
	params.Set("restrict_sr", "on")
	params.Set("type", "link")

	return c.fetchSubmissions(ctx, "/r/all/search", params)
}

// UserSubmissions lists a user's newest submissions
func (c *RedditClient) UserSubmissions(ctx context.Context, name string, limit int) ([]models.Submission, error) {
	params := url.Values{}
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(limit))

	return c.fetchSubmissions(ctx, "/user/"+url.PathEscape(name)+"/submitted", params)
}

// SubredditListing lists a subreddit by new, top or (for any other sort) hot
func (c *RedditClient) SubredditListing(ctx context.Context, name, sort string, limit int) ([]models.Submission, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	listing := "hot"
	switch sort {
	case "new":
		listing = "new"
	case "top":
		listing = "top"
		params.Set("t", "all")
	}

	return c.fetchSubmissions(ctx, "/r/"+url.PathEscape(name)+"/"+listing, params)
}

// TopComments returns up to max top-level comments. "Load more" stubs are not expanded.
func (c *RedditClient) TopComments(ctx context.Context, submissionID string, max int) ([]models.Comment, error) {
	params := url.Values{}
	params.Set("depth", "1")
	params.Set("limit", strconv.Itoa(max))

	body, err := c.get(ctx, "/comments/"+url.PathEscape(submissionID), params)
	if err != nil {
		return nil, err
	}

	comments, err := parseComments(body)
	if err != nil {
		return nil, err
	}
	if len(comments) > max {
		comments = comments[:max]
	}
	return comments, nil
}

func (c *RedditClient) fetchSubmissions(ctx context.Context, path string, params url.Values) ([]models.Submission, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return parseSubmissions(body)
}

func (c *RedditClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("raw_json", "1")
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Reddit throttles requests without a descriptive User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "bearer "+c.token)

	c.logger.Debug("reddit request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUpstream, path, resp.Status)
	}

	return body, nil
}
