package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"
)

const (
	baseURL   = "https://api.github.com"
	userAgent = "ghsync/0.1"
	mediaType = "application/vnd.github+json"
)

const (
	rateLimitRequests = 5
	rateLimitDuration = time.Second
)

// Client talks to the GitHub REST API on behalf of one authenticated
// user. It is not safe for concurrent use; one run holds one client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	token       string
	rateLimiter *rate.Limiter

	// overridable in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a GitHub API client authenticated with token.
func NewClient(token string) *Client {
	return &Client{
		httpClient:  cleanhttp.DefaultPooledClient(),
		baseURL:     baseURL,
		userAgent:   userAgent,
		token:       token,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDuration/time.Duration(rateLimitRequests)), rateLimitRequests),
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// SetBaseURL points the client at a different API root (GitHub
// Enterprise, or a test server).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// doRequest performs an HTTP request against the API (raw, no JSON decoding).
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values) (*http.Response, error) {
	// Client-side pacing, independent of the server-side quota.
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
