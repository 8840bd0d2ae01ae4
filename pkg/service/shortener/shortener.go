package shortener

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Client shortens URLs through a YOURLS-compatible endpoint. When no
// endpoint is configured, Shorten returns the input unchanged so callers
// never have to branch on configuration.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a shortener client. endpoint may be empty to disable
// shortening.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an endpoint is configured
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type shortenResponse struct {
	ShortURL string `json:"shorturl"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// Shorten returns a short URL for longURL, or longURL itself when the
// service is unconfigured or answers without a short URL.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if !c.Enabled() {
		return longURL, nil
	}

	form := url.Values{}
	form.Set("action", "shorturl")
	form.Set("format", "json")
	form.Set("url", longURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build shortener request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call shortener", goerr.V("endpoint", c.endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", goerr.New("shortener returned non-200",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var parsed shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", goerr.Wrap(err, "failed to decode shortener response")
	}
	if parsed.ShortURL == "" {
		return longURL, nil
	}
	return parsed.ShortURL, nil
}
