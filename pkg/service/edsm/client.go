package edsm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultBaseURL is the public EDSM API endpoint
const DefaultBaseURL = "https://www.edsm.net/api-v1"

// Error taxonomy for API responses. EDSM answers an empty JSON body for an
// unknown system rather than a 404.
var (
	ErrBadResponse    = errors.New("bad response from EDSM")
	ErrSystemNotFound = errors.New("system not found")
)

// Coords is a star system position in light years
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// System is the subset of EDSM system data the board cares about
type System struct {
	Name          string  `json:"name"`
	Coords        *Coords `json:"coords,omitempty"`
	RequirePermit bool    `json:"requirePermit,omitempty"`
	PermitName    string  `json:"permitName,omitempty"`
}

// Client queries EDSM for star systems, answering from the cache while
// entries are fresh.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates an EDSM client. cache may be nil to disable caching.
func New(cache *Cache, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// joinURL joins path chunks onto a base URL with exactly one slash between
// each, leaving the scheme untouched
func joinURL(base string, parts ...string) string {
	joined, err := url.JoinPath(base, parts...)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
	}
	return joined
}

// Lookup resolves a system by name, case-insensitively. A cache hit within
// the configured max age skips the network entirely.
func (c *Client) Lookup(ctx context.Context, name string) (*System, error) {
	if c.cache != nil {
		if sys, ok := c.cache.Get(name); ok {
			return sys, nil
		}
	}

	sys, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(name, sys); err != nil {
			return sys, goerr.Wrap(err, "system resolved but cache write failed",
				goerr.V("system", name))
		}
	}
	return sys, nil
}

// Refresh re-fetches a system bypassing the cache, storing the result
func (c *Client) Refresh(ctx context.Context, name string) error {
	sys, err := c.fetch(ctx, name)
	if err != nil {
		return err
	}
	if c.cache != nil {
		return c.cache.Put(name, sys)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, name string) (*System, error) {
	endpoint := joinURL(c.baseURL, "system")
	query := url.Values{
		"systemName":      {name},
		"showCoordinates": {"1"},
		"showPermit":      {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build EDSM request", goerr.V("system", name))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "EDSM request failed", goerr.V("system", name))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(ErrBadResponse, "unexpected status",
			goerr.V("system", name), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read EDSM response", goerr.V("system", name))
	}

	// EDSM answers "[]" or "{}" for an unknown system instead of a 404
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return nil, goerr.Wrap(ErrSystemNotFound, "EDSM does not know this system",
			goerr.V("system", name))
	}

	var sys System
	if err := json.Unmarshal(trimmed, &sys); err != nil {
		return nil, goerr.Wrap(ErrBadResponse, "invalid JSON from EDSM",
			goerr.V("system", name), goerr.V("cause", err.Error()))
	}
	if sys.Name == "" {
		return nil, goerr.Wrap(ErrSystemNotFound, "EDSM does not know this system",
			goerr.V("system", name))
	}

	return &sys, nil
}
