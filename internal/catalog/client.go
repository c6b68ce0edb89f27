package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/obentoo/drupdate/internal/common/httpclient"
	"github.com/obentoo/drupdate/internal/common/logger"
)

// DefaultBaseURL is the drupal.org release-history endpoint
const DefaultBaseURL = "https://updates.drupal.org/release-history"

// maxDocumentSize bounds the release-history body read into memory
const maxDocumentSize = 16 << 20

// Client fetches release history per package
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	cache      *Cache
	force      bool
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithBaseURL sets the release-history endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(client *httpclient.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCache enables caching of normalized answers
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithForce bypasses cached answers; fresh answers are still stored
func WithForce(force bool) ClientOption {
	return func(c *Client) {
		c.force = force
	}
}

// NewClient creates a catalog client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.New()
	}
	return c
}

// ReleaseHistoryURL returns the release-history URL of a package
func (c *Client) ReleaseHistoryURL(name, api string) string {
	return c.baseURL + "/" + url.PathEscape(name) + "/" + url.PathEscape(api)
}

// Fetch returns normalized metadata for a package. Every failure wraps ErrCatalogFetch.
func (c *Client) Fetch(ctx context.Context, name, currentVersion, api string) (*Metadata, error) {
	key := CacheKey(name, api, currentVersion)
	if c.cache != nil && !c.force {
		if meta, ok := c.cache.Get(key); ok {
			logger.Debug("catalog cache hit for %s", name)
			return meta, nil
		}
	}

	source := c.ReleaseHistoryURL(name, api)
	logger.Debug("fetching %s", source)

	resp, err := c.httpClient.Get(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogFetch, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s returned %d", ErrCatalogFetch, name, source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogFetch, name, err)
	}

	meta, err := ParseReleaseHistory(name, currentVersion, body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, meta, source); err != nil {
			logger.Warn("failed to cache catalog answer for %s: %v", name, err)
		}
	}
	return meta, nil
}

// FetchResult wraps Fetch into a Result
func (c *Client) FetchResult(ctx context.Context, name, currentVersion, api string) Result {
	meta, err := c.Fetch(ctx, name, currentVersion, api)
	return Result{Name: name, Metadata: meta, Err: err}
}
