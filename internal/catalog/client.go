package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/emberos/emberctl/internal/config"
)

// listEndpoint is the path of the track listing endpoint on the image server.
const listEndpoint = "track/list"

// ErrUnavailable is returned when the catalog cannot be fetched or parsed.
// A switch cannot proceed without a catalog, so callers treat it as fatal.
var ErrUnavailable = errors.New("track catalog unavailable")

// listResponse is the wire shape of the track listing endpoint.
type listResponse struct {
	// Tracks is the ordered list of track names; order is significant, the
	// first entry is the default selection.
	Tracks []string `json:"tracks"`
}

// Client fetches the track catalog from an image server.
type Client struct {
	// httpClient is the HTTP client used for catalog requests.
	httpClient *http.Client
}

// Option configures client behaviour.
type Option func(*Client)

// WithTimeout sets the request timeout for catalog calls.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a catalog client with the default timeout.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: config.DefaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Tracks fetches the ordered list of track names available on the given
// image server and returns it verbatim. An empty list is a valid response:
// it means the server currently publishes no tracks, which is for the
// selector to surface, not an error.
func (c *Client) Tracks(ctx context.Context, serverURL string) ([]string, error) {
	endpoint, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse server URL: %w", ErrUnavailable, err)
	}

	// path.Join normalizes duplicate slashes when composing the URL path.
	endpoint.Path = path.Join(endpoint.Path, listEndpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnavailable, endpoint, response.Status)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	var list listResponse
	if err = json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	return list.Tracks, nil
}
