// Package readings fetches device readings from the REST endpoint and keeps
// the device registry up to date with them.
package readings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIKeyHeader carries the shared API key.
const APIKeyHeader = "x-api-key"

// ErrNoURL is returned when the client has no endpoint configured.
var ErrNoURL = errors.New("readings API URL is not configured")

// Fetcher returns the latest reading of a device as a decoded JSON object.
type Fetcher interface {
	Fetch(ctx context.Context, deviceID string) (map[string]any, error)
}

// StatusError is returned when the endpoint answers with a status other
// than 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("readings API: status %d", e.StatusCode)
	}
	return fmt.Sprintf("readings API: status %d: %s", e.StatusCode, e.Body)
}

// Client calls the readings endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient returns a client for the endpoint at baseURL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSpace(baseURL),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests GET <baseURL>?device_id=<id>.
func (c *Client) Fetch(ctx context.Context, deviceID string) (map[string]any, error) {
	if c.baseURL == "" {
		return nil, ErrNoURL
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse readings URL: %w", err)
	}
	q := u.Query()
	q.Set("device_id", deviceID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch readings for %s: %w", deviceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode readings for %s: %w", deviceID, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
