// Package gateway is the single HTTP door to the Signify backend. Every
// other component talks to the server through Client.JSON.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource yields the current bearer token, or "" when nobody is
// logged in. An empty token is not an error: some endpoints are
// anonymous.
type TokenSource interface {
	Token() (string, error)
}

// Notifier receives a user-visible notice when a request fails. The
// error is still returned to the caller; the notice is a side channel
// for the UI and must not block.
type Notifier func(message string)

// NetworkError wraps a transport-level failure (no HTTP response).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string { return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body) }

// failureNotice matches the message the mobile app shows on any backend
// failure.
const failureNotice = "Failed to connect to the server. Please try again."

// Client performs authenticated JSON round-trips. It never retries; a
// user-initiated re-invocation is the only recovery path.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	notify   Notifier
	deviceID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (timeout policy
// belongs to the caller).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithNotifier installs the user-notice callback.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notify = n }
}

// WithDeviceID attaches an X-Device-ID header to every request.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// NewClient builds a gateway against baseURL. tokens may be nil for a
// purely anonymous client.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JSON sends one request and decodes the JSON reply into out. A nil body
// sends no payload; a nil out discards the reply. An empty reply body
// (e.g. 204 No Content) leaves out untouched and returns nil.
//
// Failures return *NetworkError or *HTTPError and additionally fire the
// notifier so the UI can surface a retryable message.
func (c *Client) JSON(ctx context.Context, method, endpoint string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return c.fail(&NetworkError{Err: err})
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return c.fail(&NetworkError{Err: err})
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.fail(&HTTPError{Status: res.StatusCode, Body: strings.TrimSpace(string(raw))})
	}
	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) fail(err error) error {
	if c.notify != nil {
		c.notify(failureNotice)
	}
	return err
}
