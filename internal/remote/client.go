// Package remote is the HTTP client for the subtrack token server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/subtrack/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "subtrack/1.0"
)

// ErrBadRequest indicates the server rejected the request as malformed.
var ErrBadRequest = errors.New("remote: bad request")

// Client talks to a token server. It satisfies reconcile.Boundary.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
// Returns nil if baseURL is empty or not an absolute http(s) URL.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch returns the list stored under token.
func (c *Client) Fetch(ctx context.Context, token string) ([]model.Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/sub?token="+url.QueryEscape(token), nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("remote: parsing subscriptions: %w", err)
	}
	return model.Strip(resp.Subscriptions), nil
}

// AllocateToken asks the server for a new, empty token.
func (c *Client) AllocateToken(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/sub/new_token", nil)
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("remote: parsing token: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("remote: server returned an empty token")
	}
	return resp.Token, nil
}

// Push replaces the list stored under token. The echoed body is not used;
// callers re-fetch to see the stored form.
func (c *Client) Push(ctx context.Context, token string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	payload, err := json.Marshal(syncRequest{Subscriptions: records})
	if err != nil {
		return fmt.Errorf("remote: encoding subscriptions: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/sub/sync?token="+url.QueryEscape(token), payload)
	return err
}

// Healthy reports whether the server answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err == nil
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, model.ErrTokenNotFound
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(body)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
