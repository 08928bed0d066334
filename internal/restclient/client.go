// Package restclient speaks the generic collection contract of the upstream
// services: GET and POST on /{collection}, PUT and DELETE on
// /{collection}/{id}. Each call is a single attempt.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 16 << 20

// TokenSource supplies the bearer token for a request. The token is opaque
// here; an empty token sends no Authorization header.
type TokenSource interface {
	BearerToken() string
}

type StaticToken string

func (t StaticToken) BearerToken() string {
	return string(t)
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

func New(baseURL string, httpClient *http.Client, tokens TokenSource) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     slog.Default().With("upstream", parsed.Host),
	}, nil
}

// WithTokens returns a copy of the client sending another caller's token.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResourcePath joins a collection path and optional identifiers into an
// escaped relative path. Identifiers are escaped as single segments.
func ResourcePath(collection string, ids ...string) string {
	parts := make([]string, 0, 4+len(ids))
	for _, part := range strings.Split(strings.Trim(collection, "/"), "/") {
		if part != "" {
			parts = append(parts, url.PathEscape(part))
		}
	}
	for _, id := range ids {
		parts = append(parts, url.PathEscape(id))
	}

	return strings.Join(parts, "/")
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
}

// Do sends one request to the escaped relative path and decodes a JSON
// response into out when out is not nil and the body is not empty. It reports
// whether a body was decoded.
func (c *Client) Do(ctx context.Context, method string, path string, body any, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.endpoint(path)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("upstream request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, NewError(method, target, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}

	decoded, err := decode(raw, out)
	if err != nil {
		return false, fmt.Errorf("decode %s %s: %w", method, target, err)
	}

	return decoded, nil
}

// decode accepts either the bare payload or the {success, data} envelope. An
// envelope without data decodes nothing.
func decode(raw []byte, out any) (bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Success *bool           `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil {
			if !*env.Success {
				return false, errors.New("upstream reported failure")
			}
			if len(env.Data) == 0 || string(env.Data) == "null" {
				return false, nil
			}
			trimmed = env.Data
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, err
	}

	return true, nil
}

// NewSet builds one client per named base URL, sharing httpClient. None of
// them carries a token; callers bind one with WithTokens.
func NewSet(baseURLs map[string]string, httpClient *http.Client) (map[string]*Client, error) {
	out := make(map[string]*Client, len(baseURLs))
	for name, baseURL := range baseURLs {
		client, err := New(baseURL, httpClient, nil)
		if err != nil {
			return nil, fmt.Errorf("%s upstream: %w", name, err)
		}
		out[name] = client
	}

	return out, nil
}
