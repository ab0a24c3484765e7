// Package client talks to a running Promptloom server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/models"
)

// The client can stand in for the in-process service when saving a composition.
var _ composer.Bridge = (*Client)(nil)

// FieldError is one entry of a validation failure body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("api: %d %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// Client is a Promptloom API client.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		base: u.String(),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListPrompts returns prompts, optionally filtered by category and tag.
func (c *Client) ListPrompts(ctx context.Context, categoryID *int64, tag string) ([]models.Prompt, error) {
	q := url.Values{}
	if categoryID != nil {
		q.Set("categoryId", strconv.FormatInt(*categoryID, 10))
	}
	if tag != "" {
		q.Set("tag", tag)
	}
	var out []models.Prompt
	err := c.do(ctx, http.MethodGet, "/api/prompts", q, nil, &out)
	return out, err
}

// GetPrompt fetches one prompt.
func (c *Client) GetPrompt(ctx context.Context, id int64) (*models.Prompt, error) {
	var out models.Prompt
	if err := c.do(ctx, http.MethodGet, "/api/prompts/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a full-text search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Results []index.SearchResult `json:"results"`
	}
	err := c.do(ctx, http.MethodGet, "/api/search", q, nil, &out)
	return out.Results, err
}

// CreateCombination saves a combination on the server.
func (c *Client) CreateCombination(ctx context.Context, in models.CombinationInput) (*models.Combination, error) {
	var out models.Combination
	if err := c.do(ctx, http.MethodPost, "/api/combinations", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CombinationText fetches the rendered text of a saved combination.
func (c *Client) CombinationText(ctx context.Context, id int64) (string, error) {
	var buf bytes.Buffer
	err := c.do(ctx, http.MethodGet, "/api/combinations/"+strconv.FormatInt(id, 10)+"/text", nil, nil, &buf)
	return buf.String(), err
}

// do sends a request. body, when non-nil, is sent as JSON. out receives the
// decoded JSON response, or the raw body when it is a *bytes.Buffer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if buf, ok := out.(*bytes.Buffer); ok {
		_, err := io.Copy(buf, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var body struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Errors = body.Errors
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
