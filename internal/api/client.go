// ABOUTME: HTTP client for the remote calorie service.
// ABOUTME: Holds base URL and token state; constructed explicitly and injected.
package api

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
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Token is the credential triple returned by the login endpoints.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Client talks to the remote service. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token Token
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithToken seeds the client with previously saved credentials.
func WithToken(access, refresh string) Option {
	return func(c *Client) {
		c.token = Token{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
	}
}

// WithAnalyzeLimit throttles AnalyzeImage calls on the client side.
func WithAnalyzeLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
// The URL is validated on each call, not here.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the current credentials.
func (c *Client) Token() Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the current credentials.
func (c *Client) SetToken(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

// Authenticated reports whether an access token is held.
func (c *Client) Authenticated() bool {
	return c.Token().AccessToken != ""
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", newError(ErrInvalidEndpoint, 0, c.baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", newError(ErrInvalidEndpoint, 0, c.baseURL, nil)
	}
	return c.baseURL + path, nil
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

// send performs a request and reads the whole body. Only transport
// failures are returned as errors; status handling is up to the caller.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, auth bool) (*response, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, newError(ErrInvalidEndpoint, 0, endpoint, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		tok := c.Token()
		if tok.AccessToken == "" {
			return nil, newError(ErrUnauthorized, 0, "not logged in", nil)
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return nil, newError(ErrConnection, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, newError(ErrConnection, resp.StatusCode, "read response", err)
	}
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, auth bool) (*response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, "application/json", bytes.NewReader(raw), auth)
}

// errorMessage extracts the human-readable part of an error body.
// FastAPI wraps messages as {"detail": "..."}; anything else is used as text.
func errorMessage(body []byte) string {
	var wrapped struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Detail) > 0 {
		var s string
		if json.Unmarshal(wrapped.Detail, &s) == nil {
			return s
		}
		// Validation errors carry a list of objects with "msg".
		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(wrapped.Detail, &list) == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
		return string(wrapped.Detail)
	}
	return strings.TrimSpace(string(body))
}

// statusError maps a failed response to kind, or to ErrUnauthorized for 401.
func statusError(resp *response, kind error) error {
	if resp.status == http.StatusUnauthorized {
		kind = ErrUnauthorized
	}
	return newError(kind, resp.status, errorMessage(resp.body), nil)
}

func decode(resp *response, v interface{}) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return newError(ErrDecode, resp.status, "", err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errMissingField reports a well-formed body that lacks a required field.
func errMissingField(status int, field string) error {
	return newError(ErrDecode, status, "", errors.New("missing "+field))
}
