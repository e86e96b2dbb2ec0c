// Package client is the Go API client for the platform. It owns the
// session lifecycle: it attaches the bearer token to outbound requests,
// refreshes the pair once on a 401 and retries the original request, and
// clears the session when the refresh is rejected. Concurrent 401s share a
// single refresh call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrUnauthenticated is returned when a request needs credentials the
// store does not hold.
var ErrUnauthenticated = errors.New("client: not authenticated")

// Paths that never carry a bearer token and never trigger a refresh, so a
// rejected login cannot recurse into the refresh flow.
var unauthenticatedPaths = map[string]bool{
	"/api/v1/auth/login":    true,
	"/api/v1/auth/register": true,
	"/api/v1/auth/refresh":  true,
}

type Client struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore
	refresh singleflight.Group
	session sessionWatch
}

type Option func(*Client)

// WithHTTPClient swaps the underlying transport, e.g. for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTokenStore persists the credential pair somewhere other than
// process memory.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		store:   NewMemoryTokenStore(),
	}
	for _, o := range opts {
		o(c)
	}
	if pair, err := c.store.Load(); err == nil && !pair.Empty() {
		c.session.set(Authenticated)
	}
	return c
}

// SessionState reports the current session state.
func (c *Client) SessionState() State { return c.session.get() }

// Subscribe returns a channel that receives session state transitions.
// Slow readers miss updates rather than blocking requests.
func (c *Client) Subscribe() <-chan State { return c.session.subscribe() }

// do runs one request through the session guard: attach token, send, and
// on a 401 for an authenticated request, refresh once and retry once.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	skipAuth := unauthenticatedPaths[path]

	var token string
	if !skipAuth {
		pair, err := c.store.Load()
		if err != nil {
			return fmt.Errorf("client: load tokens: %w", err)
		}
		token = pair.AccessToken
	}

	status, err := c.send(ctx, method, path, in, out, token)
	if status != http.StatusUnauthorized || skipAuth || token == "" {
		return err
	}

	// One refresh, shared across concurrent 401s.
	newToken, refreshErr := c.refreshOnce(ctx, token)
	if refreshErr != nil {
		return refreshErr
	}
	_, err = c.send(ctx, method, path, in, out, newToken)
	return err
}

// refreshOnce coalesces concurrent refresh attempts into one network call.
// Waiters all receive the same new access token or the same failure. stale
// is the access token that earned the 401: if the stored token has already
// moved past it, another caller refreshed first and no call is made.
func (c *Client) refreshOnce(ctx context.Context, stale string) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		pair, err := c.store.Load()
		if err != nil {
			return nil, fmt.Errorf("client: load tokens: %w", err)
		}
		if pair.AccessToken != "" && pair.AccessToken != stale {
			return pair.AccessToken, nil
		}
		if pair.RefreshToken == "" {
			return nil, ErrUnauthenticated
		}

		var next TokenPair
		in := map[string]string{"refresh_token": pair.RefreshToken}
		if _, err := c.send(ctx, http.MethodPost, "/api/v1/auth/refresh", in, &next); err != nil {
			// any refresh failure ends the session, transport errors
			// included: the caller must log in again
			_ = c.store.Clear()
			c.session.set(LoggedOut)
			return nil, err
		}
		if err := c.store.Save(next); err != nil {
			return nil, fmt.Errorf("client: save tokens: %w", err)
		}
		c.session.set(Authenticated)
		return next.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// send performs a single HTTP round trip and decodes the envelope. It
// returns the HTTP status (0 on transport failure) and an *APIError when
// the envelope reports failure.
func (c *Client) send(ctx context.Context, method, path string, in, out any, token ...string) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(token) > 0 && token[0] != "" {
		req.Header.Set("Authorization", "Bearer "+token[0])
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   *struct {
			Code    string   `json:"code"`
			Message string   `json:"message"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("client: decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return resp.StatusCode, apiErr
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("client: decode data: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}
