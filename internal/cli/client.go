package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client talks JSON to the arena server. Requests carry the session
// token as a bearer header when one is configured.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		base:  strings.TrimSuffix(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: requestTimeout},
	}
}

// serverError is a structured error body from the server, shown to the
// user as "message (CODE)".
type serverError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *serverError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (c *Client) Get(path string, result any) error {
	return c.call(http.MethodGet, path, nil, result)
}

func (c *Client) Post(path string, body, result any) error {
	return c.call(http.MethodPost, path, body, result)
}

func (c *Client) Patch(path string, body, result any) error {
	return c.call(http.MethodPatch, path, body, result)
}

func (c *Client) Delete(path string) error {
	return c.call(http.MethodDelete, path, nil, nil)
}

func (c *Client) call(method, path string, body, result any) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, payload)
	}

	if result == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// decodeError prefers the server's structured error body, falling back
// to the raw payload for non-JSON responses (proxies, panics)
func decodeError(status int, payload []byte) error {
	var wrapped struct {
		Error serverError `json:"error"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Error.Code != "" {
		return &wrapped.Error
	}
	return fmt.Errorf("HTTP %d: %s", status, string(payload))
}
