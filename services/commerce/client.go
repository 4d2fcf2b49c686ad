package commerce

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

const (
	DefaultBaseURL = "https://headless.tebex.io/api"
	RequestTimeout = 30 * time.Second
)

// RequestError is returned for any non-2xx response from the commerce API.
// It carries the status and raw body so the caller can surface a useful
// message; nothing is retried.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("commerce %s %s failed: %d %s", e.Method, e.Path, e.Status, e.Body)
}

// Client is a thin wrapper over the headless commerce HTTP API. The account
// token authenticates by being part of the path on account-scoped endpoints.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(accountToken string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: DefaultBaseURL,
		token:   accountToken,
		client: &http.Client{
			Timeout:   RequestTimeout,
			Transport: transport,
		},
	}
}

// SetBaseURL overrides the API endpoint. Used by tests to point the client
// at a local stub server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

func (c *Client) AccountToken() string {
	return c.token
}

// accountPath prefixes an endpoint with the account-token scope.
func (c *Client) accountPath(format string, args ...interface{}) string {
	return fmt.Sprintf("/accounts/%s", c.token) + fmt.Sprintf(format, args...)
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request: %v", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	// Some gateways prepend a BOM to JSON bodies.
	cleanBody := strings.TrimPrefix(string(respBody), "\ufeff")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   cleanBody,
		}
	}

	return json.RawMessage(cleanBody), nil
}
