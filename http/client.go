package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.ReviewService = (*Client)(nil)

// Client implements vslint.ReviewService against a remote review server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTPClient sets the underlying HTTP client.
func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client targeting the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Review posts the request to the remote review endpoint and decodes the
// verdict. Non-2xx responses are surfaced with the server's error message.
func (c *Client) Review(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode review request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ReviewPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build review request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post review request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review server returned %d: %s", httpResp.StatusCode, readErrorMessage(httpResp.Body))
	}

	var resp vslint.ReviewResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode review response: %w", err)
	}
	return &resp, nil
}

func readErrorMessage(r io.Reader) string {
	var body errorBody
	raw, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return "unreadable error body"
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return strings.TrimSpace(string(raw))
	}
	return body.Message
}
