package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to the hosting platform's REST API
type HTTPClient struct {
	BaseURL     string
	APIKey      string
	APIUsername string
	httpClient  *http.Client
}

// Compile-time check to ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(baseURL, apiKey, apiUsername string) *HTTPClient {
	return &HTTPClient{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		APIUsername: apiUsername,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doJSON performs a request with the platform auth headers and decodes the
// JSON response into out (when out is non-nil)
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.APIKey)
	req.Header.Set("Api-Username", c.APIUsername)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// GetThread fetches a thread by id
func (c *HTTPClient) GetThread(ctx context.Context, threadID int64) (*Thread, error) {
	var thread Thread
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d", threadID), nil, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetFirstPost fetches the originating post of a thread
func (c *HTTPClient) GetFirstPost(ctx context.Context, threadID int64) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d/posts/1", threadID), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetReplies fetches all replies of a thread in chronological order
func (c *HTTPClient) GetReplies(ctx context.Context, threadID int64) ([]*Post, error) {
	var response struct {
		Posts []*Post `json:"posts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d/replies", threadID), nil, &response); err != nil {
		return nil, err
	}
	return response.Posts, nil
}

// ReplyCount returns the thread's reply count, excluding the originating post
func (c *HTTPClient) ReplyCount(ctx context.Context, threadID int64) (int, error) {
	var response struct {
		ReplyCount int `json:"replyCount"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d/reply-count", threadID), nil, &response); err != nil {
		return 0, err
	}
	return response.ReplyCount, nil
}

// AddTag applies a label to a thread
func (c *HTTPClient) AddTag(ctx context.Context, threadID int64, tag string) error {
	payload := map[string]string{"tag": tag}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/threads/%d/tags", threadID), payload, nil)
}

// RemoveTag removes a label from a thread
func (c *HTTPClient) RemoveTag(ctx context.Context, threadID int64, tag string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/threads/%d/tags/%s", threadID, tag), nil, nil)
}

// PostMessage posts a system-authored public reply into a thread
func (c *HTTPClient) PostMessage(ctx context.Context, threadID int64, raw string) error {
	payload := map[string]interface{}{"threadId": threadID, "raw": raw}
	return c.doJSON(ctx, http.MethodPost, "/posts", payload, nil)
}

// NotifyUser delivers a private message to one user
func (c *HTTPClient) NotifyUser(ctx context.Context, username, title, body string) error {
	payload := map[string]string{"username": username, "title": title, "body": body}
	return c.doJSON(ctx, http.MethodPost, "/messages", payload, nil)
}

// CloseThread locks a thread against further contributions
func (c *HTTPClient) CloseThread(ctx context.Context, threadID int64) error {
	payload := map[string]bool{"closed": true}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/threads/%d/status", threadID), payload, nil)
}
