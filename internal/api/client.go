package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// tasksPath is the collection path under the base URL.
const tasksPath = "/tasks"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, msg)
}

// NotFound reports whether the server answered 404.
func (e *StatusError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Client is a thin HTTP client for the remote tasks resource.
// It handles optional Bearer token authentication and JSON marshaling.
// Calls are made once; failures are returned to the caller unchanged.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the Bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. https://example.com/api).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTasks fetches every task (GET /tasks).
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask posts a new task (POST /tasks) and returns it with the
// identifier the server assigned.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	t.ID = ""
	var created model.Task
	if err := c.do(ctx, http.MethodPost, tasksPath, t, &created); err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces the task with the given identifier
// (PUT /tasks/{id}) and returns the server's version.
func (c *Client) UpdateTask(ctx context.Context, id string, t model.Task) (model.Task, error) {
	var updated model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), t, &updated); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes the task with the given identifier
// (DELETE /tasks/{id}). Any response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

// do builds the request, handles auth, and (de)serializes JSON.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(respBody),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
