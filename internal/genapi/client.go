// Package genapi is the HTTP client for the hosted image-generation and
// processing API. Tasks are submitted, polled to completion, and their
// artifacts downloaded to disk.
package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"pixel-studio/internal/logging"
)

// Task statuses reported by the API.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
)

// GenerateRequest is the payload for a generation task submission.
type GenerateRequest struct {
	Prompt      string         `json:"prompt"`
	Mode        string         `json:"mode"`
	Model       string         `json:"model,omitempty"`
	AspectRatio string         `json:"aspectRatio,omitempty"`
	Stylize     int            `json:"stylize,omitempty"`
	Seed        int64          `json:"seed,omitempty"`
	Advanced    map[string]any `json:"advanced,omitempty"`
}

// Task is the API's view of one submitted operation.
type Task struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// retryLogger adapts retryablehttp's LeveledLogger onto zerolog.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(string, ...interface{}) {}

func (l *retryLogger) Debug(string, ...interface{}) {}

// Client calls the image API with retries and key authentication.
type Client struct {
	httpClient   *nethttp.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	log          *logging.Logger
}

// NewClient creates a client for one base URL and API key.
func NewClient(baseURL, apiKey string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = &retryLogger{log: log.With("genapi")}

	return &Client{
		httpClient:   retryClient.StandardClient(),
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		pollInterval: 2 * time.Second,
		log:          log.With("genapi"),
	}
}

// Imagine submits a generation task.
func (c *Client) Imagine(ctx context.Context, req GenerateRequest) (Task, error) {
	return c.postTask(ctx, "/v1/imagine", req)
}

// RemoveBackground submits a background-removal edit for an image.
func (c *Client) RemoveBackground(ctx context.Context, imageURL string) (Task, error) {
	return c.postTask(ctx, "/v1/edits/remove-background", map[string]string{"imageUrl": imageURL})
}

// Upscale submits an upscale edit for an image.
func (c *Client) Upscale(ctx context.Context, imageURL string) (Task, error) {
	return c.postTask(ctx, "/v1/edits/upscale", map[string]string{"imageUrl": imageURL})
}

// EnhanceFaces submits a face-enhancement edit for an image.
func (c *Client) EnhanceFaces(ctx context.Context, imageURL string) (Task, error) {
	return c.postTask(ctx, "/v1/edits/face-enhance", map[string]string{"imageUrl": imageURL})
}

// GetTask fetches the current state of one task.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	res, err := c.doRequest(ctx, nethttp.MethodGet, "/v1/tasks/"+id, nil)
	if err != nil {
		return Task{}, err
	}
	defer res.Body.Close()

	return decodeTask(res)
}

// WaitForTask polls a task until it leaves the pending/running states.
// A failed task is returned as an *APIError carrying the task message.
func (c *Client) WaitForTask(ctx context.Context, id string) (Task, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		task, err := c.GetTask(ctx, id)
		if err != nil {
			return Task{}, err
		}

		switch task.Status {
		case TaskStatusSucceeded:
			return task, nil
		case TaskStatusFailed:
			msg := task.Error
			if msg == "" {
				msg = "task failed"
			}
			return task, &APIError{Operation: "task " + id, Message: msg}
		}

		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches a result artifact into destDir and returns the local path.
func (c *Client) Download(ctx context.Context, url, destDir, fileName string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	c.authorize(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download artifact: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != nethttp.StatusOK {
		return "", newAPIError("download", res)
	}

	path := filepath.Join(destDir, fileName)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// postTask submits one task-creating request and decodes the task envelope.
func (c *Client) postTask(ctx context.Context, path string, body any) (Task, error) {
	res, err := c.doRequest(ctx, nethttp.MethodPost, path, body)
	if err != nil {
		return Task{}, err
	}
	defer res.Body.Close()

	return decodeTask(res)
}

// doRequest performs one authenticated JSON request.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*nethttp.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return res, nil
}

// authorize attaches the API key header.
func (c *Client) authorize(req *nethttp.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// decodeTask maps a response to a Task or an *APIError.
func decodeTask(res *nethttp.Response) (Task, error) {
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Task{}, newAPIError(res.Request.URL.Path, res)
	}

	var task Task
	if err := json.NewDecoder(res.Body).Decode(&task); err != nil {
		return Task{}, fmt.Errorf("decode task response: %w", err)
	}
	return task, nil
}
