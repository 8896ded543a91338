package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vidver/internal/domain"
	"vidver/internal/infra"
)

// TaskKind selects the provider pipeline for a submitted task.
type TaskKind string

const (
	TaskImageTune   TaskKind = "image-to-image"
	TaskVideoEffect TaskKind = "image-to-video"
)

// TaskRequest carries everything the provider needs for one generation task.
type TaskRequest struct {
	Kind     TaskKind
	Prompt   string
	ImageURL string
	Params   map[string]string
}

// TaskState is the provider-side lifecycle of a submitted task.
type TaskState string

const (
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// TaskStatus is one poll observation.
type TaskStatus struct {
	State     TaskState
	ResultURL string
	Reason    string
}

// Options controls how the client is configured.
type Options struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxAttempts  int
	Logger       *infra.Logger
}

// Client is a thin adapter over the provider's asynchronous task API: submit
// a generation request, then poll its status endpoint until terminal. There
// is no retry with backoff; a transient poll error consumes one attempt.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxAttempts  int
	logger       *infra.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.kie.ai/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &Client{
		httpClient:   client,
		baseURL:      base,
		apiKey:       strings.TrimSpace(opts.APIKey),
		pollInterval: interval,
		maxAttempts:  attempts,
		logger:       opts.Logger,
	}
}

type submitRequest struct {
	TaskType string            `json:"task_type"`
	Prompt   string            `json:"prompt"`
	ImageURL string            `json:"image_url,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

type submitResponse struct {
	TaskID  string `json:"task_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
	Error     string `json:"error"`
}

// Submit posts a generation task and returns the provider task id.
func (c *Client) Submit(ctx context.Context, req TaskRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: api key missing", domain.ErrGatewayUnavailable)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("%w: prompt required", domain.ErrInvalidRequest)
	}
	body, err := json.Marshal(submitRequest{
		TaskType: string(req.Kind),
		Prompt:   req.Prompt,
		ImageURL: req.ImageURL,
		Params:   req.Params,
	})
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return "", fmt.Errorf("%w: http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("gateway: decode submit response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: http %d %s", domain.ErrGatewayUnavailable, resp.StatusCode, out.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return "", fmt.Errorf("gateway: %s (%s)", out.Message, out.Code)
		}
		return "", fmt.Errorf("gateway: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.TaskID) == "" {
		return "", fmt.Errorf("%w: missing task id", domain.ErrGatewayUnavailable)
	}
	return out.TaskID, nil
}

// Poll fetches the current status of a submitted task.
func (c *Client) Poll(ctx context.Context, taskID string) (TaskStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/"+taskID, nil)
	if err != nil {
		return TaskStatus{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return TaskStatus{}, fmt.Errorf("gateway: poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return TaskStatus{}, fmt.Errorf("gateway: poll http %d", resp.StatusCode)
	}
	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TaskStatus{}, fmt.Errorf("gateway: decode status: %w", err)
	}
	switch strings.ToLower(out.Status) {
	case "succeeded", "success", "completed":
		if strings.TrimSpace(out.ResultURL) == "" {
			return TaskStatus{State: TaskFailed, Reason: "provider returned no result url"}, nil
		}
		return TaskStatus{State: TaskSucceeded, ResultURL: out.ResultURL}, nil
	case "failed", "error", "cancelled":
		reason := out.Error
		if reason == "" {
			reason = "provider reported failure"
		}
		return TaskStatus{State: TaskFailed, Reason: reason}, nil
	default:
		return TaskStatus{State: TaskRunning}, nil
	}
}

// Await polls at a fixed interval until the task is terminal or the attempt
// bound is reached, yielding ErrGenerationTimeout. The wait is a suspend
// point on the ticker and the context, never a bare sleep.
func (c *Client) Await(ctx context.Context, taskID string) (TaskStatus, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return TaskStatus{}, ctx.Err()
		case <-ticker.C:
		}

		status, err := c.Poll(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return TaskStatus{}, ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warn().Err(err).Str("task_id", taskID).Int("attempt", attempt).Msg("gateway: poll failed")
			}
			continue
		}
		if status.State != TaskRunning {
			return status, nil
		}
	}
	return TaskStatus{}, fmt.Errorf("%w: task %s not terminal after %d polls", domain.ErrGenerationTimeout, taskID, c.maxAttempts)
}
