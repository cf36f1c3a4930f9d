// Package imagegen produces illustration URLs from text prompts via the
// Kling image API, hiding its submit-then-poll protocol behind one call.
package imagegen

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

	"github.com/rs/zerolog"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

// Options configures the Kling client.
type Options struct {
	AccessKey    string
	SecretKey    string
	BaseURL      string
	Model        string
	HTTPClient   *http.Client
	Logger       zerolog.Logger
	PollInterval time.Duration
	PollBudget   time.Duration
}

// Client performs HTTP calls against the Kling image-generation API.
type Client struct {
	baseURL      string
	model        string
	signer       *tokenSigner
	httpClient   *http.Client
	logger       zerolog.Logger
	pollInterval time.Duration
	pollBudget   time.Duration
}

// GenerateRequest captures one logical image generation.
type GenerateRequest struct {
	Prompt      string
	Count       int
	AspectRatio string
}

const (
	defaultPollInterval = 3 * time.Second
	defaultPollBudget   = 60 * time.Second
)

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.klingai.com"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "kling-v1"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	budget := opts.PollBudget
	if budget <= 0 {
		budget = defaultPollBudget
	}
	return &Client{
		baseURL:      baseURL,
		model:        model,
		signer:       newTokenSigner(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey)),
		httpClient:   httpClient,
		logger:       opts.Logger,
		pollInterval: interval,
		pollBudget:   budget,
	}
}

// IsConfigured reports whether both provider credentials are present. Pure
// predicate; callers check it before depending on the client.
func (c *Client) IsConfigured() bool {
	return c != nil && c.signer.accessKey != "" && c.signer.secretKey != ""
}

type createTaskRequest struct {
	ModelName   string `json:"model_name"`
	Prompt      string `json:"prompt"`
	N           int    `json:"n"`
	AspectRatio string `json:"aspect_ratio"`
}

type taskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID        string `json:"task_id"`
		TaskStatus    string `json:"task_status"`
		TaskStatusMsg string `json:"task_status_msg"`
		TaskResult    struct {
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"task_result"`
	} `json:"data"`
}

// Generate submits one task and polls it to a terminal state, returning the
// generated image URLs. Failures surface immediately; there is no retry at
// this layer.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]string, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("imagegen: %w: missing provider credentials", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("imagegen: prompt is required")
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	aspect := strings.TrimSpace(req.AspectRatio)
	if aspect == "" {
		aspect = "16:9"
	}

	taskID, err := c.createTask(ctx, createTaskRequest{
		ModelName:   c.model,
		Prompt:      req.Prompt,
		N:           count,
		AspectRatio: aspect,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("task_id", taskID).Msg("imagegen: task submitted")
	return c.waitForTask(ctx, taskID)
}

func (c *Client) createTask(ctx context.Context, payload createTaskRequest) (string, error) {
	var decoded taskResponse
	if err := c.call(ctx, http.MethodPost, "/v1/images/generations", payload, &decoded); err != nil {
		return "", err
	}
	if decoded.Data.TaskID == "" {
		return "", errors.New("imagegen: provider returned no task id")
	}
	return decoded.Data.TaskID, nil
}

// waitForTask polls on a fixed interval, sleeping between attempts, until
// the task succeeds, fails, or the wait budget is exhausted.
func (c *Client) waitForTask(ctx context.Context, taskID string) ([]string, error) {
	deadline := time.Now().Add(c.pollBudget)
	for {
		var decoded taskResponse
		if err := c.call(ctx, http.MethodGet, "/v1/images/generations/"+taskID, nil, &decoded); err != nil {
			return nil, err
		}
		switch decoded.Data.TaskStatus {
		case "succeed":
			urls := make([]string, 0, len(decoded.Data.TaskResult.Images))
			for _, img := range decoded.Data.TaskResult.Images {
				if u := strings.TrimSpace(img.URL); u != "" {
					urls = append(urls, u)
				}
			}
			return urls, nil
		case "failed":
			msg := decoded.Data.TaskStatusMsg
			if msg == "" {
				msg = "task failed"
			}
			return nil, fmt.Errorf("imagegen: %w: %s", domain.ErrProviderFailure, msg)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("imagegen: task %s timed out after %s", taskID, c.pollBudget)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) call(ctx context.Context, method, path string, payload any, out *taskResponse) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("imagegen: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("imagegen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.signer.Token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagegen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("imagegen: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("imagegen: decode response: %w", err)
	}
	if out.Code != 0 {
		return fmt.Errorf("imagegen: %w: %s (code %d)", domain.ErrProviderFailure, out.Message, out.Code)
	}
	return nil
}
