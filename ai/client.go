// Package ai talks to a chat-completions model to suggest subtasks and to
// re-rank a user's tasks, validating every answer before it reaches the store.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/viswayadeedya/TodoIQ-BE/config"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// Request is a single prompt sent to the model.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	tracer  trace.Tracer
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewChatClient creates a client for the endpoint described by cfg. Every
// call is bounded by cfg.Timeout.
func NewChatClient(cfg config.AIConfig) *ChatClient {
	return &ChatClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		tracer:  otel.Tracer("github.com/viswayadeedya/TodoIQ-BE/ai"),
	}
}

// Generate sends req and returns the content of the first choice. Every
// failure is a *GenerationError; the call is never retried.
func (c *ChatClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ai.ChatCompletion", trace.WithAttributes(
		attribute.String("ai.model", c.model),
		attribute.Float64("ai.temperature", req.Temperature),
	))
	defer span.End()

	content, err := c.generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("ai.response_bytes", len(content)))
	return content, nil
}

func (c *ChatClient) generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", &GenerationError{Err: errors.New("API key not configured")}
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: req.Temperature})
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr chatError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", &GenerationError{StatusCode: resp.StatusCode, Err: errors.New(apiErr.Error.Message)}
		}
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(respBody)))}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: errors.New("response has no choices")}
	}
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: errors.New("response content is empty")}
	}
	return content, nil
}
