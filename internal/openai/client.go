// Package openai is a minimal client for OpenAI-compatible chat completion
// and moderation endpoints.
package openai

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
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 15 * time.Second
	defaultMaxTokens = 150
)

// Client communicates with an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	// Sampling profile. Held constant across calls so cached replies stay
	// coherent with fresh ones.
	temperature      float64
	frequencyPenalty float64
}

// Opts holds parameters for creating a Client.
type Opts struct {
	APIKey           string
	BaseURL          string // defaults to the OpenAI API
	Model            string
	Timeout          time.Duration
	Temperature      float64
	FrequencyPenalty float64
}

// NewClient creates a Client.
func NewClient(opts Opts) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:           opts.APIKey,
		baseURL:          strings.TrimRight(baseURL, "/"),
		model:            model,
		httpClient:       &http.Client{Timeout: timeout},
		temperature:      opts.Temperature,
		frequencyPenalty: opts.FrequencyPenalty,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a two-turn chat completion (system + user) and returns the
// assistant text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userText string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		MaxTokens:        maxTokens,
		Temperature:      c.temperature,
		FrequencyPenalty: c.frequencyPenalty,
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

// Moderate classifies text and reports whether it was flagged.
func (c *Client) Moderate(ctx context.Context, text string) (bool, error) {
	var resp moderationResponse
	if err := c.post(ctx, "/moderations", moderationRequest{Input: text}, &resp); err != nil {
		return false, err
	}
	if len(resp.Results) == 0 {
		return false, fmt.Errorf("openai: moderation returned no results")
	}
	return resp.Results[0].Flagged, nil
}

// post marshals payload, executes the request, and decodes the response into
// out. Non-200 statuses become errors carrying the response body.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openai: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}
