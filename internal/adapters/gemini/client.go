// Package gemini generates lesson insights with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

const (
	DefaultModel          = "gemini-2.5-pro"
	DefaultThinkingBudget = 8192
)

// Config configures the Gemini client. BaseURL and HTTPClient are optional.
type Config struct {
	APIKey         string
	Model          string
	ThinkingBudget int32
	BaseURL        string
	HTTPClient     *http.Client
}

// Client implements ports.InsightGenerator.
type Client struct {
	client         *genai.Client
	model          string
	thinkingBudget int32
}

var _ ports.InsightGenerator = (*Client)(nil)

// NewClient creates a Gemini-backed insight generator.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ThinkingBudget == 0 {
		cfg.ThinkingBudget = DefaultThinkingBudget
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:         client,
		model:          cfg.Model,
		thinkingBudget: cfg.ThinkingBudget,
	}, nil
}

// GenerateInsight sends prompt as a single user turn and returns the text reply.
func (c *Client) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(c.thinkingBudget),
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// Model reports the configured model name.
func (c *Client) Model() string {
	return c.model
}
