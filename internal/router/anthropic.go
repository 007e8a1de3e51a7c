package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// AnthropicBackend is an AIBackend over the Anthropic Messages API.
type AnthropicBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewAnthropicBackend creates an Anthropic backend. endpoint defaults
// to the public API when empty.
func NewAnthropicBackend(apiKey, endpoint string) *AnthropicBackend {
	if endpoint == "" {
		endpoint = "https://api.anthropic.com"
	}
	return &AnthropicBackend{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *AnthropicBackend) Kind() string { return "anthropic" }

type anthropicRequest struct {
	Model       string               `json:"model"`
	System      string               `json:"system,omitempty"`
	Messages    []models.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens"`
	Temperature float64              `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the invocation. The system prompt rides the dedicated
// system field rather than a message role.
func (b *AnthropicBackend) Complete(ctx context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error) {
	model := inv.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		System:      inv.SystemPrompt,
		Messages:    inv.Messages,
		MaxTokens:   inv.MaxTokens,
		Temperature: inv.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	url := b.endpoint + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("anthropic: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var anthResp anthropicResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&anthResp); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	content := ""
	for _, c := range anthResp.Content {
		if c.Type == "text" {
			content += c.Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("anthropic: empty response content")
	}

	return &models.GeneratedResult{
		Content:       content,
		IsAIGenerated: true,
	}, nil
}
