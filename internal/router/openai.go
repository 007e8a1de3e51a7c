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

// OpenAIBackend is an AIBackend over any OpenAI-compatible chat
// completions endpoint.
type OpenAIBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenAIBackend creates an OpenAI-compatible backend. endpoint
// defaults to the public OpenAI API when empty.
func NewOpenAIBackend(apiKey, endpoint string) *OpenAIBackend {
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	return &OpenAIBackend{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *OpenAIBackend) Kind() string { return "openai" }

type openAIRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the invocation as a chat completion. The system prompt
// becomes the leading system message.
func (b *OpenAIBackend) Complete(ctx context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error) {
	model := inv.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	messages := make([]models.ChatMessage, 0, len(inv.Messages)+1)
	if inv.SystemPrompt != "" {
		messages = append(messages, models.ChatMessage{Role: "system", Content: inv.SystemPrompt})
	}
	messages = append(messages, inv.Messages...)

	body, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   inv.MaxTokens,
		Temperature: inv.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := b.endpoint + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	httpResp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("openai: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var oaiResp openAIResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&oaiResp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(oaiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	return &models.GeneratedResult{
		Content:       oaiResp.Choices[0].Message.Content,
		IsAIGenerated: true,
	}, nil
}
