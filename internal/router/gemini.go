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

// GeminiBackend is an AIBackend over the Gemini generateContent API.
type GeminiBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGeminiBackend creates a Gemini backend. endpoint defaults to the
// public generative language API when empty.
func NewGeminiBackend(apiKey, endpoint string) *GeminiBackend {
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiBackend{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *GeminiBackend) Kind() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// Complete sends the invocation. Gemini uses "model" for assistant
// turns and a dedicated systemInstruction field.
func (b *GeminiBackend) Complete(ctx context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error) {
	req := geminiRequest{}
	if inv.SystemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: inv.SystemPrompt}}}
	}
	for _, m := range inv.Messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	req.GenerationConfig.Temperature = inv.Temperature
	req.GenerationConfig.MaxOutputTokens = inv.MaxTokens

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	model := inv.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", b.endpoint, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", b.apiKey)

	httpResp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if gemResp.Error.Message != "" {
		return nil, fmt.Errorf("gemini: API error %d: %s", gemResp.Error.Code, gemResp.Error.Message)
	}
	if gemResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini: prompt blocked: %s", gemResp.PromptFeedback.BlockReason)
	}
	if len(gemResp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}

	content := ""
	for _, part := range gemResp.Candidates[0].Content.Parts {
		content += part.Text
	}
	if content == "" {
		return nil, fmt.Errorf("gemini: empty candidate (finish reason: %s)", gemResp.Candidates[0].FinishReason)
	}

	return &models.GeneratedResult{
		Content:       content,
		IsAIGenerated: true,
	}, nil
}
