// Package embeddings provides the embedding drivers used by the
// retrieval augmenter: Gemini (the default, 768 dimensions) and any
// OpenAI-compatible embeddings endpoint.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// GeminiDriver embeds texts through the Gemini embedContent API with
// the RETRIEVAL_QUERY task type. Vectors are L2-normalized so cosine
// similarity reduces to a dot product on the search side.
type GeminiDriver struct {
	apiKey     string
	model      string
	endpoint   string
	dimensions int
	client     *http.Client
}

// GeminiOption configures the Gemini driver.
type GeminiOption func(*GeminiDriver)

// WithGeminiEndpoint sets a custom API endpoint (e.g. for proxies).
func WithGeminiEndpoint(endpoint string) GeminiOption {
	return func(d *GeminiDriver) { d.endpoint = endpoint }
}

// NewGeminiDriver creates a Gemini embedding driver.
func NewGeminiDriver(apiKey string, opts ...GeminiOption) *GeminiDriver {
	d := &GeminiDriver{
		apiKey:     apiKey,
		model:      "gemini-embedding-001",
		endpoint:   "https://generativelanguage.googleapis.com/v1beta",
		dimensions: 768,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *GeminiDriver) Kind() string    { return "gemini" }
func (d *GeminiDriver) Dimensions() int { return d.dimensions }

type geminiEmbedRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
	TaskType             string `json:"task_type,omitempty"`
	OutputDimensionality int    `json:"output_dimensionality,omitempty"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// permanentStatus reports status codes not worth retrying.
func permanentStatus(code int) bool {
	return code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden
}

// Embed generates one normalized vector per input text. Transient API
// failures are retried with exponential backoff; 400/401/403 fail fast.
func (d *GeminiDriver) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vec, err := d.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (d *GeminiDriver) embedOne(ctx context.Context, text string) ([]float64, error) {
	req := geminiEmbedRequest{
		Model:                "models/" + d.model,
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: d.dimensions,
	}
	req.Content.Parts = []struct {
		Text string `json:"text"`
	}{{Text: text}}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", d.endpoint, d.model)

	var values []float64
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("gemini embed: create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", d.apiKey)

		resp, err := d.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("gemini embed: request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("gemini embed: status %d: %s", resp.StatusCode, string(respBody))
			if permanentStatus(resp.StatusCode) {
				return backoff.Permanent(err)
			}
			return err
		}

		var apiResp geminiEmbedResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return fmt.Errorf("gemini embed: decode response: %w", err)
		}
		values = apiResp.Embedding.Values
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty embedding returned")
	}

	return normalize(values), nil
}

// normalize scales the vector to unit length in place.
func normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
