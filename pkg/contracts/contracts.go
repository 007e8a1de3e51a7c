// Package contracts defines the collaborator ports consumed by the
// query pipeline.
//
// The pipeline core is transport-agnostic: the HTTP layer, the relational
// schema, authentication and payment processing all live behind these
// narrow interfaces. Concrete adapters ship in internal/store,
// internal/embeddings and internal/router; tests substitute in-memory
// fakes with no further wiring.
package contracts

import (
	"context"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// ── Case Lookup ─────────────────────────────────────────────

// CaseLookup resolves an active case id to one of the two case shapes.
// Both getters return (nil, nil) when the id does not resolve; an error
// means the lookup itself failed.
type CaseLookup interface {
	GetCase(ctx context.Context, id string) (*models.CaseRecord, error)
	GetCaseTracker(ctx context.Context, id string) (*models.CaseTrackerRecord, error)
}

// ── Embeddings & Vector Search ──────────────────────────────

// EmbeddingDriver derives vector embeddings for a batch of texts.
type EmbeddingDriver interface {
	// Kind returns the driver identifier (e.g., "gemini", "openai").
	Kind() string

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// Embed generates one vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorSearcher finds prior case documents semantically similar to a
// query vector, scoped to a single case.
type VectorSearcher interface {
	// TopK returns at most k chunks with similarity >= minScore,
	// ordered descending by score.
	TopK(ctx context.Context, caseID string, vector []float64, k int, minScore float64) ([]models.RetrievedChunk, error)
}

// ── AI Backend ──────────────────────────────────────────────

// AIBackend sends a fully assembled invocation to a model provider.
// Errors include backend faults and timeouts; the router maps them to
// models.ErrModelUnavailable.
type AIBackend interface {
	// Kind returns the backend identifier (e.g., "openai", "anthropic", "gemini").
	Kind() string

	// Complete sends the invocation and returns the generated result.
	Complete(ctx context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error)
}

// ── Exchange Persistence ────────────────────────────────────

// ExchangeStore durably writes a completed user/assistant turn pair.
// The pipeline calls SaveExchange at most once per request.
type ExchangeStore interface {
	SaveExchange(ctx context.Context, ex *models.Exchange) (*models.PersistReceipt, error)
}

// ── Auth / Plan Ports ───────────────────────────────────────

// PlanResolver maps a caller to their subscription plan. Owned by the
// auth layer; the pipeline only consults it.
type PlanResolver interface {
	Resolve(ctx context.Context, callerID string) (models.Plan, error)
}

// UsageCounter reports how many AI calls a caller has made for a feature
// in the current accounting window. The counter is externally owned;
// the router consults it to enforce tier ceilings.
type UsageCounter interface {
	Count(ctx context.Context, callerID string, feature models.Feature) (int, error)
	Increment(ctx context.Context, callerID string, feature models.Feature) error
}
