// Package router implements the tiered model router.
//
// The router decides whether a caller's plan reaches the AI backend at
// all, selects generation parameters from the closed Plan × Feature
// entitlement table, enforces usage ceilings through the externally
// owned counter, and wraps the backend call in a timeout. It never
// retries internally: a backend fault or timeout surfaces as
// models.ErrModelUnavailable and the orchestrator decides between
// template fallback and a surfaced failure.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 90 * time.Second

// Request is the routing input. Generation parameters are deliberately
// absent: they come from the entitlement table only.
type Request struct {
	CallerID     string
	Plan         models.Plan
	Feature      models.Feature
	SystemPrompt string
	Messages     []models.ChatMessage
}

// TieredRouter routes invocations to a single configured AI backend.
type TieredRouter struct {
	backend contracts.AIBackend
	usage   contracts.UsageCounter
	model   string
	timeout time.Duration
}

// Option configures the router.
type Option func(*TieredRouter)

// WithTimeout overrides the backend call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *TieredRouter) { r.timeout = d }
}

// WithModel sets the model identifier passed to the backend.
func WithModel(model string) Option {
	return func(r *TieredRouter) { r.model = model }
}

// New creates a tiered router over the given backend and usage counter.
func New(backend contracts.AIBackend, usage contracts.UsageCounter, opts ...Option) *TieredRouter {
	r := &TieredRouter{
		backend: backend,
		usage:   usage,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route checks entitlement and quota, then sends the invocation.
//
// Error contract:
//   - models.ErrNotEntitled: the plan never reaches the AI backend for
//     this feature (for drafting this makes templates the primary path)
//   - models.ErrQuotaExceeded: metered ceiling hit
//   - models.ErrModelUnavailable: backend fault or timeout, no retry
func (r *TieredRouter) Route(ctx context.Context, req Request) (*models.GeneratedResult, error) {
	params := Lookup(req.Plan, req.Feature)
	if !params.Allowed {
		return nil, fmt.Errorf("%w: plan %s, feature %s", models.ErrNotEntitled, req.Plan, req.Feature)
	}

	if err := r.checkQuota(ctx, req); err != nil {
		return nil, err
	}

	inv := &models.ModelInvocation{
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Model:        r.model,
		MaxTokens:    params.MaxTokens,
		Temperature:  params.Temperature,
		Plan:         req.Plan,
		Feature:      req.Feature,
		CallerID:     req.CallerID,
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result, err := r.backend.Complete(callCtx, inv)
	if err != nil {
		log.Warn().
			Err(err).
			Str("backend", r.backend.Kind()).
			Str("plan", string(req.Plan)).
			Str("feature", string(req.Feature)).
			Dur("elapsed", time.Since(start)).
			Msg("AI backend call failed")
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelUnavailable, r.backend.Kind(), err)
	}

	if r.usage != nil {
		if err := r.usage.Increment(ctx, req.CallerID, req.Feature); err != nil {
			// Billing-side counter; the answer is already generated.
			log.Warn().Err(err).Str("caller_id", req.CallerID).Msg("Usage increment failed")
		}
	}

	result.IsAIGenerated = true
	return result, nil
}

// checkQuota consults the external counter for metered plans.
func (r *TieredRouter) checkQuota(ctx context.Context, req Request) error {
	ceiling := DailyCeiling(req.Plan)
	if ceiling == 0 || r.usage == nil {
		return nil
	}

	used, err := r.usage.Count(ctx, req.CallerID, req.Feature)
	if err != nil {
		// A broken counter must not take the product down; log and allow.
		log.Warn().Err(err).Str("caller_id", req.CallerID).Msg("Usage counter unavailable, skipping quota check")
		return nil
	}
	if used >= ceiling {
		return fmt.Errorf("%w: %d/%d calls used for plan %s", models.ErrQuotaExceeded, used, ceiling, req.Plan)
	}
	return nil
}

// IsEntitled reports whether the plan reaches the AI backend for the
// feature at all. The orchestrator uses this to pick the primary path
// for drafting requests.
func IsEntitled(plan models.Plan, feature models.Feature) bool {
	return Lookup(plan, feature).Allowed
}
