// Package store provides the storage interface and implementations for
// the query pipeline. The in-memory store backs tests and development;
// PostgreSQL backs production.
package store

import (
	"context"
	"time"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// Store is the primary storage interface. Handler and pipeline code
// depend on this interface, making it easy to swap between in-memory
// (tests) and PostgreSQL (production) implementations.
type Store interface {
	ExchangeStore
	CaseStore
	UsageStore
	SubscriptionStore

	// Ping checks if the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Exchange Store ──────────────────────────────────────────

// ExchangeStore persists completed user/assistant turn pairs. The
// pipeline writes each exchange at most once.
type ExchangeStore interface {
	// SaveExchange writes both messages of the exchange and returns the
	// persisted ids.
	SaveExchange(ctx context.Context, ex *models.Exchange) (*models.PersistReceipt, error)

	// ListExchanges returns a session's messages in insertion order.
	ListExchanges(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)

	// PurgeMessagesBefore deletes messages older than cutoff, returning
	// how many were removed. Used by the retention janitor.
	PurgeMessagesBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ── Case Store ──────────────────────────────────────────────

// CaseStore resolves active case ids against both case shapes: full
// case records and lightweight tracker entries. Getters return
// (nil, nil) for an unknown id; errors mean the lookup itself failed.
type CaseStore interface {
	GetCase(ctx context.Context, id string) (*models.CaseRecord, error)
	GetCaseTracker(ctx context.Context, id string) (*models.CaseTrackerRecord, error)
	CreateCase(ctx context.Context, c *models.CaseRecord) error
	CreateCaseTracker(ctx context.Context, t *models.CaseTrackerRecord) error
}

// ── Usage Store ─────────────────────────────────────────────

// UsageStore tracks per-caller AI call counts in the current daily
// accounting window.
type UsageStore interface {
	Count(ctx context.Context, callerID string, feature models.Feature) (int, error)
	Increment(ctx context.Context, callerID string, feature models.Feature) error
}

// ── Subscription Store ──────────────────────────────────────

// SubscriptionStore maps callers to subscription plans.
type SubscriptionStore interface {
	Resolve(ctx context.Context, callerID string) (models.Plan, error)
	SetPlan(ctx context.Context, callerID string, plan models.Plan) error
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// usageDay returns the UTC day bucket used for daily ceilings.
func usageDay(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
