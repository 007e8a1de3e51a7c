// Package retention implements the chat history retention policy.
// Conversation records are personal legal data; they are purged after
// the retention window rather than kept indefinitely.
//
// The janitor runs as a background goroutine and respects context
// cancellation for graceful shutdown.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRetention keeps chat history for one year.
const DefaultRetention = 365 * 24 * time.Hour

// MessagePurger is the slice of the store the janitor needs.
type MessagePurger interface {
	PurgeMessagesBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Janitor periodically purges chat messages past the retention window.
type Janitor struct {
	store     MessagePurger
	interval  time.Duration
	retention time.Duration
}

// NewJanitor creates a retention janitor. Intervals under a minute are
// clamped to an hour.
func NewJanitor(s MessagePurger, interval, retention time.Duration) *Janitor {
	if interval < time.Minute {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Janitor{store: s, interval: interval, retention: retention}
}

// Start runs the janitor until ctx is canceled. It blocks; run it in a
// goroutine.
func (j *Janitor) Start(ctx context.Context) {
	log.Info().
		Dur("interval", j.interval).
		Dur("retention", j.retention).
		Msg("Retention janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Retention janitor stopped")
			return
		case <-ticker.C:
			j.runCycle(ctx)
		}
	}
}

// RunCycle purges one round immediately. Exposed for tests and manual
// maintenance.
func (j *Janitor) RunCycle(ctx context.Context) (int, error) {
	return j.store.PurgeMessagesBefore(ctx, time.Now().Add(-j.retention))
}

func (j *Janitor) runCycle(ctx context.Context) {
	purged, err := j.RunCycle(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Retention cycle failed")
		return
	}
	if purged > 0 {
		log.Info().Int("purged", purged).Msg("Expired chat messages purged")
	}
}
