package retention_test

import (
	"context"
	"testing"
	"time"

	"github.com/lexmitra/lexmitra/backend/internal/retention"
)

type recordingPurger struct {
	cutoff time.Time
	purged int
}

func (p *recordingPurger) PurgeMessagesBefore(_ context.Context, cutoff time.Time) (int, error) {
	p.cutoff = cutoff
	return p.purged, nil
}

func TestRunCycleCutoff(t *testing.T) {
	p := &recordingPurger{purged: 3}
	j := retention.NewJanitor(p, time.Hour, 30*24*time.Hour)

	n, err := j.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("purged = %d, want 3", n)
	}

	want := time.Now().Add(-30 * 24 * time.Hour)
	if diff := p.cutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff %v not ~30 days ago", p.cutoff)
	}
}

func TestDefaultsApplied(t *testing.T) {
	p := &recordingPurger{}
	j := retention.NewJanitor(p, 0, 0)

	if _, err := j.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := time.Now().Add(-retention.DefaultRetention)
	if diff := p.cutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff %v not ~default retention ago", p.cutoff)
	}
}
