package store_test

import (
	"context"
	"testing"

	"github.com/lexmitra/lexmitra/backend/internal/store"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

func TestSaveExchangeMintsSession(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	receipt, err := m.SaveExchange(ctx, &models.Exchange{
		CallerID:      "adv-1",
		UserTurn:      models.Turn{Role: models.RoleUser, Content: "What is anticipatory bail?"},
		AssistantTurn: models.Turn{Role: models.RoleAssistant, Content: "Anticipatory bail is..."},
		IsAIGenerated: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.SessionID == "" || receipt.MessageID == "" {
		t.Fatalf("receipt missing ids: %+v", receipt)
	}

	msgs, err := m.ListExchanges(ctx, receipt.SessionID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user+assistant pair, got %d messages", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("wrong roles: %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestSaveExchangeAppendsToSession(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	first, err := m.SaveExchange(ctx, &models.Exchange{
		CallerID:      "adv-1",
		UserTurn:      models.Turn{Content: "q1"},
		AssistantTurn: models.Turn{Content: "a1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.SaveExchange(ctx, &models.Exchange{
		SessionID:     first.SessionID,
		CallerID:      "adv-1",
		UserTurn:      models.Turn{Content: "q2"},
		AssistantTurn: models.Turn{Content: "a2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.SessionID != first.SessionID {
		t.Fatal("explicit session id must be reused")
	}

	msgs, err := m.ListExchanges(ctx, first.SessionID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[3].Content != "a2" {
		t.Fatalf("insertion order broken, last = %q", msgs[3].Content)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	r1, _ := m.SaveExchange(ctx, &models.Exchange{CallerID: "adv-1", UserTurn: models.Turn{Content: "bail query"}, AssistantTurn: models.Turn{Content: "bail answer"}})
	r2, _ := m.SaveExchange(ctx, &models.Exchange{CallerID: "adv-1", UserTurn: models.Turn{Content: "rent query"}, AssistantTurn: models.Turn{Content: "rent answer"}})

	if r1.SessionID == r2.SessionID {
		t.Fatal("exchanges without a session id must land in distinct sessions")
	}
	msgs, _ := m.ListExchanges(ctx, r1.SessionID, 0)
	for _, msg := range msgs {
		if msg.Content == "rent query" {
			t.Fatal("message leaked across sessions")
		}
	}
}

func TestCaseLookupMisses(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	c, err := m.GetCase(ctx, "nope")
	if err != nil || c != nil {
		t.Fatalf("unknown case must be (nil, nil), got %v / %v", c, err)
	}
	tr, err := m.GetCaseTracker(ctx, "nope")
	if err != nil || tr != nil {
		t.Fatalf("unknown tracker must be (nil, nil), got %v / %v", tr, err)
	}
}

func TestCaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	if err := m.CreateCase(ctx, &models.CaseRecord{ID: "case-9", Title: "State v. Sharma", CNR: "DLHC010012342023"}); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetCase(ctx, "case-9")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Title != "State v. Sharma" || got.CNR != "DLHC010012342023" {
		t.Fatalf("got %+v", got)
	}
}

func TestUsageCounting(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	n, err := m.Count(ctx, "adv-1", models.FeatureChat)
	if err != nil || n != 0 {
		t.Fatalf("fresh count = %d, %v", n, err)
	}
	for i := 0; i < 3; i++ {
		if err := m.Increment(ctx, "adv-1", models.FeatureChat); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Increment(ctx, "adv-1", models.FeatureDrafting); err != nil {
		t.Fatal(err)
	}

	n, _ = m.Count(ctx, "adv-1", models.FeatureChat)
	if n != 3 {
		t.Fatalf("chat count = %d, want 3", n)
	}
	n, _ = m.Count(ctx, "adv-1", models.FeatureDrafting)
	if n != 1 {
		t.Fatalf("drafting count = %d, want 1", n)
	}
	n, _ = m.Count(ctx, "adv-2", models.FeatureChat)
	if n != 0 {
		t.Fatalf("other caller count = %d, want 0", n)
	}
}

func TestResolveDefaultsToFree(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()
	defer m.Close()

	plan, err := m.Resolve(ctx, "stranger")
	if err != nil || plan != models.PlanFree {
		t.Fatalf("got %v, %v", plan, err)
	}

	if err := m.SetPlan(ctx, "adv-1", models.PlanPro); err != nil {
		t.Fatal(err)
	}
	plan, _ = m.Resolve(ctx, "adv-1")
	if plan != models.PlanPro {
		t.Fatalf("got %v, want PRO", plan)
	}
}
