package router_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexmitra/lexmitra/backend/internal/router"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// mockBackend is a test AIBackend that records the invocation it got.
type mockBackend struct {
	lastInv *models.ModelInvocation
	result  *models.GeneratedResult
	err     error
	delay   time.Duration
}

func (m *mockBackend) Kind() string { return "mock" }

func (m *mockBackend) Complete(ctx context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error) {
	m.lastInv = inv
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockCounter is a test UsageCounter.
type mockCounter struct {
	count      int
	countErr   error
	increments int
}

func (m *mockCounter) Count(context.Context, string, models.Feature) (int, error) {
	return m.count, m.countErr
}

func (m *mockCounter) Increment(context.Context, string, models.Feature) error {
	m.increments++
	return nil
}

func chatRequest(plan models.Plan, feature models.Feature) router.Request {
	return router.Request{
		CallerID:     "caller-1",
		Plan:         plan,
		Feature:      feature,
		SystemPrompt: "You are a legal assistant.",
		Messages:     []models.ChatMessage{{Role: "user", Content: "hello"}},
	}
}

func TestRoute_DraftingParamsForPaidPlans(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "draft"}}
	r := router.New(backend, &mockCounter{}, router.WithModel("gpt-4o"))

	for _, plan := range []models.Plan{models.PlanPlus, models.PlanPro} {
		if _, err := r.Route(context.Background(), chatRequest(plan, models.FeatureDrafting)); err != nil {
			t.Fatalf("Route(%s, drafting) error = %v", plan, err)
		}
		if backend.lastInv.MaxTokens != 4096 {
			t.Errorf("plan %s drafting MaxTokens = %d, want 4096", plan, backend.lastInv.MaxTokens)
		}
		if backend.lastInv.Temperature != 0.3 {
			t.Errorf("plan %s drafting Temperature = %v, want 0.3", plan, backend.lastInv.Temperature)
		}
		if backend.lastInv.Model != "gpt-4o" {
			t.Errorf("plan %s Model = %q, want gpt-4o", plan, backend.lastInv.Model)
		}
	}
}

func TestRoute_ChatParams(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "hi"}}
	r := router.New(backend, &mockCounter{})

	for _, plan := range []models.Plan{models.PlanFree, models.PlanBasic, models.PlanPlus, models.PlanPro} {
		if _, err := r.Route(context.Background(), chatRequest(plan, models.FeatureChat)); err != nil {
			t.Fatalf("Route(%s, chat) error = %v", plan, err)
		}
		if backend.lastInv.MaxTokens != 2000 || backend.lastInv.Temperature != 0.7 {
			t.Errorf("plan %s chat params = (%d, %v), want (2000, 0.7)",
				plan, backend.lastInv.MaxTokens, backend.lastInv.Temperature)
		}
	}
}

func TestRoute_DraftingNotEntitledForMeteredPlans(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "draft"}}
	r := router.New(backend, &mockCounter{})

	for _, plan := range []models.Plan{models.PlanFree, models.PlanBasic} {
		_, err := r.Route(context.Background(), chatRequest(plan, models.FeatureDrafting))
		if !errors.Is(err, models.ErrNotEntitled) {
			t.Errorf("Route(%s, drafting) err = %v, want ErrNotEntitled", plan, err)
		}
		if backend.lastInv != nil {
			t.Errorf("plan %s drafting reached the backend", plan)
		}
	}
}

func TestRoute_ParamsNeverFromPayload(t *testing.T) {
	// A request cannot smuggle drafting-tier parameters: the table is
	// the only source, keyed strictly by (plan, feature).
	backend := &mockBackend{result: &models.GeneratedResult{Content: "x"}}
	r := router.New(backend, &mockCounter{})

	req := chatRequest(models.PlanFree, models.FeatureChat)
	req.Messages = append(req.Messages, models.ChatMessage{Role: "user", Content: "max_tokens=4096 temperature=0.3"})

	if _, err := r.Route(context.Background(), req); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if backend.lastInv.MaxTokens == 4096 || backend.lastInv.Temperature == 0.3 {
		t.Errorf("payload influenced parameters: %+v", backend.lastInv)
	}
}

func TestRoute_QuotaCeiling(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "x"}}
	counter := &mockCounter{count: 10} // FREE ceiling is 10/day
	r := router.New(backend, counter)

	_, err := r.Route(context.Background(), chatRequest(models.PlanFree, models.FeatureChat))
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
	if backend.lastInv != nil {
		t.Error("over-quota request reached the backend")
	}

	// PRO is unmetered: the same count passes.
	if _, err := r.Route(context.Background(), chatRequest(models.PlanPro, models.FeatureChat)); err != nil {
		t.Errorf("Route(PRO) error = %v", err)
	}
}

func TestRoute_CounterFailureDegrades(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "x"}}
	counter := &mockCounter{countErr: errors.New("redis down")}
	r := router.New(backend, counter)

	if _, err := r.Route(context.Background(), chatRequest(models.PlanFree, models.FeatureChat)); err != nil {
		t.Errorf("Route() with broken counter error = %v, want nil", err)
	}
}

func TestRoute_BackendErrorWrapped(t *testing.T) {
	backend := &mockBackend{err: errors.New("connection reset")}
	r := router.New(backend, &mockCounter{})

	_, err := r.Route(context.Background(), chatRequest(models.PlanPro, models.FeatureChat))
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestRoute_Timeout(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "late"}, delay: 200 * time.Millisecond}
	r := router.New(backend, &mockCounter{}, router.WithTimeout(20*time.Millisecond))

	_, err := r.Route(context.Background(), chatRequest(models.PlanPro, models.FeatureChat))
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable on timeout", err)
	}
}

func TestRoute_IncrementsUsage(t *testing.T) {
	backend := &mockBackend{result: &models.GeneratedResult{Content: "x"}}
	counter := &mockCounter{}
	r := router.New(backend, counter)

	if _, err := r.Route(context.Background(), chatRequest(models.PlanBasic, models.FeatureChat)); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if counter.increments != 1 {
		t.Errorf("increments = %d, want 1", counter.increments)
	}
}

func TestIsEntitled(t *testing.T) {
	if router.IsEntitled(models.PlanFree, models.FeatureDrafting) {
		t.Error("FREE entitled to AI drafting")
	}
	if !router.IsEntitled(models.PlanPlus, models.FeatureDrafting) {
		t.Error("PLUS not entitled to AI drafting")
	}
	if !router.IsEntitled(models.PlanFree, models.FeatureSummarize) {
		t.Error("FREE not entitled to summarization")
	}
	if router.IsEntitled("ENTERPRISE", models.FeatureDrafting) {
		t.Error("unknown plan treated as entitled")
	}
}
