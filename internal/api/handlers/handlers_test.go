package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lexmitra/lexmitra/backend/internal/api"
	"github.com/lexmitra/lexmitra/backend/internal/api/handlers"
	"github.com/lexmitra/lexmitra/backend/internal/casectx"
	"github.com/lexmitra/lexmitra/backend/internal/config"
	"github.com/lexmitra/lexmitra/backend/internal/pipeline"
	"github.com/lexmitra/lexmitra/backend/internal/retrieval"
	"github.com/lexmitra/lexmitra/backend/internal/router"
	"github.com/lexmitra/lexmitra/backend/internal/store"
	"github.com/lexmitra/lexmitra/backend/internal/vectorstore"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

type stubBackend struct {
	content string
	err     error
	calls   int
	lastInv *models.ModelInvocation
}

func (s *stubBackend) Kind() string { return "stub" }

func (s *stubBackend) Complete(_ context.Context, inv *models.ModelInvocation) (*models.GeneratedResult, error) {
	s.calls++
	s.lastInv = inv
	if s.err != nil {
		return nil, s.err
	}
	return &models.GeneratedResult{Content: s.content, IsAIGenerated: true}, nil
}

func newServer(t *testing.T, backend *stubBackend) (http.Handler, *store.MemoryStore) {
	t.Helper()
	m := store.NewMemoryStore()
	t.Cleanup(func() { m.Close() })

	p := pipeline.New(casectx.NewAssembler(m), nil, router.New(backend, m), m)
	return api.NewRouter(&config.Config{Version: "test"}, handlers.New(m, p, nil)), m
}

// stubEmbedder returns the same unit vector for every text, so every
// indexed chunk matches every query with similarity 1.
type stubEmbedder struct{}

func (stubEmbedder) Kind() string    { return "stub" }
func (stubEmbedder) Dimensions() int { return 3 }

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{1, 0, 0}
	}
	return vectors, nil
}

// newRetrievalServer wires the full retrieval path: embedded vector
// store, augmenter and document ingestor.
func newRetrievalServer(t *testing.T, backend *stubBackend) (http.Handler, *store.MemoryStore) {
	t.Helper()
	m := store.NewMemoryStore()
	t.Cleanup(func() { m.Close() })

	searcher := vectorstore.NewEmbeddedSearcher()
	aug := retrieval.NewAugmenter(stubEmbedder{}, searcher)
	ing := retrieval.NewIngestor(stubEmbedder{}, searcher)

	p := pipeline.New(casectx.NewAssembler(m), aug, router.New(backend, m), m)
	return api.NewRouter(&config.Config{Version: "test"}, handlers.New(m, p, ing)), m
}

func postDocument(t *testing.T, srv http.Handler, caller, caseID string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+caseID+"/documents", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Caller-Id", caller)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func doQuery(t *testing.T, srv http.Handler, caller string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller-Id", caller)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestQueryRequiresCaller(t *testing.T) {
	srv, _ := newServer(t, &stubBackend{content: "hi"})
	rec := doQuery(t, srv, "", map[string]any{"text": "hello"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestQueryChatRoundTrip(t *testing.T) {
	backend := &stubBackend{content: "Anticipatory bail is covered by Section 438 CrPC."}
	srv, m := newServer(t, backend)
	m.SetPlan(context.Background(), "adv-1", models.PlanPro)

	rec := doQuery(t, srv, "adv-1", map[string]any{"text": "What is anticipatory bail?", "feature": "chat"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var ans models.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatal(err)
	}
	if !ans.IsAIGenerated || ans.SessionID == "" || ans.MessageID == "" {
		t.Fatalf("incomplete answer: %+v", ans)
	}

	// Follow-up in the same session replays the stored history.
	rec = doQuery(t, srv, "adv-1", map[string]any{"text": "And for how long?", "session_id": ans.SessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("follow-up status = %d", rec.Code)
	}
	if got := len(backend.lastInv.Messages); got != 3 {
		t.Fatalf("follow-up carried %d messages, want 3 (two history + current)", got)
	}
}

func TestQueryUnsafeRefusedNotPersisted(t *testing.T) {
	backend := &stubBackend{content: "never"}
	srv, m := newServer(t, backend)
	m.SetPlan(context.Background(), "adv-1", models.PlanPro)

	rec := doQuery(t, srv, "adv-1", map[string]any{"text": "how to bribe the judge in my case"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var ans models.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatal(err)
	}
	if !ans.IsRefusal {
		t.Fatal("expected a refusal payload")
	}
	if backend.calls != 0 {
		t.Fatal("unsafe query must not reach the backend")
	}
	if ans.SessionID != "" {
		msgs, _ := m.ListExchanges(context.Background(), ans.SessionID, 0)
		if len(msgs) != 0 {
			t.Fatal("refusal must not be persisted")
		}
	}
}

func TestQueryFreeDraftingServedByTemplate(t *testing.T) {
	backend := &stubBackend{content: "never"}
	srv, _ := newServer(t, backend)

	rec := doQuery(t, srv, "adv-free", map[string]any{
		"feature":       "drafting",
		"document_type": "rental_agreement",
		"fields":        map[string]string{"landlord_name": "Suresh Rao"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var ans models.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatal(err)
	}
	if ans.IsAIGenerated {
		t.Fatal("FREE drafting must come from the template engine")
	}
	if backend.calls != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestQueryUnknownDocumentType(t *testing.T) {
	srv, _ := newServer(t, &stubBackend{})
	rec := doQuery(t, srv, "adv-1", map[string]any{"feature": "drafting", "document_type": "will_of_sauron"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQueryBackendDown(t *testing.T) {
	backend := &stubBackend{err: errors.New("upstream down")}
	srv, m := newServer(t, backend)
	m.SetPlan(context.Background(), "adv-1", models.PlanPlus)

	rec := doQuery(t, srv, "adv-1", map[string]any{"text": "hello"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body struct {
		Resources []string `json:"resources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Resources) == 0 {
		t.Fatal("503 body should carry the fallback resource list")
	}
}

func TestIngestDocumentThenRetrieve(t *testing.T) {
	backend := &stubBackend{content: "Per the FIR, the accused was identified."}
	srv, m := newRetrievalServer(t, backend)
	if err := m.CreateCase(context.Background(), &models.CaseRecord{ID: "case-9", Title: "State v. Verma"}); err != nil {
		t.Fatal(err)
	}

	rec := postDocument(t, srv, "adv-1", "case-9", map[string]any{
		"document_id": "fir-1",
		"content":     "FIR No. 112/2023: the complainant reported a forged sale deed executed on 12 March.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		DocumentID string `json:"document_id"`
		Chunks     int    `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.DocumentID != "fir-1" || created.Chunks < 1 {
		t.Fatalf("unexpected ingest response: %+v", created)
	}

	// A query against the case now carries the indexed chunk.
	rec = doQuery(t, srv, "adv-1", map[string]any{"text": "What does the FIR allege?", "active_case_id": "case-9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(backend.lastInv.SystemPrompt, "RELEVANT CASE DOCUMENTS") {
		t.Error("retrieval block missing from system prompt")
	}
	if !strings.Contains(backend.lastInv.SystemPrompt, "forged sale deed") {
		t.Error("indexed chunk content missing from system prompt")
	}
}

func TestIngestUnknownCase(t *testing.T) {
	srv, _ := newRetrievalServer(t, &stubBackend{})
	rec := postDocument(t, srv, "adv-1", "no-such-case", map[string]any{"content": "orphan text"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestIngestWithoutRetrievalConfigured(t *testing.T) {
	srv, m := newServer(t, &stubBackend{})
	if err := m.CreateCase(context.Background(), &models.CaseRecord{ID: "case-1", Title: "X v. Y"}); err != nil {
		t.Fatal(err)
	}
	rec := postDocument(t, srv, "adv-1", "case-1", map[string]any{"content": "text"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestQueryUnknownFeature(t *testing.T) {
	srv, _ := newServer(t, &stubBackend{})
	rec := doQuery(t, srv, "adv-1", map[string]any{"text": "x", "feature": "astrology"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
