package retrieval_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lexmitra/lexmitra/backend/internal/retrieval"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

type mockEmbedder struct {
	vectors [][]float64
	err     error
	calls   int
}

func (m *mockEmbedder) Kind() string    { return "mock" }
func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors, nil
}

type mockSearcher struct {
	chunks   []models.RetrievedChunk
	err      error
	calls    int
	lastCase string
	lastK    int
	lastMin  float64
}

func (m *mockSearcher) TopK(ctx context.Context, caseID string, vector []float64, k int, minScore float64) ([]models.RetrievedChunk, error) {
	m.calls++
	m.lastCase = caseID
	m.lastK = k
	m.lastMin = minScore
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

func TestAugmentSkipsWithoutCase(t *testing.T) {
	emb := &mockEmbedder{}
	srch := &mockSearcher{}
	a := retrieval.NewAugmenter(emb, srch)

	block, chunks, err := a.Augment(context.Background(), "what is the hearing date", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block != "" || chunks != nil {
		t.Fatalf("expected empty augmentation, got %q / %v", block, chunks)
	}
	if emb.calls != 0 || srch.calls != 0 {
		t.Fatal("ports must not be touched when no case is active")
	}
}

func TestAugmentSearchBounds(t *testing.T) {
	emb := &mockEmbedder{vectors: [][]float64{{0.1, 0.2, 0.3}}}
	srch := &mockSearcher{chunks: []models.RetrievedChunk{
		{SourceID: "doc-9", Text: "Bail order dated 12 March.", SimilarityScore: 0.91},
		{SourceID: "doc-2", Text: "FIR copy.", SimilarityScore: 0.55},
	}}
	a := retrieval.NewAugmenter(emb, srch)

	block, chunks, err := a.Augment(context.Background(), "bail status", "case-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srch.lastCase != "case-42" {
		t.Fatalf("search scoped to %q, want case-42", srch.lastCase)
	}
	if srch.lastK != retrieval.TopK {
		t.Fatalf("k = %d, want %d", srch.lastK, retrieval.TopK)
	}
	if srch.lastMin != retrieval.MinScore {
		t.Fatalf("minScore = %v, want %v", srch.lastMin, retrieval.MinScore)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, want := range []string{"[Source: doc-9]", "[Source: doc-2]", "Bail order dated 12 March."} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q", want)
		}
	}
	if strings.Index(block, "doc-9") > strings.Index(block, "doc-2") {
		t.Error("chunks must appear in descending score order")
	}
}

func TestAugmentZeroMatchesIsEmpty(t *testing.T) {
	emb := &mockEmbedder{vectors: [][]float64{{1, 0, 0}}}
	srch := &mockSearcher{}
	a := retrieval.NewAugmenter(emb, srch)

	block, chunks, err := a.Augment(context.Background(), "anything", "case-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block != "" || len(chunks) != 0 {
		t.Fatalf("zero matches must yield empty augmentation, got %q", block)
	}
}

func TestAugmentDegradesOnEmbedFailure(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("quota exhausted")}
	srch := &mockSearcher{}
	a := retrieval.NewAugmenter(emb, srch)

	block, chunks, err := a.Augment(context.Background(), "anything", "case-7")
	if !errors.Is(err, models.ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
	if block != "" || chunks != nil {
		t.Fatal("failed retrieval must not produce partial context")
	}
	if srch.calls != 0 {
		t.Fatal("search must not run when embedding failed")
	}
}

func TestAugmentDegradesOnSearchFailure(t *testing.T) {
	emb := &mockEmbedder{vectors: [][]float64{{1, 0, 0}}}
	srch := &mockSearcher{err: errors.New("connection refused")}
	a := retrieval.NewAugmenter(emb, srch)

	block, _, err := a.Augment(context.Background(), "anything", "case-7")
	if !errors.Is(err, models.ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
	if block != "" {
		t.Fatal("failed retrieval must not produce partial context")
	}
}
