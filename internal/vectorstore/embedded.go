// Package vectorstore provides document searchers for retrieval.
// Ships: embedded (in-memory brute-force), pgvector (user-provided PG).
package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

type embeddedDoc struct {
	id      string
	caseID  string
	content string
	vector  []float64
}

// EmbeddedSearcher is a lightweight in-memory document searcher using
// brute-force cosine similarity. Suitable for development and tests;
// production deployments use pgvector.
type EmbeddedSearcher struct {
	mu   sync.RWMutex
	docs map[string]embeddedDoc // key: caseID:id
}

// NewEmbeddedSearcher creates an in-memory document searcher.
func NewEmbeddedSearcher() *EmbeddedSearcher {
	log.Info().Msg("Embedded document searcher initialized")
	return &EmbeddedSearcher{docs: make(map[string]embeddedDoc)}
}

func (s *EmbeddedSearcher) Kind() string { return "embedded" }

// IndexDocument stores one embedded document chunk for a case.
func (s *EmbeddedSearcher) IndexDocument(_ context.Context, caseID, id, content string, vector []float64) error {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	s.docs[caseID+":"+id] = embeddedDoc{id: id, caseID: caseID, content: content, vector: vector}
	s.mu.Unlock()
	return nil
}

// TopK scans the case's chunks and returns the k most similar by
// cosine similarity, dropping anything below minScore.
func (s *EmbeddedSearcher) TopK(_ context.Context, caseID string, vector []float64, k int, minScore float64) ([]models.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []models.RetrievedChunk
	for _, d := range s.docs {
		if d.caseID != caseID {
			continue
		}
		score := cosine(vector, d.vector)
		if score < minScore {
			continue
		}
		chunks = append(chunks, models.RetrievedChunk{SourceID: d.id, Text: d.content, SimilarityScore: score})
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].SimilarityScore > chunks[j].SimilarityScore })
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

// Delete removes document chunks for a case.
func (s *EmbeddedSearcher) Delete(_ context.Context, caseID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, caseID+":"+id)
	}
	return nil
}

func (s *EmbeddedSearcher) HealthCheck(context.Context) error { return nil }

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
