// Package retrieval augments a query with semantically similar prior
// case documents.
//
// Retrieval is scoped to case-linked documents only: with no active
// case the stage is skipped entirely, not merely empty. This is a
// deliberate scope limit, not an oversight.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// Retrieval bounds: at most TopK chunks, each clearing MinScore.
const (
	TopK     = 5
	MinScore = 0.3
)

// Augmenter formats retrieved chunks into a grounding context block.
type Augmenter struct {
	embedder contracts.EmbeddingDriver
	searcher contracts.VectorSearcher
}

// NewAugmenter creates a retrieval augmenter.
func NewAugmenter(embedder contracts.EmbeddingDriver, searcher contracts.VectorSearcher) *Augmenter {
	return &Augmenter{embedder: embedder, searcher: searcher}
}

// Augment embeds queryText and searches the case's documents. Returns
// the formatted context block and the raw chunks (for citation
// bookkeeping). Empty results are empty, never padded.
//
// Port failures are logged as warnings and degrade to "no
// augmentation"; the query proceeds without retrieval rather than
// aborting.
func (a *Augmenter) Augment(ctx context.Context, queryText, caseID string) (string, []models.RetrievedChunk, error) {
	if caseID == "" {
		return "", nil, nil
	}

	vectors, err := a.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		log.Warn().Err(err).Str("case_id", caseID).Msg("Query embedding failed, continuing without retrieval")
		return "", nil, fmt.Errorf("%w: embed query: %v", models.ErrContextUnavailable, err)
	}
	if len(vectors) == 0 {
		log.Warn().Str("case_id", caseID).Msg("Embedding driver returned no vector, continuing without retrieval")
		return "", nil, fmt.Errorf("%w: no embedding returned", models.ErrContextUnavailable)
	}

	chunks, err := a.searcher.TopK(ctx, caseID, vectors[0], TopK, MinScore)
	if err != nil {
		log.Warn().Err(err).Str("case_id", caseID).Msg("Vector search failed, continuing without retrieval")
		return "", nil, fmt.Errorf("%w: vector search: %v", models.ErrContextUnavailable, err)
	}
	if len(chunks) == 0 {
		return "", nil, nil
	}

	return Format(chunks), chunks, nil
}

// Format renders chunks (already ordered descending by score) into a
// single context block, each entry tagged with its source id so the
// citation verifier can confirm linkage later.
func Format(chunks []models.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("RELEVANT CASE DOCUMENTS:\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "\n%d. [Source: %s] (similarity %.2f)\n%s\n", i+1, chunk.SourceID, chunk.SimilarityScore, chunk.Text)
	}
	sb.WriteString("\nGround your answer in these documents where applicable and mention the source id when you rely on one.")
	return sb.String()
}
