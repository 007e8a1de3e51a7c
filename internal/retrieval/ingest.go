package retrieval

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
)

// Ingestion chunking bounds. Legal filings are paragraph-heavy, so the
// splitter prefers paragraph boundaries before sentences.
const (
	chunkSize    = 512
	chunkOverlap = 50
)

// DocumentIndexer stores embedded document chunks for later search.
// Both vectorstore implementations satisfy it.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, caseID, id, content string, vector []float64) error
}

// Ingestor chunks, embeds and indexes case documents so the augmenter
// can retrieve them later.
type Ingestor struct {
	embedder contracts.EmbeddingDriver
	indexer  DocumentIndexer
}

// NewIngestor creates a document ingestor.
func NewIngestor(embedder contracts.EmbeddingDriver, indexer DocumentIndexer) *Ingestor {
	return &Ingestor{embedder: embedder, indexer: indexer}
}

// IngestDocument splits a document into chunks and indexes each under
// the case. Chunk ids are derived from docID so re-ingesting the same
// document replaces its chunks.
func (in *Ingestor) IngestDocument(ctx context.Context, caseID, docID, text string) (int, error) {
	chunks := chunkText(text, chunkSize, chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := in.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed document: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed document: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, chunk := range chunks {
		id := fmt.Sprintf("%s#%d", docID, i)
		if err := in.indexer.IndexDocument(ctx, caseID, id, chunk, vectors[i]); err != nil {
			return i, fmt.Errorf("index chunk %s: %w", id, err)
		}
	}

	log.Info().Str("case_id", caseID).Str("doc_id", docID).Int("chunks", len(chunks)).Msg("Document ingested")
	return len(chunks), nil
}

// chunkText splits text into overlapping chunks, trying paragraph,
// line, sentence and word boundaries before falling back to a
// character split.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	for _, sep := range []string{"\n\n", "\n", ". ", " "} {
		parts := strings.Split(text, sep)
		if len(parts) > 1 {
			return mergeSegments(parts, sep, size, overlap)
		}
	}
	return splitByRunes(text, size)
}

// mergeSegments packs split segments back into chunks of at most size
// runes, carrying an overlap tail between neighbours.
func mergeSegments(segments []string, sep string, size, overlap int) []string {
	var chunks []string
	var current strings.Builder
	for _, seg := range segments {
		joined := seg
		if current.Len() > 0 {
			joined = current.String() + sep + seg
		}

		if utf8.RuneCountInString(joined) > size && current.Len() > 0 {
			chunks = append(chunks, current.String())
			tail := overlapTail(current.String(), overlap)
			current.Reset()
			if tail != "" {
				current.WriteString(tail)
				current.WriteString(sep)
			}
			current.WriteString(seg)
			continue
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(seg)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// overlapTail returns the last n runes of s.
func overlapTail(s string, n int) string {
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	return string(runes[len(runes)-n:])
}

// splitByRunes splits text into segments of n runes each.
func splitByRunes(text string, n int) []string {
	runes := []rune(text)
	var segments []string
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[i:end]))
	}
	return segments
}
