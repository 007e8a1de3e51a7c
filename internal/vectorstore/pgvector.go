package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// PgvectorSearcher searches case document embeddings stored in
// PostgreSQL with the pgvector extension. Users must provide a
// PostgreSQL instance with pgvector installed; the connection URL is
// the same DATABASE_URL the exchange store uses.
type PgvectorSearcher struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewPgvectorSearcher creates a pgvector-backed document searcher over
// an existing pool. It creates the required table and index if they
// don't exist.
func NewPgvectorSearcher(ctx context.Context, pool *pgxpool.Pool, dimensions int) (*PgvectorSearcher, error) {
	s := &PgvectorSearcher{pool: pool, dimensions: dimensions}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("pgvector migrate: %w", err)
	}

	log.Info().Int("dims", dimensions).Msg("pgvector document searcher initialized")
	return s, nil
}

func (s *PgvectorSearcher) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS case_documents (
			id         TEXT NOT NULL,
			case_id    TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (case_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_case_documents_case ON case_documents (case_id);
	`, s.dimensions)

	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PgvectorSearcher) Kind() string { return "pgvector" }

// IndexDocument stores (or replaces) one embedded document chunk for a
// case. Ingestion callers pass an empty id to mint one.
func (s *PgvectorSearcher) IndexDocument(ctx context.Context, caseID, id, content string, vector []float64) error {
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_documents (id, case_id, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (case_id, id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		id, caseID, content, pgvectorArray(vector), time.Now())
	return err
}

// TopK returns the k most similar chunks for the case by cosine
// similarity, dropping anything below minScore. Results come back
// descending by score.
func (s *PgvectorSearcher) TopK(ctx context.Context, caseID string, vector []float64, k int, minScore float64) ([]models.RetrievedChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, content, 1 - (embedding <=> $1) AS score
		FROM case_documents
		WHERE case_id = $2 AND 1 - (embedding <=> $1) >= $3
		ORDER BY embedding <=> $1
		LIMIT $4`,
		pgvectorArray(vector), caseID, minScore, k)
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}
	defer rows.Close()

	var chunks []models.RetrievedChunk
	for rows.Next() {
		var c models.RetrievedChunk
		if err := rows.Scan(&c.SourceID, &c.Text, &c.SimilarityScore); err != nil {
			return nil, fmt.Errorf("pgvector scan: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Delete removes document chunks for a case, e.g. when a case is
// purged.
func (s *PgvectorSearcher) Delete(ctx context.Context, caseID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, "DELETE FROM case_documents WHERE case_id = $1 AND id = ANY($2)", caseID, ids)
	return err
}

func (s *PgvectorSearcher) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// pgvectorArray converts a float64 slice to pgvector's text format: [1.0,2.0,3.0]
func pgvectorArray(v []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(fmt.Sprintf("%g", f))
	}
	sb.WriteByte(']')
	return sb.String()
}
