// Package store — PostgreSQL Store implementation on pgx.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// PostgresStore implements Store backed by PostgreSQL. The connection
// URL comes from DATABASE_URL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and migrates. The returned store
// owns the pool.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Msg("postgres store initialized")
	return s, nil
}

// Pool exposes the underlying pool so the pgvector searcher can share
// the connection.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id              TEXT PRIMARY KEY,
			session_id      TEXT NOT NULL,
			caller_id       TEXT NOT NULL,
			case_id         TEXT NOT NULL DEFAULT '',
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
			seq             BIGSERIAL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id, seq);

		CREATE TABLE IF NOT EXISTS cases (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL DEFAULT '',
			cnr               TEXT NOT NULL DEFAULT '',
			case_type         TEXT NOT NULL DEFAULT '',
			court             TEXT NOT NULL DEFAULT '',
			judge             TEXT NOT NULL DEFAULT '',
			petitioner        TEXT NOT NULL DEFAULT '',
			respondent        TEXT NOT NULL DEFAULT '',
			status            TEXT NOT NULL DEFAULT '',
			stage             TEXT NOT NULL DEFAULT '',
			next_hearing_date TIMESTAMPTZ,
			ai_summary        TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS case_trackers (
			id      TEXT PRIMARY KEY,
			title   TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			status  TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS usage_counts (
			caller_id TEXT NOT NULL,
			feature   TEXT NOT NULL,
			day       TEXT NOT NULL,
			count     INT NOT NULL DEFAULT 0,
			PRIMARY KEY (caller_id, feature, day)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			caller_id TEXT PRIMARY KEY,
			plan      TEXT NOT NULL
		);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// ── Exchange Store ──────────────────────────────────────────

// SaveExchange writes both turns in one transaction so a half-written
// exchange never becomes visible.
func (s *PostgresStore) SaveExchange(ctx context.Context, ex *models.Exchange) (*models.PersistReceipt, error) {
	sessionID := ex.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := uuid.NewString()
	assistantID := uuid.NewString()
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("save exchange: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO chat_messages (id, session_id, caller_id, case_id, role, content, is_ai_generated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, insert, userID, sessionID, ex.CallerID, ex.CaseID, string(models.RoleUser), ex.UserTurn.Content, false, now); err != nil {
		return nil, fmt.Errorf("save exchange: user turn: %w", err)
	}
	if _, err := tx.Exec(ctx, insert, assistantID, sessionID, ex.CallerID, ex.CaseID, string(models.RoleAssistant), ex.AssistantTurn.Content, ex.IsAIGenerated, now); err != nil {
		return nil, fmt.Errorf("save exchange: assistant turn: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("save exchange: commit: %w", err)
	}

	return &models.PersistReceipt{SessionID: sessionID, MessageID: assistantID}, nil
}

func (s *PostgresStore) ListExchanges(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	query := `SELECT role, content FROM chat_messages WHERE session_id = $1 ORDER BY seq`
	args := []any{sessionID}
	if limit > 0 {
		query = `SELECT role, content FROM (
			SELECT role, content, seq FROM chat_messages WHERE session_id = $1 ORDER BY seq DESC LIMIT $2
		) tail ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("list exchanges: scan: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) PurgeMessagesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge messages: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ── Case Store ──────────────────────────────────────────────

func (s *PostgresStore) GetCase(ctx context.Context, id string) (*models.CaseRecord, error) {
	var c models.CaseRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, cnr, case_type, court, judge, petitioner, respondent, status, stage, next_hearing_date, ai_summary
		FROM cases WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.CNR, &c.CaseType, &c.Court, &c.Judge, &c.Petitioner, &c.Respondent, &c.Status, &c.Stage, &c.NextHearingDate, &c.AISummary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) GetCaseTracker(ctx context.Context, id string) (*models.CaseTrackerRecord, error) {
	var t models.CaseTrackerRecord
	err := s.pool.QueryRow(ctx, `SELECT id, title, details, status FROM case_trackers WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Details, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case tracker: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) CreateCase(ctx context.Context, c *models.CaseRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cases (id, title, cnr, case_type, court, judge, petitioner, respondent, status, stage, next_hearing_date, ai_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Title, c.CNR, c.CaseType, c.Court, c.Judge, c.Petitioner, c.Respondent, c.Status, c.Stage, c.NextHearingDate, c.AISummary)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateCaseTracker(ctx context.Context, t *models.CaseTrackerRecord) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO case_trackers (id, title, details, status) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Title, t.Details, t.Status)
	if err != nil {
		return fmt.Errorf("create case tracker: %w", err)
	}
	return nil
}

// ── Usage Store ─────────────────────────────────────────────

func (s *PostgresStore) Count(ctx context.Context, callerID string, feature models.Feature) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count FROM usage_counts WHERE caller_id = $1 AND feature = $2 AND day = $3`,
		callerID, string(feature), usageDay(time.Now())).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Increment(ctx context.Context, callerID string, feature models.Feature) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_counts (caller_id, feature, day, count) VALUES ($1, $2, $3, 1)
		ON CONFLICT (caller_id, feature, day) DO UPDATE SET count = usage_counts.count + 1`,
		callerID, string(feature), usageDay(time.Now()))
	if err != nil {
		return fmt.Errorf("usage increment: %w", err)
	}
	return nil
}

// ── Subscription Store ──────────────────────────────────────

func (s *PostgresStore) Resolve(ctx context.Context, callerID string) (models.Plan, error) {
	var plan string
	err := s.pool.QueryRow(ctx, `SELECT plan FROM subscriptions WHERE caller_id = $1`, callerID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve plan: %w", err)
	}
	return models.Plan(plan), nil
}

func (s *PostgresStore) SetPlan(ctx context.Context, callerID string, plan models.Plan) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (caller_id, plan) VALUES ($1, $2)
		ON CONFLICT (caller_id) DO UPDATE SET plan = EXCLUDED.plan`,
		callerID, string(plan))
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	return nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
