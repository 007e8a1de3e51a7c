// Package store — in-memory Store implementation.
// Used as a fallback when PostgreSQL is not available (local dev, tests).
// Supports file-based snapshot persistence so data survives restarts.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// storedMessage is one persisted chat message with its metadata.
type storedMessage struct {
	ID            string      `json:"id"`
	SessionID     string      `json:"session_id"`
	CallerID      string      `json:"caller_id"`
	CaseID        string      `json:"case_id,omitempty"`
	Role          models.Role `json:"role"`
	Content       string      `json:"content"`
	IsAIGenerated bool        `json:"is_ai_generated"`
	CreatedAt     time.Time   `json:"created_at"`
}

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Messages      map[string][]*storedMessage          `json:"messages"` // key: session_id
	Cases         map[string]*models.CaseRecord        `json:"cases"`
	Trackers      map[string]*models.CaseTrackerRecord `json:"trackers"`
	Usage         map[string]int                       `json:"usage"` // key: caller:feature:day
	Subscriptions map[string]models.Plan               `json:"subscriptions"`
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu            sync.RWMutex
	messages      map[string][]*storedMessage          // key: session_id, insertion order
	cases         map[string]*models.CaseRecord        // key: id
	trackers      map[string]*models.CaseTrackerRecord // key: id
	usage         map[string]int                       // key: caller:feature:day
	subscriptions map[string]models.Plan               // key: caller_id

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals background goroutines to stop
}

// NewMemoryStore creates a new in-memory store.
// If LEXMITRA_DATA_DIR is set, data is persisted to a JSON file in that
// directory. Otherwise the store is purely ephemeral.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		messages:      make(map[string][]*storedMessage),
		cases:         make(map[string]*models.CaseRecord),
		trackers:      make(map[string]*models.CaseTrackerRecord),
		usage:         make(map[string]int),
		subscriptions: make(map[string]models.Plan),
		saveCh:        make(chan struct{}, 1),
		doneCh:        make(chan struct{}),
	}

	if dataDir := os.Getenv("LEXMITRA_DATA_DIR"); dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
		} else {
			m.snapshotPath = filepath.Join(dataDir, "data.json")
			m.load()
			go m.saveLoop()
		}
	}

	return m
}

// ── Exchange Store ──────────────────────────────────────────

func (m *MemoryStore) SaveExchange(_ context.Context, ex *models.Exchange) (*models.PersistReceipt, error) {
	sessionID := ex.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	user := &storedMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CallerID:  ex.CallerID,
		CaseID:    ex.CaseID,
		Role:      models.RoleUser,
		Content:   ex.UserTurn.Content,
		CreatedAt: now,
	}
	assistant := &storedMessage{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		CallerID:      ex.CallerID,
		CaseID:        ex.CaseID,
		Role:          models.RoleAssistant,
		Content:       ex.AssistantTurn.Content,
		IsAIGenerated: ex.IsAIGenerated,
		CreatedAt:     now,
	}

	m.mu.Lock()
	m.messages[sessionID] = append(m.messages[sessionID], user, assistant)
	m.mu.Unlock()
	m.scheduleSave()

	return &models.PersistReceipt{SessionID: sessionID, MessageID: assistant.ID}, nil
}

func (m *MemoryStore) ListExchanges(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, models.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out, nil
}

func (m *MemoryStore) PurgeMessagesBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for sessionID, msgs := range m.messages {
		kept := msgs[:0]
		for _, msg := range msgs {
			if msg.CreatedAt.Before(cutoff) {
				purged++
				continue
			}
			kept = append(kept, msg)
		}
		if len(kept) == 0 {
			delete(m.messages, sessionID)
		} else {
			m.messages[sessionID] = kept
		}
	}
	if purged > 0 {
		m.scheduleSave()
	}
	return purged, nil
}

// ── Case Store ──────────────────────────────────────────────

func (m *MemoryStore) GetCase(_ context.Context, id string) (*models.CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) GetCaseTracker(_ context.Context, id string) (*models.CaseTrackerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trackers[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) CreateCase(_ context.Context, c *models.CaseRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	m.mu.Lock()
	m.cases[c.ID] = &cp
	m.mu.Unlock()
	m.scheduleSave()
	return nil
}

func (m *MemoryStore) CreateCaseTracker(_ context.Context, t *models.CaseTrackerRecord) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	m.mu.Lock()
	m.trackers[t.ID] = &cp
	m.mu.Unlock()
	m.scheduleSave()
	return nil
}

// ── Usage Store ─────────────────────────────────────────────

func usageKey(callerID string, feature models.Feature, day string) string {
	return callerID + ":" + string(feature) + ":" + day
}

func (m *MemoryStore) Count(_ context.Context, callerID string, feature models.Feature) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage[usageKey(callerID, feature, usageDay(time.Now()))], nil
}

func (m *MemoryStore) Increment(_ context.Context, callerID string, feature models.Feature) error {
	m.mu.Lock()
	m.usage[usageKey(callerID, feature, usageDay(time.Now()))]++
	m.mu.Unlock()
	m.scheduleSave()
	return nil
}

// ── Subscription Store ──────────────────────────────────────

// Resolve returns the caller's plan, defaulting to FREE for callers
// with no subscription record.
func (m *MemoryStore) Resolve(_ context.Context, callerID string) (models.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if plan, ok := m.subscriptions[callerID]; ok {
		return plan, nil
	}
	return models.PlanFree, nil
}

func (m *MemoryStore) SetPlan(_ context.Context, callerID string, plan models.Plan) error {
	m.mu.Lock()
	m.subscriptions[callerID] = plan
	m.mu.Unlock()
	m.scheduleSave()
	return nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	close(m.doneCh)
	if m.snapshotPath != "" {
		m.save()
	}
	return nil
}

// ── Snapshot persistence ────────────────────────────────────

// scheduleSave requests a debounced snapshot write. Non-blocking.
func (m *MemoryStore) scheduleSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
	}
}

func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.saveCh:
			time.Sleep(time.Second) // coalesce bursts
			m.save()
		case <-m.doneCh:
			return
		}
	}
}

func (m *MemoryStore) save() {
	m.mu.RLock()
	snap := snapshot{
		Messages:      m.messages,
		Cases:         m.cases,
		Trackers:      m.trackers,
		Usage:         m.usage,
		Subscriptions: m.subscriptions,
	}
	data, err := json.Marshal(&snap)
	m.mu.RUnlock()
	if err != nil {
		log.Error().Err(err).Msg("Snapshot marshal failed")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		log.Error().Err(err).Str("path", tmp).Msg("Snapshot write failed")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Snapshot rename failed")
	}
}

func (m *MemoryStore) load() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Cannot read snapshot")
		}
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Corrupt snapshot, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.Messages != nil {
		m.messages = snap.Messages
	}
	if snap.Cases != nil {
		m.cases = snap.Cases
	}
	if snap.Trackers != nil {
		m.trackers = snap.Trackers
	}
	if snap.Usage != nil {
		m.usage = snap.Usage
	}
	if snap.Subscriptions != nil {
		m.subscriptions = snap.Subscriptions
	}
	log.Info().Str("path", m.snapshotPath).Msg("Snapshot loaded")
}
