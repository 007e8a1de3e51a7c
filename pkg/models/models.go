// Package models defines the core data model for the LexMitra guarded
// legal query pipeline: queries, conversation turns, case context,
// retrieval chunks, safety verdicts, model invocations and exchanges.
package models

import (
	"time"
)

// ── Plans & Features ────────────────────────────────────────

// Plan is a caller's subscription tier.
type Plan string

const (
	PlanFree  Plan = "FREE"
	PlanBasic Plan = "BASIC"
	PlanPlus  Plan = "PLUS"
	PlanPro   Plan = "PRO"
)

// Feature identifies what the caller is asking the pipeline to do.
type Feature string

const (
	FeatureChat      Feature = "chat"
	FeatureSummarize Feature = "summarize"
	FeatureDrafting  Feature = "drafting"
)

// ── Conversation ────────────────────────────────────────────

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single entry in a conversation. Append-only; ordering is
// creation order.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Query is an inbound request to the pipeline. Immutable once received.
type Query struct {
	RawText      string            `json:"raw_text"`
	CallerID     string            `json:"caller_id"`
	CallerPlan   Plan              `json:"caller_plan"`
	Feature      Feature           `json:"feature"`
	DocumentType string            `json:"document_type,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	ActiveCaseID string            `json:"active_case_id,omitempty"`
	SessionID    string            `json:"session_id"`
	History      []Turn            `json:"history,omitempty"`
}

// ── Case Context ────────────────────────────────────────────

// CaseContext is the normalized view of an active case, assembled fresh
// per request. All fields optional; never persisted by the assembler.
type CaseContext struct {
	Title           string
	CNR             string
	CaseType        string
	Court           string
	Judge           string
	Parties         string
	Status          string
	Stage           string
	NextHearingDate string
	AISummary       string
}

// CaseRecord is the richer of the two collaborator case shapes.
type CaseRecord struct {
	ID              string
	Title           string
	CNR             string
	CaseType        string
	Court           string
	Judge           string
	Petitioner      string
	Respondent      string
	Status          string
	Stage           string
	NextHearingDate *time.Time
	AISummary       string
}

// CaseTrackerRecord is the legacy case shape: a title plus a free-form
// details blob of "key: value" lines.
type CaseTrackerRecord struct {
	ID      string
	Title   string
	Details string
	Status  string
}

// ── Retrieval ───────────────────────────────────────────────

// RetrievedChunk is one semantically similar prior document fragment,
// produced by the vector-search port. Ranked descending by score.
type RetrievedChunk struct {
	SourceID        string  `json:"source_id"`
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"` // 0..1
}

// ── Safety ──────────────────────────────────────────────────

// ViolationType classifies a disallowed request.
type ViolationType string

const (
	ViolationEvidenceTampering    ViolationType = "evidence_tampering"
	ViolationWitnessFabrication   ViolationType = "witness_fabrication"
	ViolationCourtBribery         ViolationType = "court_bribery"
	ViolationFraudForgery         ViolationType = "fraud_forgery"
	ViolationPerjury              ViolationType = "perjury"
	ViolationUnauthorizedPractice ViolationType = "unauthorized_practice"
	ViolationConflictOfInterest   ViolationType = "conflict_of_interest"
	ViolationBlackmailExtortion   ViolationType = "blackmail_extortion"
	ViolationMoneyLaundering      ViolationType = "money_laundering"
	ViolationIllegalActivity      ViolationType = "illegal_activity"
)

// SafetyVerdict is the terminal result of the safety screen. If IsSafe
// is false no later stage executes.
type SafetyVerdict struct {
	IsSafe        bool          `json:"is_safe"`
	ViolationType ViolationType `json:"violation_type,omitempty"`
	RefusalText   string        `json:"refusal_text,omitempty"`
}

// ── Model Invocation ────────────────────────────────────────

// ChatMessage is one entry of a model invocation payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInvocation is the exact payload sent to an AI backend.
type ModelInvocation struct {
	SystemPrompt string        `json:"system_prompt"`
	Messages     []ChatMessage `json:"messages"`
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	Temperature  float64       `json:"temperature"`
	Plan         Plan          `json:"plan"`
	Feature      Feature       `json:"feature"`
	CallerID     string        `json:"caller_id"`
}

// GeneratedResult is the output of the model router or the template
// fallback engine.
type GeneratedResult struct {
	Content       string   `json:"content"`
	Citations     []string `json:"citations,omitempty"`
	IsAIGenerated bool     `json:"is_ai_generated"`
}

// ── Citations ───────────────────────────────────────────────

// CaseLawReference is one entry of the local landmark citation table.
type CaseLawReference struct {
	ID       string `json:"id"`
	Citation string `json:"citation"`
	Name     string `json:"name"`
	Summary  string `json:"summary,omitempty"`
}

// CitationMatch is the verifier's result for a single citation string.
// Unmatched citations are flagged, not discarded.
type CitationMatch struct {
	Citation  string            `json:"citation"`
	Matched   bool              `json:"matched"`
	Reference *CaseLawReference `json:"reference,omitempty"`
}

// ── Exchange ────────────────────────────────────────────────

// Exchange is the unit handed to the exchange persister: one completed
// user/assistant turn pair plus metadata. Created once per request,
// never mutated, persisted exactly once.
type Exchange struct {
	SessionID     string `json:"session_id"`
	CallerID      string `json:"caller_id"`
	CaseID        string `json:"case_id,omitempty"`
	UserTurn      Turn   `json:"user_turn"`
	AssistantTurn Turn   `json:"assistant_turn"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

// PersistReceipt identifies a durably written exchange.
type PersistReceipt struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
}

// ── Pipeline Answer ─────────────────────────────────────────

// Answer is the pipeline's response to the caller.
type Answer struct {
	Content        string          `json:"content"`
	Citations      []CitationMatch `json:"citations,omitempty"`
	IsAIGenerated  bool            `json:"is_ai_generated"`
	IsRefusal      bool            `json:"is_refusal,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	MessageID      string          `json:"message_id,omitempty"`
	PersistWarning string          `json:"persist_warning,omitempty"`
}
