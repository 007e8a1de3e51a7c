// Package handlers implements the HTTP handlers for the LexMitra
// backend. Handlers decode the transport shape, resolve the caller's
// plan, and delegate to the query pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/internal/api/middleware"
	"github.com/lexmitra/lexmitra/backend/internal/pipeline"
	"github.com/lexmitra/lexmitra/backend/internal/retrieval"
	"github.com/lexmitra/lexmitra/backend/internal/store"
	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// historyWindow is how many stored messages are replayed into the
// pipeline; the bounder trims further.
const historyWindow = 20

// Handlers holds all handler dependencies. Plans defaults to the data
// store; a hosting repo can swap in a billing-service client. Ingest is
// nil when no embedding driver is configured.
type Handlers struct {
	Store    store.Store
	Plans    contracts.PlanResolver
	Pipeline *pipeline.Pipeline
	Ingest   *retrieval.Ingestor
}

// New creates a Handlers instance.
func New(s store.Store, p *pipeline.Pipeline, ing *retrieval.Ingestor) *Handlers {
	return &Handlers{Store: s, Plans: s, Pipeline: p, Ingest: ing}
}

// queryRequest is the transport shape of POST /api/v1/query.
type queryRequest struct {
	Text         string            `json:"text"`
	Feature      string            `json:"feature"`
	DocumentType string            `json:"document_type,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	ActiveCaseID string            `json:"active_case_id,omitempty"`
	SessionID    string            `json:"session_id,omitempty"`
}

// Query handles POST /api/v1/query.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" && req.DocumentType == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	feature := models.Feature(req.Feature)
	switch feature {
	case models.FeatureChat, models.FeatureSummarize, models.FeatureDrafting:
	case "":
		feature = models.FeatureChat
	default:
		respondError(w, http.StatusBadRequest, "unknown feature: "+req.Feature)
		return
	}

	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)

	plan, err := h.Plans.Resolve(ctx, callerID)
	if err != nil {
		log.Error().Err(err).Str("caller_id", callerID).Msg("Plan resolution failed")
		respondError(w, http.StatusInternalServerError, "cannot resolve subscription")
		return
	}

	query := &models.Query{
		RawText:      req.Text,
		CallerID:     callerID,
		CallerPlan:   plan,
		Feature:      feature,
		DocumentType: req.DocumentType,
		Fields:       req.Fields,
		ActiveCaseID: req.ActiveCaseID,
		SessionID:    req.SessionID,
		History:      h.loadHistory(r, req.SessionID),
	}

	answer, err := h.Pipeline.Handle(ctx, query)
	if err != nil {
		// A refusal is a normal outcome for the transport: the caller
		// gets the refusal text, not an error status.
		var unsafe *models.UnsafeRequestError
		if errors.As(err, &unsafe) {
			respondJSON(w, http.StatusOK, &models.Answer{
				Content:   unsafe.RefusalText,
				IsRefusal: true,
				SessionID: req.SessionID,
			})
			return
		}
		respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}

// ingestRequest is the transport shape of POST /api/v1/cases/{caseID}/documents.
type ingestRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Content    string `json:"content"`
}

// IngestDocument handles POST /api/v1/cases/{caseID}/documents: chunk,
// embed and index a case document so later queries can retrieve it.
func (h *Handlers) IngestDocument(w http.ResponseWriter, r *http.Request) {
	if h.Ingest == nil {
		respondError(w, http.StatusServiceUnavailable, "document indexing is not configured")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}

	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	if !h.caseExists(ctx, caseID) {
		respondError(w, http.StatusNotFound, "case not found: "+caseID)
		return
	}

	chunks, err := h.Ingest.IngestDocument(ctx, caseID, req.DocumentID, req.Content)
	if err != nil {
		log.Error().Err(err).Str("case_id", caseID).Str("doc_id", req.DocumentID).Msg("Document ingestion failed")
		respondError(w, http.StatusInternalServerError, "document could not be indexed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"case_id":     caseID,
		"document_id": req.DocumentID,
		"chunks":      chunks,
	})
}

// caseExists checks both case shapes; lookup failures count as absent.
func (h *Handlers) caseExists(ctx context.Context, caseID string) bool {
	if c, err := h.Store.GetCase(ctx, caseID); err == nil && c != nil {
		return true
	}
	t, err := h.Store.GetCaseTracker(ctx, caseID)
	return err == nil && t != nil
}

// loadHistory replays the session's stored messages as conversation
// turns. A read failure degrades to an empty history.
func (h *Handlers) loadHistory(r *http.Request, sessionID string) []models.Turn {
	if sessionID == "" {
		return nil
	}
	msgs, err := h.Store.ListExchanges(r.Context(), sessionID, historyWindow)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("History load failed, continuing without history")
		return nil
	}
	turns := make([]models.Turn, 0, len(msgs))
	for _, msg := range msgs {
		turns = append(turns, models.Turn{Role: models.Role(msg.Role), Content: msg.Content})
	}
	return turns
}

// respondPipelineError maps the pipeline error taxonomy to HTTP.
func respondPipelineError(w http.ResponseWriter, err error) {
	var unsupported *models.UnsupportedDocumentTypeError
	switch {
	case errors.As(err, &unsupported):
		respondError(w, http.StatusBadRequest, unsupported.Error())
	case errors.Is(err, models.ErrQuotaExceeded):
		respondError(w, http.StatusTooManyRequests, "daily usage limit reached; upgrade your plan or try tomorrow")
	case errors.Is(err, models.ErrNotEntitled):
		respondError(w, http.StatusForbidden, "your plan does not include this feature")
	case errors.Is(err, models.ErrModelUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "the AI service is temporarily unavailable, please try again",
			"resources": models.FallbackResources,
		})
	default:
		log.Error().Err(err).Msg("Query failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
