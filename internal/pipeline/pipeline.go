// Package pipeline orchestrates a guarded legal query end to end:
// safety screen, context assembly, history bounding, model routing,
// citation verification and exchange persistence.
//
// The state machine is strictly forward. An unsafe verdict terminates
// the request before any generation or persistence; a routing failure
// degrades to the template engine for drafting and to a surfaced error
// otherwise.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lexmitra/lexmitra/backend/internal/casectx"
	"github.com/lexmitra/lexmitra/backend/internal/citations"
	"github.com/lexmitra/lexmitra/backend/internal/history"
	"github.com/lexmitra/lexmitra/backend/internal/retrieval"
	"github.com/lexmitra/lexmitra/backend/internal/router"
	"github.com/lexmitra/lexmitra/backend/internal/safety"
	"github.com/lexmitra/lexmitra/backend/internal/templates"
	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

var tracer = otel.Tracer("lexmitra-pipeline")

const basePrompt = `You are LexMitra, an AI legal assistant for Indian law. Answer
accurately, cite statutes and case law where relevant, and remind the
user that your output is informational, not legal advice.`

// Pipeline wires the stages together. Construct with New; a nil
// augmenter disables retrieval (no vector store configured).
type Pipeline struct {
	cases     *casectx.Assembler
	augmenter *retrieval.Augmenter
	router    *router.TieredRouter
	exchanges contracts.ExchangeStore
}

// New creates a pipeline. cases, router and exchanges are required;
// augmenter may be nil.
func New(cases *casectx.Assembler, augmenter *retrieval.Augmenter, r *router.TieredRouter, exchanges contracts.ExchangeStore) *Pipeline {
	return &Pipeline{cases: cases, augmenter: augmenter, router: r, exchanges: exchanges}
}

// Handle runs one query through the pipeline.
//
// Returned errors are from the models taxonomy: an unsafe query
// surfaces as *models.UnsafeRequestError carrying the refusal text,
// ErrQuotaExceeded and ErrModelUnavailable surface when no fallback
// path exists, and *models.UnsupportedDocumentTypeError when a drafting
// request names an unknown document type.
func (p *Pipeline) Handle(ctx context.Context, q *models.Query) (*models.Answer, error) {
	ctx, span := tracer.Start(ctx, "pipeline.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("query.feature", string(q.Feature)),
		attribute.String("query.plan", string(q.CallerPlan)),
	)

	// Screen. Unsafe queries terminate here: no generation, no
	// persistence, no context assembly.
	verdict := safety.Classify(q.RawText, q.CallerID)
	if !verdict.IsSafe {
		span.SetAttributes(attribute.String("safety.violation", string(verdict.ViolationType)))
		return nil, &models.UnsafeRequestError{
			Violation:   verdict.ViolationType,
			RefusalText: verdict.RefusalText,
		}
	}

	// Case context and retrieval are independent reads; run them
	// concurrently. Both degrade to empty on failure.
	caseBlock, retrievalBlock := p.assembleContext(ctx, q)

	result, err := p.generate(ctx, q, caseBlock, retrievalBlock)
	if err != nil {
		return nil, err
	}

	matches := p.verifyCitations(result)

	answer := &models.Answer{
		Content:       result.Content,
		Citations:     matches,
		IsAIGenerated: result.IsAIGenerated,
		SessionID:     q.SessionID,
	}

	// Persist exactly once, after a safe verdict and a produced result.
	// WithoutCancel lets a started write finish even if the caller
	// disconnects mid-flight.
	receipt, err := p.exchanges.SaveExchange(context.WithoutCancel(ctx), &models.Exchange{
		SessionID:     q.SessionID,
		CallerID:      q.CallerID,
		CaseID:        q.ActiveCaseID,
		UserTurn:      models.Turn{Role: models.RoleUser, Content: q.RawText},
		AssistantTurn: models.Turn{Role: models.RoleAssistant, Content: result.Content},
		IsAIGenerated: result.IsAIGenerated,
	})
	if err != nil {
		perr := &models.PersistenceError{Cause: err}
		log.Error().Err(perr).Str("caller_id", q.CallerID).Msg("Exchange persistence failed, returning content anyway")
		answer.PersistWarning = "response could not be saved to history"
		return answer, nil
	}
	answer.SessionID = receipt.SessionID
	answer.MessageID = receipt.MessageID
	return answer, nil
}

// assembleContext runs the case assembler and retrieval augmenter
// concurrently. Failures are already logged and degraded inside the
// stages; here they just yield empty blocks.
func (p *Pipeline) assembleContext(ctx context.Context, q *models.Query) (caseBlock, retrievalBlock string) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		caseBlock, _ = p.cases.Assemble(ctx, q.ActiveCaseID)
	}()

	if p.augmenter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			retrievalBlock, _, _ = p.augmenter.Augment(ctx, q.RawText, q.ActiveCaseID)
		}()
	}

	wg.Wait()
	return caseBlock, retrievalBlock
}

// generate produces the assistant content: the model router first, the
// template engine as the drafting fallback.
func (p *Pipeline) generate(ctx context.Context, q *models.Query, caseBlock, retrievalBlock string) (*models.GeneratedResult, error) {
	req := router.Request{
		CallerID:     q.CallerID,
		Plan:         q.CallerPlan,
		Feature:      q.Feature,
		SystemPrompt: systemPrompt(caseBlock, retrievalBlock),
		Messages:     buildMessages(q),
	}

	result, err := p.router.Route(ctx, req)
	if err == nil {
		return result, nil
	}

	if q.Feature == models.FeatureDrafting {
		// Template fallback: the primary path for plans without AI
		// drafting, the degraded path when the backend fails.
		if errors.Is(err, models.ErrNotEntitled) || errors.Is(err, models.ErrQuotaExceeded) || errors.Is(err, models.ErrModelUnavailable) {
			log.Info().Err(err).Str("document_type", q.DocumentType).Msg("Drafting via template engine")
			doc, terr := templates.Generate(q.DocumentType, q.Fields)
			if terr != nil {
				return nil, terr
			}
			return &models.GeneratedResult{Content: doc, IsAIGenerated: false}, nil
		}
	}

	if errors.Is(err, models.ErrModelUnavailable) {
		// No fallback content for conversational features; the caller
		// gets the resource list alongside the surfaced error.
		return nil, fmt.Errorf("%w: try again shortly, or consult: %s", models.ErrModelUnavailable, strings.Join(models.FallbackResources, "; "))
	}
	return nil, err
}

// verifyCitations checks the result's citations against the landmark
// table, extracting them from the content when the backend did not
// return an explicit list.
func (p *Pipeline) verifyCitations(result *models.GeneratedResult) []models.CitationMatch {
	cits := result.Citations
	if len(cits) == 0 && result.IsAIGenerated {
		cits = citations.Extract(result.Content)
	}
	if len(cits) == 0 {
		return nil
	}
	return citations.Verify(cits)
}

func systemPrompt(caseBlock, retrievalBlock string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	if caseBlock != "" {
		sb.WriteString("\n\n")
		sb.WriteString(caseBlock)
	}
	if retrievalBlock != "" {
		sb.WriteString("\n\n")
		sb.WriteString(retrievalBlock)
	}
	return sb.String()
}

// buildMessages converts the bounded history plus the current query
// into the invocation payload.
func buildMessages(q *models.Query) []models.ChatMessage {
	bounded := history.Bound(q.History)
	msgs := make([]models.ChatMessage, 0, len(bounded)+1)
	for _, turn := range bounded {
		msgs = append(msgs, models.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	userText := q.RawText
	if q.Feature == models.FeatureDrafting && q.DocumentType != "" {
		userText = draftingPrompt(q)
	}
	return append(msgs, models.ChatMessage{Role: string(models.RoleUser), Content: userText})
}

// draftingPrompt spells out the document request so the model drafts
// from the structured fields, not just the free text.
func draftingPrompt(q *models.Query) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft a %s under Indian law.", strings.ReplaceAll(q.DocumentType, "_", " "))
	if len(q.Fields) > 0 {
		sb.WriteString(" Use these details:\n")
		keys := make([]string, 0, len(q.Fields))
		for k := range q.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, q.Fields[k])
		}
	}
	if q.RawText != "" {
		sb.WriteString("\nAdditional instructions: ")
		sb.WriteString(q.RawText)
	}
	return sb.String()
}
