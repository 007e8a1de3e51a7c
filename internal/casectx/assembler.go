// Package casectx assembles the active-case context block appended to
// the system prompt.
//
// The product stores cases in two shapes: the current Case record and a
// legacy CaseTracker record whose details live in a free-form blob. The
// assembler accepts either, normalizes both into models.CaseContext, and
// renders only the fields that are actually present. The rest of the
// pipeline never sees the dual shapes.
package casectx

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// Assembler builds case context blocks through a CaseLookup port.
type Assembler struct {
	lookup contracts.CaseLookup
}

// NewAssembler creates a case context assembler.
func NewAssembler(lookup contracts.CaseLookup) *Assembler {
	return &Assembler{lookup: lookup}
}

// Assemble resolves caseID and formats the context block. An empty
// string with a nil error means the id did not resolve; that is not a
// fault, the query simply proceeds without case context. Lookup errors
// degrade the same way but are logged.
func (a *Assembler) Assemble(ctx context.Context, caseID string) (string, error) {
	if caseID == "" {
		return "", nil
	}

	cc, err := a.resolve(ctx, caseID)
	if err != nil {
		log.Warn().Err(err).Str("case_id", caseID).Msg("Case lookup failed, continuing without case context")
		return "", fmt.Errorf("%w: case lookup: %v", models.ErrContextUnavailable, err)
	}
	if cc == nil {
		return "", nil
	}

	return Format(cc), nil
}

// resolve fetches the case, preferring the richer Case record when both
// shapes exist for the same id.
func (a *Assembler) resolve(ctx context.Context, caseID string) (*models.CaseContext, error) {
	rec, err := a.lookup.GetCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if rec != nil {
		return fromCase(rec), nil
	}

	legacy, err := a.lookup.GetCaseTracker(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case tracker: %w", err)
	}
	if legacy != nil {
		return fromTracker(legacy), nil
	}

	return nil, nil
}

// fromCase maps the richer record onto the normalized context.
func fromCase(rec *models.CaseRecord) *models.CaseContext {
	cc := &models.CaseContext{
		Title:     rec.Title,
		CNR:       rec.CNR,
		CaseType:  rec.CaseType,
		Court:     rec.Court,
		Judge:     rec.Judge,
		Status:    rec.Status,
		Stage:     rec.Stage,
		AISummary: rec.AISummary,
	}
	if rec.Petitioner != "" || rec.Respondent != "" {
		cc.Parties = strings.TrimSpace(rec.Petitioner + " vs " + rec.Respondent)
	}
	if rec.NextHearingDate != nil {
		cc.NextHearingDate = rec.NextHearingDate.Format("02 Jan 2006")
	}
	return cc
}

// trackerFieldSetters maps legacy detail-blob keys (lower-cased) onto
// CaseContext fields.
var trackerFieldSetters = map[string]func(*models.CaseContext, string){
	"cnr":          func(c *models.CaseContext, v string) { c.CNR = v },
	"case type":    func(c *models.CaseContext, v string) { c.CaseType = v },
	"court":        func(c *models.CaseContext, v string) { c.Court = v },
	"judge":        func(c *models.CaseContext, v string) { c.Judge = v },
	"parties":      func(c *models.CaseContext, v string) { c.Parties = v },
	"stage":        func(c *models.CaseContext, v string) { c.Stage = v },
	"next hearing": func(c *models.CaseContext, v string) { c.NextHearingDate = v },
	"summary":      func(c *models.CaseContext, v string) { c.AISummary = v },
}

// fromTracker parses the legacy free-form details blob. Lines look like
// "Court: Bombay High Court"; unrecognized lines are ignored.
func fromTracker(rec *models.CaseTrackerRecord) *models.CaseContext {
	cc := &models.CaseContext{
		Title:  rec.Title,
		Status: rec.Status,
	}
	for _, line := range strings.Split(rec.Details, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if set, ok := trackerFieldSetters[strings.ToLower(strings.TrimSpace(key))]; ok {
			set(cc, value)
		}
	}
	return cc
}

// Format renders the context block as advisory prose for the system
// prompt. Absent fields are omitted, never rendered as placeholders.
func Format(cc *models.CaseContext) string {
	var sb strings.Builder
	sb.WriteString("ACTIVE CASE CONTEXT:\n")

	writeField := func(label, value string) {
		if value != "" {
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteByte('\n')
		}
	}

	writeField("Case", cc.Title)
	writeField("CNR", cc.CNR)
	writeField("Type", cc.CaseType)
	writeField("Court", cc.Court)
	writeField("Judge", cc.Judge)
	writeField("Parties", cc.Parties)
	writeField("Status", cc.Status)
	writeField("Stage", cc.Stage)
	writeField("Next hearing", cc.NextHearingDate)
	writeField("Summary", cc.AISummary)

	sb.WriteString("Answer with this case in mind where relevant.")
	return sb.String()
}
