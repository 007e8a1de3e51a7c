// Package safety screens free-text legal queries for disallowed intent
// before any model or template generation runs.
//
// Classification is a pure phrase scan over two tiers of patterns:
//   - tier (a): illegal-act phrases, each mapped to a violation category
//     in a fixed canonical order. A tier-(a) match always refuses.
//   - tier (b): intent prefixes ("how to", "help me", "can i") combined
//     with bare category terms ("perjury", "blackmail") that on their
//     own could be informational or victim-side questions
//
// Each category carries a canned refusal that explains the legal
// consequence and offers a lawful alternative instead of a bare "no".
package safety

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// phraseGroup binds a violation category to its patterns. Scan order is
// canonical: the first group with a match determines the category.
type phraseGroup struct {
	violation models.ViolationType

	// phrases are tier-(a): each encodes the illegal act directly and
	// refuses on its own.
	phrases []string

	// terms are bare category words that refuse only when a tier-(b)
	// intent prefix co-occurs, so "what is perjury" and "someone is
	// blackmailing me" stay answerable.
	terms []string
}

// phraseGroups is loaded once at process start and never mutated.
var phraseGroups = []phraseGroup{
	{violation: models.ViolationEvidenceTampering, phrases: []string{
		"destroy evidence", "tamper with evidence", "hide evidence",
		"delete evidence", "get rid of evidence", "plant evidence",
		"fabricate evidence", "alter evidence",
	}},
	{violation: models.ViolationWitnessFabrication, phrases: []string{
		"fake witness", "false witness", "bribe witness", "bribe a witness",
		"coach witness to lie", "threaten witness", "intimidate witness",
		"witness to lie",
	}},
	{violation: models.ViolationCourtBribery, phrases: []string{
		"bribe judge", "bribe the judge", "bribe a judge", "bribe court",
		"pay off the judge", "influence the judge", "bribe magistrate",
		"bribe court staff",
	}},
	{violation: models.ViolationFraudForgery, phrases: []string{
		"forge document", "forge signature", "fake document", "forged stamp paper",
		"fake stamp paper", "backdate document", "backdate agreement",
		"fake property papers", "forge a will",
	}},
	{violation: models.ViolationPerjury, phrases: []string{
		"lie under oath", "lie in court", "false affidavit", "false testimony",
		"false statement in court", "commit perjury",
	}, terms: []string{"perjury"}},
	{violation: models.ViolationUnauthorizedPractice, phrases: []string{
		"practice law without", "pretend to be a lawyer", "fake bar license",
		"impersonate an advocate", "pose as a lawyer",
	}},
	{violation: models.ViolationConflictOfInterest, phrases: []string{
		"represent both parties secretly", "hide conflict of interest",
		"act against my own client", "leak client information",
	}},
	{violation: models.ViolationBlackmailExtortion, phrases: []string{
		"blackmail my", "blackmail him", "blackmail her", "blackmail the",
		"blackmail them", "extort money", "extort him", "extort her",
		"extort the", "threaten to expose unless",
	}, terms: []string{"blackmail", "extort"}},
	{violation: models.ViolationMoneyLaundering, phrases: []string{
		"launder money", "money laundering", "hide black money",
		"convert black money", "hawala transfer", "shell company to hide",
	}},
	{violation: models.ViolationIllegalActivity, phrases: []string{
		"evade tax illegally", "avoid arrest illegally", "escape police",
		"illegal way to", "illegally obtain", "without getting caught",
	}},
}

// intentPrefixes are tier-(b) phrases. On their own they are harmless;
// together with a bare category term they confirm intent.
var intentPrefixes = []string{"how to", "help me", "can i", "help with", "ways to"}

// refusals maps each category to its canned refusal text.
var refusals = map[models.ViolationType]string{
	models.ViolationEvidenceTampering: "I can't assist with destroying, hiding or altering evidence. Tampering with evidence is an offence under IPC Sections 201-229 and can lead to imprisonment. If evidence is unfavourable to your case, a lawyer can help you challenge its admissibility or context lawfully - I can explain how that process works.",
	models.ViolationWitnessFabrication: "I can't assist with fabricating, coaching or pressuring witnesses. Procuring false evidence is punishable under IPC Sections 191-195. What I can do is explain how witness examination and cross-examination work, so your counsel can test unreliable testimony lawfully.",
	models.ViolationCourtBribery: "I can't assist with bribing or improperly influencing judges or court staff. That is an offence under the Prevention of Corruption Act, 1988 and IPC Section 171E. If you believe a proceeding is biased, lawful remedies exist - transfer petitions and appeals - and I can explain them.",
	models.ViolationFraudForgery: "I can't assist with forging or backdating documents. Forgery is punishable under IPC Sections 463-477A with imprisonment up to 7 years. If a document is missing or defective, there are lawful cures - duplicates, rectification deeds, secondary evidence under the Evidence Act - and I can walk you through them.",
	models.ViolationPerjury: "I can't assist with false statements, affidavits or testimony. Perjury is punishable under IPC Sections 191-193. If the truth is unfavourable, a lawyer can still present your case effectively - I can explain how privileged legal advice and the right against self-incrimination protect you.",
	models.ViolationUnauthorizedPractice: "I can't assist with practising law without enrolment or impersonating an advocate. That violates the Advocates Act, 1961 (Sections 29-33 and 45). If you want to represent yourself, courts do allow party-in-person appearances - I can explain that procedure instead.",
	models.ViolationConflictOfInterest: "I can't assist with concealing a conflict of interest or acting against a client's interest. That breaches the Bar Council of India rules and can amount to professional misconduct under the Advocates Act. The lawful route is disclosure and recusal - I can explain how to do that properly.",
	models.ViolationBlackmailExtortion: "I can't assist with blackmail or extortion. These are offences under IPC Sections 383-389 regardless of whether the underlying information is true. If someone owes you money or wronged you, lawful recovery and complaint mechanisms exist - I can outline them.",
	models.ViolationMoneyLaundering: "I can't assist with laundering money or concealing unaccounted funds. That attracts the Prevention of Money Laundering Act, 2002 and serious tax penalties. If you have undisclosed income, voluntary disclosure and regularisation schemes are the lawful path - consult a chartered accountant or tax lawyer.",
	models.ViolationIllegalActivity: "I can't assist with illegal activity. Whatever outcome you're after, there is usually a lawful route - and using it protects you from criminal liability under the IPC. Tell me the underlying goal and I can point you to the legitimate legal options.",
}

// auditPreviewRunes caps how much of the raw input lands in the audit log.
const auditPreviewRunes = 80

// Classify screens rawText and returns a terminal verdict. Pure and
// deterministic: no I/O, no randomness, no failure mode.
//
// callerID is only used for the fire-and-forget audit entry emitted on
// a violation; it never influences the verdict.
func Classify(rawText, callerID string) models.SafetyVerdict {
	lower := strings.ToLower(rawText)

	for _, group := range phraseGroups {
		if !matches(lower, group) {
			continue
		}
		auditViolation(group.violation, callerID, rawText)
		return models.SafetyVerdict{
			IsSafe:        false,
			ViolationType: group.violation,
			RefusalText:   refusals[group.violation],
		}
	}

	return models.SafetyVerdict{IsSafe: true}
}

// matches reports whether the text violates the group. Tier-(a) act
// phrases match unconditionally; bare category terms additionally need
// a tier-(b) intent prefix somewhere in the text.
func matches(lower string, group phraseGroup) bool {
	for _, phrase := range group.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, term := range group.terms {
		if strings.Contains(lower, term) && hasIntentPrefix(lower) {
			return true
		}
	}
	return false
}

func hasIntentPrefix(lower string) bool {
	for _, prefix := range intentPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// auditViolation emits the audit entry asynchronously. Must never block
// or fail the classification result.
func auditViolation(v models.ViolationType, callerID, rawText string) {
	preview := rawText
	if runes := []rune(preview); len(runes) > auditPreviewRunes {
		preview = string(runes[:auditPreviewRunes])
	}
	go func() {
		log.Warn().
			Str("violation", string(v)).
			Str("caller_id", callerID).
			Str("input", preview).
			Msg("Unsafe query refused")
	}()
}

// Refusal returns the canned refusal text for a category. Exposed for
// the pipeline's refusal response path.
func Refusal(v models.ViolationType) string {
	return refusals[v]
}
