package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. UnsafeRequestError and
// UnsupportedDocumentTypeError are expected in normal operation and carry
// user-readable text; the sentinels below signal degraded or failed paths.
var (
	// ErrContextUnavailable: a context-assembly port failed. Non-fatal,
	// the query proceeds without that context.
	ErrContextUnavailable = errors.New("context unavailable")

	// ErrModelUnavailable: the AI backend errored or timed out. The
	// orchestrator decides between template fallback and surfacing.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrNotEntitled: the caller's plan does not unlock the requested
	// feature on the AI path. For drafting this makes the template
	// engine the primary path, not an error recovery.
	ErrNotEntitled = errors.New("plan not entitled to AI generation")

	// ErrQuotaExceeded: the caller hit their usage ceiling.
	ErrQuotaExceeded = errors.New("usage quota exceeded")
)

// UnsafeRequestError is the terminal screening failure. It carries the
// refusal text shown to the caller; never retried.
type UnsafeRequestError struct {
	Violation   ViolationType
	RefusalText string
}

func (e *UnsafeRequestError) Error() string {
	return fmt.Sprintf("unsafe request: %s", e.Violation)
}

// UnsupportedDocumentTypeError is fatal to a drafting request: the
// template engine has no skeleton for the requested type.
type UnsupportedDocumentTypeError struct {
	DocumentType string
}

func (e *UnsupportedDocumentTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %q", e.DocumentType)
}

// PersistenceError wraps a failed exchange write. The generated content
// is still returned to the caller; losing a safety-screened answer
// silently is worse than an unsaved one.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("exchange persistence failed: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// FallbackResources is the static list of external legal-research
// resources returned alongside generic failure messages.
var FallbackResources = []string{
	"India Code (official statute database): https://www.indiacode.nic.in",
	"eCourts case status portal: https://ecourts.gov.in",
	"Supreme Court of India judgments: https://main.sci.gov.in/judgments",
	"National Legal Services Authority (free legal aid): https://nalsa.gov.in",
	"Indian Kanoon case-law search: https://indiankanoon.org",
}
