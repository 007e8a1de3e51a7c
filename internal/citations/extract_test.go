package citations_test

import (
	"testing"

	"github.com/lexmitra/lexmitra/backend/internal/citations"
)

func TestExtractFindsReporterCitations(t *testing.T) {
	text := "Per Maneka Gandhi (AIR 1978 SC 597), procedure must be fair. " +
		"See also Selvi v. State of Karnataka, (2010) 5 SCC 600, on consent."

	got := citations.Extract(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 citations, got %v", got)
	}
	if got[0] != "AIR 1978 SC 597" {
		t.Errorf("got %q", got[0])
	}
	if got[1] != "(2010) 5 SCC 600" {
		t.Errorf("got %q", got[1])
	}
}

func TestExtractDeduplicates(t *testing.T) {
	text := "AIR 1973 SC 1461 ... later again air 1973 sc 1461."
	got := citations.Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 citation after dedup, got %v", got)
	}
}

func TestExtractEmptyOnPlainText(t *testing.T) {
	if got := citations.Extract("A rent agreement needs a stamp paper."); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}
