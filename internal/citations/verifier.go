// Package citations cross-checks citations in generated output against
// a local table of landmark Indian case law.
//
// Matching is exact after case folding and whitespace normalization.
// Unmatched citations are flagged, not discarded: the caller decides
// whether to surface them with a warning.
package citations

import (
	"strings"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// references is the local landmark table, loaded once at process start.
var references = []models.CaseLawReference{
	{ID: "case-001", Citation: "AIR 1973 SC 1461", Name: "Kesavananda Bharati v. State of Kerala", Summary: "Basic structure doctrine: Parliament cannot amend the Constitution's basic structure."},
	{ID: "case-002", Citation: "AIR 1978 SC 597", Name: "Maneka Gandhi v. Union of India", Summary: "Article 21 procedure must be fair, just and reasonable."},
	{ID: "case-003", Citation: "AIR 1997 SC 3011", Name: "Vishaka v. State of Rajasthan", Summary: "Guidelines against sexual harassment at the workplace."},
	{ID: "case-004", Citation: "AIR 1997 SC 610", Name: "D.K. Basu v. State of West Bengal", Summary: "Safeguards for arrest and detention."},
	{ID: "case-005", Citation: "AIR 1993 SC 477", Name: "Indra Sawhney v. Union of India", Summary: "Upheld OBC reservation with the 50% ceiling and creamy layer exclusion."},
	{ID: "case-006", Citation: "AIR 1980 SC 898", Name: "Minerva Mills v. Union of India", Summary: "Balance between fundamental rights and directive principles."},
	{ID: "case-007", Citation: "AIR 1985 SC 945", Name: "Mohd. Ahmed Khan v. Shah Bano Begum", Summary: "Maintenance for divorced Muslim women under Section 125 CrPC."},
	{ID: "case-008", Citation: "AIR 2017 SC 4161", Name: "Justice K.S. Puttaswamy v. Union of India", Summary: "Right to privacy as a fundamental right under Article 21."},
	{ID: "case-009", Citation: "AIR 2018 SC 4321", Name: "Navtej Singh Johar v. Union of India", Summary: "Decriminalized consensual same-sex relations, reading down Section 377 IPC."},
	{ID: "case-010", Citation: "AIR 1976 SC 1207", Name: "ADM Jabalpur v. Shivkant Shukla", Summary: "Emergency-era habeas corpus ruling, later overruled by Puttaswamy."},
	{ID: "case-011", Citation: "AIR 1992 SC 1858", Name: "Mohini Jain v. State of Karnataka", Summary: "Right to education flows from the right to life."},
	{ID: "case-012", Citation: "(2010) 5 SCC 600", Name: "Selvi v. State of Karnataka", Summary: "Narcoanalysis and polygraph tests require consent."},
}

// index maps normalized citation → reference. Built once.
var index = func() map[string]*models.CaseLawReference {
	m := make(map[string]*models.CaseLawReference, len(references))
	for i := range references {
		m[normalize(references[i].Citation)] = &references[i]
	}
	return m
}()

// normalize lower-cases and collapses all whitespace runs to single
// spaces, trimming the ends.
func normalize(citation string) string {
	return strings.Join(strings.Fields(strings.ToLower(citation)), " ")
}

// Verify checks each citation against the landmark table. It never
// fails; unmatched is a valid outcome. Input order is preserved.
func Verify(cits []string) []models.CitationMatch {
	out := make([]models.CitationMatch, 0, len(cits))
	for _, c := range cits {
		match := models.CitationMatch{Citation: c}
		if ref, ok := index[normalize(c)]; ok {
			match.Matched = true
			match.Reference = ref
		}
		out = append(out, match)
	}
	return out
}

// Lookup returns the reference for a single citation, or nil.
func Lookup(citation string) *models.CaseLawReference {
	return index[normalize(citation)]
}
