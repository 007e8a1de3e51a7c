package citations

import "regexp"

// citationPatterns cover the reporter formats the landmark table uses:
// "AIR 1978 SC 597" and "(2010) 5 SCC 600".
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAIR\s+\d{4}\s+SC\s+\d+\b`),
	regexp.MustCompile(`\(\d{4}\)\s+\d+\s+SCC\s+\d+\b`),
}

// Extract pulls citation strings out of generated text, in order of
// appearance, deduplicated after normalization.
func Extract(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range citationPatterns {
		for _, m := range re.FindAllString(text, -1) {
			key := normalize(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}
