package kb

import "strings"

// stopwords that carry no retrieval signal in contract prose.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "shall": {}, "will": {},
	"may": {}, "must": {}, "not": {}, "any": {}, "all": {}, "this": {},
	"that": {}, "such": {}, "are": {}, "has": {}, "have": {}, "been": {},
	"from": {}, "upon": {}, "per": {}, "his": {}, "her": {}, "its": {},
	"their": {}, "other": {}, "than": {}, "into": {}, "under": {},
	"employee": {}, "employer": {}, "party": {}, "parties": {},
	"clause": {}, "contract": {}, "agreement": {},
}

// significantTerms reduces clause text to up to max lowercase search terms:
// alphabetic words of four letters or more that are not boilerplate.
func significantTerms(text string, max int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	seen := map[string]struct{}{}
	var out []string
	for _, f := range fields {
		if len(f) < 4 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
		if len(out) >= max {
			break
		}
	}
	return out
}

// ftsQuery joins terms into an OR query; terms are quoted so FTS5 never
// interprets them as syntax.
func ftsQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, ``) + `"`
	}
	return strings.Join(quoted, " OR ")
}
