package query

import (
	"regexp"
	"strings"

	"github.com/Turnstyle/ria-hunter/internal/domain"
)

var crdLookupRe = regexp.MustCompile(`\bcrd\s*#?\s*(\d+)\b`)

// superlativeKeywords maps superlative phrases to their sort direction.
var superlativeKeywords = map[string]domain.SortDirection{
	"largest":  domain.SortDesc,
	"biggest":  domain.SortDesc,
	"highest":  domain.SortDesc,
	"most":     domain.SortDesc,
	"smallest": domain.SortAsc,
	"lowest":   domain.SortAsc,
	"fewest":   domain.SortAsc,
	"least":    domain.SortAsc,
}

// classifyIntent decides the retrieval strategy for a query. The rules are
// fixed and ordered; the same query always classifies the same way:
//
//  1. an explicit CRD reference is a direct lookup;
//  2. a superlative keyword or a "top N" phrase is an attribute sort, never
//     a vector search: "largest" and "top 5" are ranking instructions, not
//     concepts to embed;
//  3. structured filters alongside free text make it hybrid;
//  4. everything else is semantic.
func classifyIntent(query string, dec domain.Decomposition) domain.Intent {
	lower := strings.ToLower(query)

	if m := crdLookupRe.FindStringSubmatch(lower); m != nil {
		return domain.Intent{Kind: domain.IntentDirectLookup, CRD: m[1]}
	}

	if dir, attr, ok := findSuperlative(lower); ok {
		return domain.Intent{
			Kind:      domain.IntentSuperlative,
			Direction: dir,
			Attribute: attr,
		}
	}

	// "top N" without an explicit keyword still ranks by size, descending.
	if dec.Filters.TopN > 0 {
		return domain.Intent{
			Kind:      domain.IntentSuperlative,
			Direction: domain.SortDesc,
			Attribute: domain.AttrAUM,
		}
	}

	if !dec.Filters.IsEmpty() {
		return domain.Intent{Kind: domain.IntentHybrid}
	}
	return domain.Intent{Kind: domain.IntentSemantic}
}

// findSuperlative scans for a superlative keyword and resolves the attribute
// it ranks by. Private-fund wording sorts by fund count; "fund assets" or
// "fund aum" by private-fund AUM; everything else by total AUM.
func findSuperlative(lower string) (domain.SortDirection, string, bool) {
	var dir domain.SortDirection
	found := false
	for kw, d := range superlativeKeywords {
		if containsWord(lower, kw) {
			dir = d
			found = true
			break
		}
	}
	if !found {
		return "", "", false
	}

	attr := domain.AttrAUM
	switch {
	case strings.Contains(lower, "fund aum"), strings.Contains(lower, "fund assets"):
		attr = domain.AttrPrivateFundAUM
	case strings.Contains(lower, "private fund"):
		attr = domain.AttrPrivateFundCount
	}
	return dir, attr, true
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isAlnum(text[idx-1])
		end := idx + len(word)
		after := end == len(text) || !isAlnum(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[end:], word)
		if next < 0 {
			return false
		}
		idx = end + next
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
