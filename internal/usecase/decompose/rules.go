package decompose

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/geo"
)

var (
	topNRe = regexp.MustCompile(`\btop\s+(\d+)\b`)

	minAUMRe = regexp.MustCompile(
		`\b(?:over|above|more than|at least|exceeding|greater than)\s+\$?\s?(\d[\d,]*(?:\.\d+)?)\s*(billion|million|bn|mm|b|m)?\b`)
	maxAUMRe = regexp.MustCompile(
		`\b(?:under|below|less than|at most|no more than)\s+\$?\s?(\d[\d,]*(?:\.\d+)?)\s*(billion|million|bn|mm|b|m)?\b`)

	// "in St. Louis", "in St. Louis, MO", "in Missouri". A bare period is
	// not a terminator so abbreviated place names survive.
	locationRe = regexp.MustCompile(`\bin\s+([a-zA-Z][a-zA-Z .]*?)(?:\s*,\s*([a-zA-Z][a-zA-Z ]*?))?\s*(?:$|[?,;]|\bwith\b|\bthat\b|\bmanaging\b|\boffering\b)`)
)

// ParseRules is the deterministic decomposition parser. It extracts the
// filters it can recognize from the raw text and passes the rest through as
// the semantic query. It is the floor under the language model: same output
// shape, no external calls, always succeeds.
func ParseRules(query string) domain.Decomposition {
	lower := strings.ToLower(query)
	var f domain.StructuredFilters

	remainder := lower

	if m := topNRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			f.TopN = n
		}
		remainder = strings.Replace(remainder, m[0], " ", 1)
	}

	if m := minAUMRe.FindStringSubmatch(lower); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			f.MinAUM = &v
			remainder = strings.Replace(remainder, m[0], " ", 1)
		}
	}
	if m := maxAUMRe.FindStringSubmatch(lower); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			f.MaxAUM = &v
			remainder = strings.Replace(remainder, m[0], " ", 1)
		}
	}

	if city, state, matched, ok := parseLocation(remainder); ok {
		f.City = city
		f.State = state
		remainder = strings.Replace(remainder, matched, " ", 1)
	}

	f.Services = geo.ServiceIntents(lower)
	if len(f.Services) > 0 {
		f.RequirePrivateFunds = true
	}

	semantic := strings.Join(strings.Fields(remainder), " ")
	if semantic == "" {
		semantic = strings.TrimSpace(lower)
	}

	return domain.Decomposition{
		SemanticQuery: semantic,
		Filters:       f,
	}
}

// parseAmount converts a number plus unit suffix into dollars.
func parseAmount(num, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	switch unit {
	case "billion", "bn", "b":
		v *= 1e9
	case "million", "mm", "m":
		v *= 1e6
	}
	return v, true
}

// parseLocation resolves an "in <place>" clause. A lone place is a state
// when it resolves as one, otherwise a city. A "city, state" pair resolves
// both; an unknown trailing state token demotes the whole match.
func parseLocation(text string) (city, state, matched string, ok bool) {
	m := locationRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", "", false
	}

	place := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), "."))
	second := strings.TrimSpace(m[2])

	// keep the stop word out of the replaced span
	matched = m[0]
	for _, stop := range []string{"with", "that", "managing", "offering"} {
		matched = strings.TrimSuffix(matched, stop)
	}

	if second != "" {
		code, found := geo.StateCode(second)
		if !found {
			return "", "", "", false
		}
		return geo.CanonicalCity(place), code, matched, true
	}

	if code, found := geo.StateCode(place); found {
		return "", code, matched, true
	}
	return geo.CanonicalCity(place), "", matched, true
}
