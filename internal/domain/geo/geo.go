// Package geo holds the static place-name and service-intent synonym tables
// used for query normalization and filter variant expansion. Tables are
// immutable after package init; lookups are safe for concurrent use.
package geo

import (
	"sort"
	"strings"
)

// stateCodes maps lowercase state names to their two-letter codes.
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// validCodes is the reverse index of stateCodes plus DC.
var validCodes = func() map[string]string {
	m := make(map[string]string, len(stateCodes))
	for name, code := range stateCodes {
		m[code] = name
	}
	return m
}()

// cityVariants groups spelling variants of place names that appear in firm
// records. Every variant maps to the full group so either form retrieves
// records stored under the other.
var cityVariants = func() map[string][]string {
	groups := [][]string{
		{"st. louis", "st louis", "saint louis", "stl"},
		{"new york", "new york city", "nyc", "manhattan"},
		{"los angeles", "la"},
		{"san francisco", "sf"},
		{"kansas city", "kc"},
		{"philadelphia", "philly"},
		{"fort worth", "ft. worth", "ft worth"},
		{"st. paul", "st paul", "saint paul"},
	}
	m := make(map[string][]string)
	for _, g := range groups {
		for _, v := range g {
			m[v] = g
		}
	}
	return m
}()

// serviceSynonyms maps query phrases to canonical service intents. All of
// these imply the private-fund predicate (secondary fund count > 0).
var serviceSynonyms = map[string]string{
	"private placement":       "private placements",
	"private placements":      "private placements",
	"reg d":                   "private placements",
	"regulation d":            "private placements",
	"venture capital":         "venture capital",
	"vc fund":                 "venture capital",
	"vc funds":                "venture capital",
	"private equity":          "private equity",
	"pe fund":                 "private equity",
	"pe funds":                "private equity",
	"hedge fund":              "hedge funds",
	"hedge funds":             "hedge funds",
	"alternative investment":  "alternative investments",
	"alternative investments": "alternative investments",
	"private fund":            "private funds",
	"private funds":           "private funds",
}

// StateCode resolves a state name or code to its canonical two-letter code.
func StateCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if code, ok := stateCodes[strings.ToLower(s)]; ok {
		return code, true
	}
	upper := strings.ToUpper(s)
	if _, ok := validCodes[upper]; ok {
		return upper, true
	}
	return "", false
}

// StateName returns the lowercase full name for a two-letter code.
func StateName(code string) (string, bool) {
	name, ok := validCodes[strings.ToUpper(code)]
	return name, ok
}

// CanonicalCity normalizes a city string to the first variant of its group,
// or to its lowercase trimmed form when no group is known.
func CanonicalCity(city string) string {
	c := strings.ToLower(strings.TrimSpace(city))
	if g, ok := cityVariants[c]; ok {
		return g[0]
	}
	return c
}

// CityVariants returns every known spelling of a city, the input included.
// The caller combines these into an OR predicate group, never a single guess.
func CityVariants(city string) []string {
	c := strings.ToLower(strings.TrimSpace(city))
	if c == "" {
		return nil
	}
	if g, ok := cityVariants[c]; ok {
		out := make([]string, len(g))
		copy(out, g)
		return out
	}
	return []string{c}
}

// KnownCitySpellings returns every spelling that belongs to a variant group,
// longest first so multi-word spellings match before their substrings.
func KnownCitySpellings() []string {
	out := make([]string, 0, len(cityVariants))
	for v := range cityVariants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// ServiceIntents scans text for service-intent synonyms and returns the
// canonical intents found, deduplicated, in first-appearance order.
func ServiceIntents(text string) []string {
	t := strings.ToLower(text)
	seen := make(map[string]bool)
	var out []string
	for phrase, canonical := range serviceSynonyms {
		if strings.Contains(t, phrase) && !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	// map iteration order is random; fix order by re-scanning positions
	if len(out) > 1 {
		sortByPosition(out, t)
	}
	return out
}

func sortByPosition(intents []string, text string) {
	pos := func(intent string) int {
		best := len(text) + 1
		for phrase, canonical := range serviceSynonyms {
			if canonical != intent {
				continue
			}
			if i := strings.Index(text, phrase); i >= 0 && i < best {
				best = i
			}
		}
		return best
	}
	for i := 1; i < len(intents); i++ {
		for j := i; j > 0 && pos(intents[j]) < pos(intents[j-1]); j-- {
			intents[j], intents[j-1] = intents[j-1], intents[j]
		}
	}
}

// HasPrivateFundIntent reports whether text mentions any phrase from the
// private-fund synonym set.
func HasPrivateFundIntent(text string) bool {
	return len(ServiceIntents(text)) > 0
}
