package domain

// Decomposition is the per-request parse of a raw query: an enriched
// semantic phrase plus structured filters. Produced fresh per request and
// never persisted.
type Decomposition struct {
	SemanticQuery string
	Filters       StructuredFilters
	// UsedFallback is true when the rule-based parser produced this
	// decomposition instead of the language model.
	UsedFallback bool
}

// StructuredFilters are hard predicates extracted from the query text.
// Zero values mean "not requested".
type StructuredFilters struct {
	City                string
	State               string
	MinAUM              *float64
	MaxAUM              *float64
	Services            []string
	RequirePrivateFunds bool
	// TopN is the requested result count from a "top N" phrase; 0 when absent.
	TopN int
}

// IsEmpty reports whether no structured predicate was requested.
func (f StructuredFilters) IsEmpty() bool {
	return f.Count() == 0
}

// Count returns the number of active predicates. TopN is a result budget,
// not a predicate, so it does not count.
func (f StructuredFilters) Count() int {
	n := 0
	if f.City != "" {
		n++
	}
	if f.State != "" {
		n++
	}
	if f.MinAUM != nil || f.MaxAUM != nil {
		n++
	}
	if len(f.Services) > 0 {
		n++
	}
	if f.RequirePrivateFunds {
		n++
	}
	return n
}

// Relax returns a copy with the most restrictive predicate dropped, used for
// the single widen-and-retry pass when retrieval comes back empty. Order of
// removal: numeric bounds, then city, then services, then the private-fund
// predicate, then state. Returns ok=false when nothing was left to drop.
func (f StructuredFilters) Relax() (StructuredFilters, bool) {
	out := f
	switch {
	case f.MinAUM != nil || f.MaxAUM != nil:
		out.MinAUM = nil
		out.MaxAUM = nil
	case f.City != "":
		out.City = ""
	case len(f.Services) > 0:
		out.Services = nil
	case f.RequirePrivateFunds:
		out.RequirePrivateFunds = false
	case f.State != "":
		out.State = ""
	default:
		return f, false
	}
	return out, true
}
