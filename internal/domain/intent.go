package domain

// IntentKind is the execution strategy class for a query.
type IntentKind string

// Intent classes.
const (
	// IntentSuperlative asks for an extremum by a numeric attribute and is
	// answered by a direct attribute sort, never by similarity ranking.
	IntentSuperlative IntentKind = "superlative"
	IntentSemantic    IntentKind = "semantic"
	IntentHybrid      IntentKind = "hybrid"
	// IntentDirectLookup names a single firm by identifier.
	IntentDirectLookup IntentKind = "direct_lookup"
)

// SortDirection orders a superlative sort.
type SortDirection string

// Sort directions.
const (
	SortDesc SortDirection = "desc"
	SortAsc  SortDirection = "asc"
)

// Intent is the deterministic classification of a decomposition.
// Direction and Attribute are set only for IntentSuperlative;
// CRD only for IntentDirectLookup.
type Intent struct {
	Kind      IntentKind
	Direction SortDirection
	Attribute string
	CRD       string
}
