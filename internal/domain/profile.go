package domain

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces every key this engine touches in the store.
const KeyPrefix = "riahunter:"

// Sortable profile attributes, named as indexed in the profile FT index.
const (
	AttrAUM              = "aum"
	AttrPrivateFundCount = "private_fund_count"
	AttrPrivateFundAUM   = "private_fund_aum"
)

// Profile is a firm record produced by the external ingestion pipeline.
// This engine only reads profiles; it never creates or mutates them.
type Profile struct {
	CRD              string
	FirmName         string
	City             string
	State            string
	AUM              float64
	PrivateFundCount int
	PrivateFundAUM   float64
	Services         []string
}

// ProfileKey returns the hash key for a profile by CRD.
func ProfileKey(crd string) string {
	return KeyPrefix + "profile:" + crd
}

// PeopleKey returns the JSON key holding related people for a profile.
func PeopleKey(crd string) string {
	return KeyPrefix + "people:" + crd
}

// RelatedPerson is an enrichment record owned by the related-entity
// collaborator, referenced by profile CRD only.
type RelatedPerson struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Narrative is the free-text description of a profile plus its embedding.
// At most one narrative exists per profile. Vector may be empty: profiles
// without an embedding are legal and simply never surface on the vector path.
type Narrative struct {
	CRD    string
	Text   string
	Vector []float32
}

// BuildNarrative renders the ingestion-style narrative text for a profile.
// Lexical search ranks against this text, so tests and fixtures use the
// same phrasing the ingestion pipeline writes.
func BuildNarrative(p Profile) string {
	parts := []string{fmt.Sprintf("%s is a registered investment adviser", p.FirmName)}

	if p.City != "" || p.State != "" {
		loc := p.City
		if loc != "" && p.State != "" {
			loc += ", " + p.State
		} else if loc == "" {
			loc = p.State
		}
		parts = append(parts, fmt.Sprintf("located in %s", loc))
	}

	if p.AUM > 0 {
		parts = append(parts, fmt.Sprintf("managing %s in assets", FormatAUM(p.AUM)))
	}

	if p.PrivateFundCount > 0 {
		parts = append(parts, fmt.Sprintf("advising %d private funds", p.PrivateFundCount))
	}

	if len(p.Services) > 0 {
		parts = append(parts, fmt.Sprintf("offering %s", strings.Join(p.Services, ", ")))
	}

	return strings.Join(parts, " ") + "."
}

// FormatAUM renders a dollar amount the way narratives phrase it.
func FormatAUM(aum float64) string {
	switch {
	case aum >= 1e9:
		return fmt.Sprintf("$%.1f billion", aum/1e9)
	case aum >= 1e6:
		return fmt.Sprintf("$%.1f million", aum/1e6)
	default:
		return fmt.Sprintf("$%.0f", aum)
	}
}
