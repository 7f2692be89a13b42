package decompose

import "testing"

func TestParseRules_FullQuery(t *testing.T) {
	dec := ParseRules("top 5 largest RIA firms in St. Louis, MO with over $2 billion")

	f := dec.Filters
	if f.TopN != 5 {
		t.Errorf("TopN = %d, want 5", f.TopN)
	}
	if f.City != "st. louis" {
		t.Errorf("City = %q, want st. louis", f.City)
	}
	if f.State != "MO" {
		t.Errorf("State = %q, want MO", f.State)
	}
	if f.MinAUM == nil || *f.MinAUM != 2e9 {
		t.Errorf("MinAUM = %v, want 2e9", f.MinAUM)
	}
	if dec.SemanticQuery == "" {
		t.Error("semantic query must never be empty")
	}
}

func TestParseRules_AUMBounds(t *testing.T) {
	tests := []struct {
		query   string
		wantMin *float64
		wantMax *float64
	}{
		{"firms with over $2 billion", f64(2e9), nil},
		{"firms with more than 500 million", f64(500e6), nil},
		{"firms with at least $1.5b", f64(1.5e9), nil},
		{"firms under $100 million", nil, f64(100e6)},
		{"firms below $3,000,000", nil, f64(3e6)},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := ParseRules(tt.query).Filters
			if !eqPtr(f.MinAUM, tt.wantMin) {
				t.Errorf("MinAUM = %v, want %v", deref(f.MinAUM), deref(tt.wantMin))
			}
			if !eqPtr(f.MaxAUM, tt.wantMax) {
				t.Errorf("MaxAUM = %v, want %v", deref(f.MaxAUM), deref(tt.wantMax))
			}
		})
	}
}

func TestParseRules_Location(t *testing.T) {
	t.Run("state name alone", func(t *testing.T) {
		f := ParseRules("advisers in Missouri").Filters
		if f.State != "MO" || f.City != "" {
			t.Fatalf("got city=%q state=%q", f.City, f.State)
		}
	})

	t.Run("city alone", func(t *testing.T) {
		f := ParseRules("advisers in Saint Louis").Filters
		if f.City != "st. louis" {
			t.Fatalf("City = %q, want canonical st. louis", f.City)
		}
		if f.State != "" {
			t.Fatalf("State = %q, want empty", f.State)
		}
	})

	t.Run("city and state", func(t *testing.T) {
		f := ParseRules("advisers in Kansas City, Missouri").Filters
		if f.City != "kansas city" || f.State != "MO" {
			t.Fatalf("got city=%q state=%q", f.City, f.State)
		}
	})

	t.Run("unknown trailing token drops the match", func(t *testing.T) {
		f := ParseRules("advisers in Springfield, Ruritania").Filters
		if f.City != "" || f.State != "" {
			t.Fatalf("got city=%q state=%q, want both empty", f.City, f.State)
		}
	})

	t.Run("no location", func(t *testing.T) {
		f := ParseRules("growth-focused advisers").Filters
		if f.City != "" || f.State != "" {
			t.Fatalf("got city=%q state=%q", f.City, f.State)
		}
	})
}

func TestParseRules_Services(t *testing.T) {
	f := ParseRules("firms that do private placements").Filters
	if len(f.Services) != 1 || f.Services[0] != "private placements" {
		t.Fatalf("Services = %v", f.Services)
	}
	if !f.RequirePrivateFunds {
		t.Fatal("service intent must imply the private-fund predicate")
	}
}

func TestParseRules_PassThrough(t *testing.T) {
	dec := ParseRules("sustainable investing specialists")
	if !dec.Filters.IsEmpty() {
		t.Fatalf("expected no filters, got %+v", dec.Filters)
	}
	if dec.SemanticQuery != "sustainable investing specialists" {
		t.Fatalf("SemanticQuery = %q", dec.SemanticQuery)
	}
}

func TestParseRules_Deterministic(t *testing.T) {
	q := "top 3 largest private equity firms in st louis with over $1 billion"
	a := ParseRules(q)
	b := ParseRules(q)
	if a.SemanticQuery != b.SemanticQuery || a.Filters.TopN != b.Filters.TopN ||
		a.Filters.City != b.Filters.City || !eqPtr(a.Filters.MinAUM, b.Filters.MinAUM) {
		t.Fatal("identical queries must decompose identically")
	}
}

func f64(v float64) *float64 { return &v }

func eqPtr(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
